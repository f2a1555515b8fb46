package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testConfig() Config {
	return Config{
		ServiceName:    "wspay-api",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero sample rate", mutate: func(c *Config) { c.SampleRate = 0 }},
		{name: "missing service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: ErrMissingServiceName},
		{name: "missing service version", mutate: func(c *Config) { c.ServiceVersion = "" }, wantErr: ErrMissingServiceVersion},
		{name: "negative sample rate", mutate: func(c *Config) { c.SampleRate = -0.1 }, wantErr: ErrInvalidSampleRate},
		{name: "sample rate above one", mutate: func(c *Config) { c.SampleRate = 1.1 }, wantErr: ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v wrapped in ErrInvalidConfig, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.ServiceName = ""

		if _, err := Initialize(context.Background(), cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("falls back to noop exporters without an endpoint", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableTracing = true
		cfg.EnableMetrics = true

		tel, err := Initialize(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		defer func() { _ = tel.Shutdown(context.Background()) }()

		if tel.TracerProvider() == nil || tel.MeterProvider() == nil {
			t.Fatal("expected tracer and meter providers")
		}
		if tel.MetricsHandler() != nil {
			t.Error("expected no metrics handler when prometheus is disabled")
		}
	})

	t.Run("uses provided trace exporter", func(t *testing.T) {
		exp := tracetest.NewInMemoryExporter()
		cfg := testConfig()
		cfg.EnableTracing = true

		tel, err := Initialize(context.Background(), cfg, WithTraceExporter(exp))
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}

		_, span := StartSpan(context.Background(), "ConfirmPaymentCommand.Handle")
		span.End()
		if err := tel.TracerProvider().ForceFlush(context.Background()); err != nil {
			t.Fatalf("ForceFlush() failed: %v", err)
		}

		if len(exp.GetSpans()) != 1 {
			t.Errorf("expected 1 exported span, got %d", len(exp.GetSpans()))
		}
		if err := tel.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() failed: %v", err)
		}
	})

	t.Run("serves prometheus metrics", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableMetrics = true
		cfg.EnablePrometheus = true

		tel, err := Initialize(context.Background(), cfg, WithMetricExporter(NewNoopMetricExporter()))
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		defer func() { _ = tel.Shutdown(context.Background()) }()

		counter, err := otel.GetMeterProvider().Meter("test").Int64Counter("payment_checkouts_total")
		if err != nil {
			t.Fatalf("create counter: %v", err)
		}
		counter.Add(context.Background(), 3)

		handler := tel.MetricsHandler()
		if handler == nil {
			t.Fatal("expected metrics handler")
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), "payment_checkouts_total") {
			t.Errorf("expected counter in scrape output, got:\n%s", body)
		}
		if !strings.Contains(string(body), "go_goroutines") {
			t.Error("expected runtime collectors in scrape output")
		}
	})
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{rate: 0, want: sdktrace.NeverSample().Description()},
		{rate: 1, want: sdktrace.AlwaysSample().Description()},
		{rate: 0.25, want: sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}

	for _, tt := range tests {
		if got := createSampler(tt.rate).Description(); got != tt.want {
			t.Errorf("createSampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestShutdownWithoutProviders(t *testing.T) {
	tel, err := Initialize(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
