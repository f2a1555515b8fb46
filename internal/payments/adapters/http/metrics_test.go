package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	metrics, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return metrics, reader
}

func requestCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatal("expected Sum[int64] data type")
			}
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value(attribute.Key("route"))
				counts[route.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestRecordRequest(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordRequest(ctx, "POST", "/v1/payments/{provider}/checkout", 200, 0.05)
	metrics.RecordRequest(ctx, "GET", "/payment/{provider}/return", 303, 0.02)
	metrics.RecordRequest(ctx, "GET", "/payment/{provider}/return", 400, 0.01)

	counts := requestCounts(t, reader)
	if counts["/payment/{provider}/return"] != 2 || counts["/v1/payments/{provider}/checkout"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestMiddleware(t *testing.T) {
	t.Run("labels requests with the route template", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)

		router := mux.NewRouter()
		router.Use(WithMetrics(metrics))
		router.HandleFunc("/payment/{provider}/return", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusSeeOther)
		})

		for _, provider := range []string{"wspay", "other"} {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/payment/"+provider+"/return", nil))
		}

		counts := requestCounts(t, reader)
		if counts["/payment/{provider}/return"] != 2 {
			t.Errorf("expected 2 requests on route template, got %v", counts)
		}
	})

	t.Run("recovers from panics", func(t *testing.T) {
		router := mux.NewRouter()
		router.Use(WithRecovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
		router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) {
			panic("boom")
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
	})
}
