package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("failed to parse log output: %v", err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{value: "debug", want: slog.LevelDebug},
		{value: " INFO ", want: slog.LevelInfo},
		{value: "warning", want: slog.LevelWarn},
		{value: "error", want: slog.LevelError},
		{value: "verbose", want: slog.LevelInfo},
		{value: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := ParseLevel(tt.value); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelWarn)
	ctx := context.Background()

	logger.InfoContext(ctx, "payment notification received")
	logger.WarnContext(ctx, "payment notification rejected", "reason", "signature_mismatch")

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["reason"] != "signature_mismatch" {
		t.Errorf("unexpected entry %v", entries[0])
	}
}

func TestLoggerAddsTraceContext(t *testing.T) {
	tp := trace.NewTracerProvider(trace.WithSyncer(tracetest.NewInMemoryExporter()))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "ConfirmPaymentCommand.Handle")
	defer span.End()

	t.Run("with span in context", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf, slog.LevelInfo).InfoContext(ctx, "payment confirmed", "cart_id", "42-1")

		entries := decodeEntries(t, &buf)
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0]["trace_id"] != span.SpanContext().TraceID().String() {
			t.Errorf("expected trace_id %s, got %v", span.SpanContext().TraceID(), entries[0]["trace_id"])
		}
		if entries[0]["span_id"] != span.SpanContext().SpanID().String() {
			t.Errorf("expected span_id %s, got %v", span.SpanContext().SpanID(), entries[0]["span_id"])
		}
	})

	t.Run("without span in context", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf, slog.LevelInfo).InfoContext(context.Background(), "server starting")

		entries := decodeEntries(t, &buf)
		if _, ok := entries[0]["trace_id"]; ok {
			t.Error("expected no trace_id")
		}
	})

	t.Run("keeps attributes and groups", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, slog.LevelInfo).With("provider", "wspay").WithGroup("order")
		logger.InfoContext(ctx, "payment confirmed", "id", 42)

		entries := decodeEntries(t, &buf)
		entry := entries[0]
		if entry["provider"] != "wspay" {
			t.Errorf("expected provider attribute, got %v", entry)
		}
		group, ok := entry["order"].(map[string]any)
		if !ok || group["id"] != float64(42) {
			t.Errorf("expected order group with id, got %v", entry["order"])
		}
		if entry["trace_id"] == nil {
			t.Error("expected trace_id alongside groups")
		}
	})
}

func TestLoggerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelInfo).Info("acquirer configured", "shop_id", "MYSHOP", "secret_key", "s3cr3t")

	if bytes.Contains(buf.Bytes(), []byte("s3cr3t")) {
		t.Fatalf("secret leaked into log output: %s", buf.String())
	}

	entries := decodeEntries(t, &buf)
	if entries[0]["secret_key"] != "[redacted]" || entries[0]["shop_id"] != "MYSHOP" {
		t.Errorf("unexpected entry %v", entries[0])
	}
}
