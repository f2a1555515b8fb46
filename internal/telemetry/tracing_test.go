package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracerProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return exp
}

func TestStartSpan(t *testing.T) {
	exp := setupTracerProvider(t)

	ctx, parent := StartSpan(context.Background(), "ConfirmPaymentCommand.Handle")
	_, child := StartSpan(ctx, "OrderRepository.UpdateStatus")
	child.End()
	parent.End()

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("expected child span to reference its parent")
	}
	if spans[1].InstrumentationLibrary.Name != tracerName {
		t.Errorf("expected scope %s, got %s", tracerName, spans[1].InstrumentationLibrary.Name)
	}
}

func TestSpanHelpers(t *testing.T) {
	t.Run("records attributes, events and success", func(t *testing.T) {
		exp := setupTracerProvider(t)

		_, span := StartSpan(context.Background(), "BeginCheckoutQuery.Handle")
		AddSpanAttributes(span, attribute.String("payment.cart_id", "42-1"))
		AddSpanEvent(span, "form.signed", attribute.String("payment.provider", "wspay"))
		SetSpanSuccess(span)
		span.End()

		got := exp.GetSpans()[0]
		if len(got.Attributes) != 1 || got.Attributes[0].Value.AsString() != "42-1" {
			t.Errorf("unexpected attributes %v", got.Attributes)
		}
		if len(got.Events) != 1 || got.Events[0].Name != "form.signed" {
			t.Errorf("unexpected events %v", got.Events)
		}
		if got.Status.Code != codes.Ok {
			t.Errorf("expected Ok status, got %v", got.Status.Code)
		}
	})

	t.Run("records errors", func(t *testing.T) {
		exp := setupTracerProvider(t)

		_, span := StartSpan(context.Background(), "ConfirmPaymentCommand.Handle")
		RecordSpanError(span, errors.New("signature mismatch"))
		RecordSpanError(span, nil)
		span.End()

		got := exp.GetSpans()[0]
		if got.Status.Code != codes.Error || got.Status.Description != "signature mismatch" {
			t.Errorf("unexpected status %+v", got.Status)
		}
		if len(got.Events) != 1 {
			t.Errorf("expected one exception event, got %d", len(got.Events))
		}
	})

	t.Run("tolerates nil spans", func(t *testing.T) {
		AddSpanAttributes(nil, attribute.Bool("ok", true))
		AddSpanEvent(nil, "noop")
		RecordSpanError(nil, errors.New("ignored"))
		SetSpanSuccess(nil)
	})
}

func TestTraceAndSpanID(t *testing.T) {
	setupTracerProvider(t)

	if TraceID(context.Background()) != "" || SpanID(context.Background()) != "" {
		t.Error("expected empty ids without a span")
	}

	ctx, span := StartSpan(context.Background(), "op")
	defer span.End()

	if TraceID(ctx) != span.SpanContext().TraceID().String() {
		t.Errorf("unexpected trace id %s", TraceID(ctx))
	}
	if SpanID(ctx) != span.SpanContext().SpanID().String() {
		t.Errorf("unexpected span id %s", SpanID(ctx))
	}
}
