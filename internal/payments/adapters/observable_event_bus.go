package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/wspay/internal/kafka"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/dejobratic/wspay/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishPaymentConfirmed(ctx context.Context, event ports.PaymentEvent) error {
	return e.observe(ctx, "EventBus.PublishPaymentConfirmed", kafka.EventPaymentConfirmed, event, e.bus.PublishPaymentConfirmed)
}

func (e *ObservableEventBus) PublishPaymentRejected(ctx context.Context, event ports.PaymentEvent) error {
	return e.observe(ctx, "EventBus.PublishPaymentRejected", kafka.EventPaymentRejected, event, e.bus.PublishPaymentRejected)
}

func (e *ObservableEventBus) PublishPaymentCanceled(ctx context.Context, event ports.PaymentEvent) error {
	return e.observe(ctx, "EventBus.PublishPaymentCanceled", kafka.EventPaymentCanceled, event, e.bus.PublishPaymentCanceled)
}

func (e *ObservableEventBus) observe(
	ctx context.Context,
	spanName, eventType string,
	event ports.PaymentEvent,
	publish func(context.Context, ports.PaymentEvent) error,
) error {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("event.type", eventType),
		attribute.String("payment.provider", event.Provider),
		attribute.String("payment.cart_id", event.CartID),
	}
	if event.Reason != "" {
		attrs = append(attrs, attribute.String("failure.reason", event.Reason))
	}
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	err := publish(ctx, event)
	e.metrics.RecordPublish(ctx, eventType, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
