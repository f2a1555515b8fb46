package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	notificationsTotal   metric.Int64Counter
	notificationDuration metric.Float64Histogram
	checkoutsTotal       metric.Int64Counter
	cancellationsTotal   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.notificationsTotal, err = meter.Int64Counter(
		"payment_notifications_total",
		metric.WithDescription("Total number of gateway notifications by outcome"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_notifications_total counter: %w", err)
	}

	m.notificationDuration, err = meter.Float64Histogram(
		"payment_notification_duration_seconds",
		metric.WithDescription("Duration of notification handling"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_notification_duration histogram: %w", err)
	}

	m.checkoutsTotal, err = meter.Int64Counter(
		"payment_checkouts_total",
		metric.WithDescription("Total number of checkout forms built"),
		metric.WithUnit("{checkout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_checkouts_total counter: %w", err)
	}

	m.cancellationsTotal, err = meter.Int64Counter(
		"payment_cancellations_total",
		metric.WithDescription("Total number of canceled or failed payments reported by customers returning from the gateway"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_cancellations_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordNotification(ctx context.Context, provider, state, reason string, durationSeconds float64) {
	m.notificationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("state", state),
		attribute.String("reason", reason),
	))
	m.notificationDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

func (m *Metrics) RecordCheckout(ctx context.Context, provider string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.checkoutsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordCancellation(ctx context.Context, provider, kind string) {
	m.cancellationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	))
}
