package database

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Operation labels a query in db_query_duration_seconds.
type Operation string

const (
	OpCreateOrder         Operation = "create_order"
	OpGetOrderByID        Operation = "get_order_by_id"
	OpFindOrdersByName    Operation = "find_orders_by_name"
	OpUpdateOrderStatus   Operation = "update_order_status"
	OpClaimNotification   Operation = "claim_processed_notification"
	OpReleaseNotification Operation = "release_processed_notification"
)

type Metrics struct {
	queryDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	queryDuration, err := meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of order and notification ledger queries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_duration histogram: %w", err)
	}

	return &Metrics{queryDuration: queryDuration}, nil
}

// RecordQuery records one query. A non-nil err marks the point with outcome=error.
func (m *Metrics) RecordQuery(ctx context.Context, op Operation, durationSeconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.queryDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", string(op)),
		attribute.String("outcome", outcome),
	))
}
