package database

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordQuery(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordQuery(ctx, OpFindOrdersByName, 0.1, nil)
	metrics.RecordQuery(ctx, OpClaimNotification, 0.05, nil)
	metrics.RecordQuery(ctx, OpClaimNotification, 0.07, errors.New("timeout"))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	counts := map[string]uint64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "db_query_duration_seconds" {
				continue
			}
			histogram, ok := m.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatal("expected Histogram[float64] data type")
			}
			for _, dp := range histogram.DataPoints {
				op, _ := dp.Attributes.Value(attribute.Key("operation"))
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[op.AsString()+"/"+outcome.AsString()] += dp.Count
			}
		}
	}

	want := map[string]uint64{
		"find_orders_by_name/ok":             1,
		"claim_processed_notification/ok":    1,
		"claim_processed_notification/error": 1,
	}
	for key, n := range want {
		if counts[key] != n {
			t.Errorf("expected %d points for %s, got %d (all: %v)", n, key, counts[key], counts)
		}
	}
}
