package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/wspay/internal/database"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/dejobratic/wspay/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableLedger struct {
	ledger  ports.NotificationLedger
	metrics *database.Metrics
}

func NewObservableLedger(ledger ports.NotificationLedger, metrics *database.Metrics) *ObservableLedger {
	return &ObservableLedger{
		ledger:  ledger,
		metrics: metrics,
	}
}

func (l *ObservableLedger) Claim(ctx context.Context, key string, record ports.ProcessedNotification) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "NotificationLedger.Claim")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("ledger.key", key),
		attribute.Int64("order.id", record.OrderID),
	)

	start := time.Now()
	claimed, err := l.ledger.Claim(ctx, key, record)
	l.metrics.RecordQuery(ctx, database.OpClaimNotification, time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	telemetry.AddSpanAttributes(span, attribute.Bool("ledger.claimed", claimed))
	telemetry.SetSpanSuccess(span)
	return claimed, nil
}

func (l *ObservableLedger) Release(ctx context.Context, key string) error {
	ctx, span := telemetry.StartSpan(ctx, "NotificationLedger.Release")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("ledger.key", key))

	start := time.Now()
	err := l.ledger.Release(ctx, key)
	l.metrics.RecordQuery(ctx, database.OpReleaseNotification, time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
