package kafka

import (
	"context"
	"log/slog"

	"github.com/dejobratic/wspay/internal/payments/ports"
)

// NoopEventBus logs events without sending them to Kafka. Used when KAFKA_BROKERS is empty.
type NoopEventBus struct {
	logger *slog.Logger
}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus(logger *slog.Logger) *NoopEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopEventBus{logger: logger}
}

func (n *NoopEventBus) PublishPaymentConfirmed(ctx context.Context, event ports.PaymentEvent) error {
	n.log(ctx, EventPaymentConfirmed, event)
	return nil
}

func (n *NoopEventBus) PublishPaymentRejected(ctx context.Context, event ports.PaymentEvent) error {
	n.log(ctx, EventPaymentRejected, event)
	return nil
}

func (n *NoopEventBus) PublishPaymentCanceled(ctx context.Context, event ports.PaymentEvent) error {
	n.log(ctx, EventPaymentCanceled, event)
	return nil
}

func (n *NoopEventBus) Close() error {
	return nil
}

func (n *NoopEventBus) log(ctx context.Context, eventType string, event ports.PaymentEvent) {
	n.logger.DebugContext(ctx, "event::"+eventType,
		"provider", event.Provider,
		"cart_id", event.CartID,
		"order_id", event.OrderID,
		"reason", event.Reason,
	)
}
