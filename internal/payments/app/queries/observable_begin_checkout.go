package queries

import (
	"context"
	"log/slog"

	"github.com/dejobratic/wspay/internal/payments/metrics"
	"github.com/dejobratic/wspay/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableBeginCheckoutHandler struct {
	handler BeginCheckoutHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableBeginCheckoutHandler(handler BeginCheckoutHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableBeginCheckoutHandler {
	return &ObservableBeginCheckoutHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableBeginCheckoutHandler) Handle(ctx context.Context, query BeginCheckoutQuery) (*CheckoutResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "BeginCheckoutQuery.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("payment.provider", query.Provider),
		attribute.String("payment.reference", query.Reference),
		attribute.String("payment.currency", query.Currency),
	)

	result, err := o.handler.Handle(ctx, query)
	o.metrics.RecordCheckout(ctx, query.Provider, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.WarnContext(ctx, "failed to build checkout form",
			"provider", query.Provider,
			"reference", query.Reference,
			"error", err,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", result.OrderID),
		attribute.String("payment.cart_id", result.CartID),
	)

	o.logger.InfoContext(ctx, "checkout form built",
		"provider", query.Provider,
		"reference", query.Reference,
		"cart_id", result.CartID,
	)

	telemetry.SetSpanSuccess(span)
	return result, nil
}
