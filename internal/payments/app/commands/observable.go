package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/metrics"
	"github.com/dejobratic/wspay/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableConfirmPaymentHandler struct {
	handler ConfirmPaymentHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableConfirmPaymentHandler(handler ConfirmPaymentHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableConfirmPaymentHandler {
	return &ObservableConfirmPaymentHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ConfirmPaymentCommand.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("payment.provider", cmd.Provider),
		attribute.String("payment.cart_id", cmd.Notification.CartID),
		attribute.String("payment.success", cmd.Notification.Success),
	)

	start := time.Now()
	state := domain.StateReceived
	var handleErr error
	defer func() {
		o.metrics.RecordNotification(ctx, cmd.Provider, string(state), domain.RejectionReason(handleErr), time.Since(start).Seconds())
	}()

	o.logger.InfoContext(ctx, "payment notification received",
		"provider", cmd.Provider,
		"cart_id", cmd.Notification.CartID,
		"success", cmd.Notification.Success,
		"approval_code", cmd.Notification.ApprovalCode,
	)

	result, err := o.handler.Handle(ctx, cmd)
	handleErr = err
	if result != nil {
		state = result.Verdict.State
	}

	if err != nil {
		telemetry.RecordSpanError(span, err)
		if state == domain.StateRejected {
			o.logger.WarnContext(ctx, "payment notification rejected",
				"provider", cmd.Provider,
				"cart_id", cmd.Notification.CartID,
				"reason", domain.RejectionReason(err),
				"error", err,
			)
		} else {
			o.logger.ErrorContext(ctx, "failed to confirm payment",
				"provider", cmd.Provider,
				"cart_id", cmd.Notification.CartID,
				"error", err,
			)
		}
		return result, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("payment.state", string(state)),
		attribute.Int64("order.id", result.Order.ID),
		attribute.Bool("payment.replayed", result.Replayed),
	)

	o.logger.InfoContext(ctx, "payment confirmed",
		"provider", cmd.Provider,
		"cart_id", cmd.Notification.CartID,
		"order_id", result.Order.ID,
		"replayed", result.Replayed,
	)

	telemetry.SetSpanSuccess(span)
	return result, nil
}

type ObservableCancelPaymentHandler struct {
	handler CancelPaymentHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCancelPaymentHandler(handler CancelPaymentHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCancelPaymentHandler {
	return &ObservableCancelPaymentHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCancelPaymentHandler) Handle(ctx context.Context, cmd CancelPaymentCommand) error {
	ctx, span := telemetry.StartSpan(ctx, "CancelPaymentCommand.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("payment.provider", cmd.Provider),
		attribute.String("payment.cart_id", cmd.Notification.CartID),
		attribute.String("payment.cancel_kind", string(cmd.Kind)),
	)

	o.logger.InfoContext(ctx, "customer returned without payment",
		"provider", cmd.Provider,
		"kind", cmd.Kind,
		"cart_id", cmd.Notification.CartID,
		"error_message", cmd.Notification.ErrorMessage,
	)

	if err := o.handler.Handle(ctx, cmd); err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to record payment cancellation", "error", err)
		return err
	}

	o.metrics.RecordCancellation(ctx, cmd.Provider, string(cmd.Kind))
	telemetry.SetSpanSuccess(span)
	return nil
}
