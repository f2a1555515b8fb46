package app

import (
	"context"
	"log/slog"

	"github.com/dejobratic/wspay/internal/payments/app/commands"
	"github.com/dejobratic/wspay/internal/payments/app/queries"
	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/metrics"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/dejobratic/wspay/internal/payments/registry"
	"github.com/shopspring/decimal"
)

// Service bundles use cases for handling payments via the API.
type Service struct {
	acquirers       *registry.Registry
	checkoutHandler queries.BeginCheckoutHandler
	confirmHandler  commands.ConfirmPaymentHandler
	cancelHandler   commands.CancelPaymentHandler
}

// NewService wires required dependencies.
func NewService(
	acquirers *registry.Registry,
	orders ports.OrderRepository,
	ledger ports.NotificationLedger,
	events ports.EventBus,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	checkout := queries.NewBeginCheckoutQueryHandler(acquirers, orders)
	confirm := commands.NewConfirmPaymentCommandHandler(acquirers, orders, ledger, events)
	cancel := commands.NewCancelPaymentCommandHandler(acquirers, events)

	return &Service{
		acquirers:       acquirers,
		checkoutHandler: queries.NewObservableBeginCheckoutHandler(checkout, logger, metrics),
		confirmHandler:  commands.NewObservableConfirmPaymentHandler(confirm, logger, metrics),
		cancelHandler:   commands.NewObservableCancelPaymentHandler(cancel, logger, metrics),
	}
}

// CheckoutInput captures payload for starting a hosted-form payment.
type CheckoutInput struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Customer  domain.Customer `json:"customer"`
}

// BeginCheckout returns the signed form the customer is redirected with.
func (s *Service) BeginCheckout(ctx context.Context, provider string, input CheckoutInput) (*queries.CheckoutResult, error) {
	return s.checkoutHandler.Handle(ctx, queries.BeginCheckoutQuery{
		Provider:  provider,
		Reference: input.Reference,
		Amount:    input.Amount,
		Currency:  input.Currency,
		Customer:  input.Customer,
	})
}

// ConfirmPayment consumes a gateway return notification.
func (s *Service) ConfirmPayment(ctx context.Context, provider string, n domain.Notification) (*commands.ConfirmPaymentResult, error) {
	return s.confirmHandler.Handle(ctx, commands.ConfirmPaymentCommand{
		Provider:     provider,
		Notification: n,
	})
}

// CancelPayment records a cancel or error redirect.
func (s *Service) CancelPayment(ctx context.Context, provider string, kind commands.CancelKind, n domain.Notification) error {
	return s.cancelHandler.Handle(ctx, commands.CancelPaymentCommand{
		Provider:     provider,
		Kind:         kind,
		Notification: n,
	})
}

// Providers lists registered acquirer names.
func (s *Service) Providers() []string {
	return s.acquirers.Providers()
}
