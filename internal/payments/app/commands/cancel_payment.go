package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
)

// CancelKind tells which gateway redirect brought the customer back.
type CancelKind string

const (
	CancelKindCanceled CancelKind = "cancel"
	CancelKindError    CancelKind = "error"
)

// CancelPaymentCommand reports a customer who left the hosted form without paying.
// It is unauthenticated and therefore never changes order state.
type CancelPaymentCommand struct {
	Provider     string
	Kind         CancelKind
	Notification domain.Notification
}

func (c CancelPaymentCommand) Validate() error {
	if strings.TrimSpace(c.Provider) == "" {
		return errors.New("provider is required")
	}
	switch c.Kind {
	case CancelKindCanceled, CancelKindError:
		return nil
	default:
		return fmt.Errorf("unknown cancel kind %q", c.Kind)
	}
}

type CancelPaymentHandler interface {
	Handle(ctx context.Context, cmd CancelPaymentCommand) error
}

type CancelPaymentCommandHandler struct {
	acquirers ports.AcquirerRegistry
	events    ports.EventBus
}

func NewCancelPaymentCommandHandler(acquirers ports.AcquirerRegistry, events ports.EventBus) *CancelPaymentCommandHandler {
	return &CancelPaymentCommandHandler{
		acquirers: acquirers,
		events:    events,
	}
}

func (h *CancelPaymentCommandHandler) Handle(ctx context.Context, cmd CancelPaymentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if _, err := h.acquirers.Get(cmd.Provider); err != nil {
		return err
	}

	reason := strings.TrimSpace(cmd.Notification.ErrorMessage)
	if reason == "" {
		reason = string(cmd.Kind)
	}

	event := ports.PaymentEvent{
		Provider: cmd.Provider,
		CartID:   cmd.Notification.CartID,
		Reason:   reason,
	}
	if cartID, err := domain.ParseCartID(cmd.Notification.CartID); err == nil {
		event.OrderID = cartID.OrderID
	}

	if err := h.events.PublishPaymentCanceled(ctx, event); err != nil {
		return fmt.Errorf("publish cancellation: %w", err)
	}
	return nil
}
