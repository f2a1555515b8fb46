package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
)

type ConfirmPaymentCommand struct {
	Provider     string
	Notification domain.Notification
}

func (c ConfirmPaymentCommand) Validate() error {
	if strings.TrimSpace(c.Provider) == "" {
		return errors.New("provider is required")
	}
	return nil
}

// LedgerKey identifies the notification in the ledger.
func (c ConfirmPaymentCommand) LedgerKey() string {
	return c.Provider + ":" + c.Notification.CartID + ":" + c.Notification.ApprovalCode
}

// ConfirmPaymentResult describes how a notification was consumed.
// Replayed is set when the order had already been confirmed by an earlier notification.
type ConfirmPaymentResult struct {
	Verdict  domain.Verdict
	Order    *domain.Order
	Replayed bool
}

type ConfirmPaymentHandler interface {
	Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error)
}

type ConfirmPaymentCommandHandler struct {
	acquirers ports.AcquirerRegistry
	orders    ports.OrderRepository
	ledger    ports.NotificationLedger
	events    ports.EventBus
	now       func() time.Time
}

func NewConfirmPaymentCommandHandler(
	acquirers ports.AcquirerRegistry,
	orders ports.OrderRepository,
	ledger ports.NotificationLedger,
	events ports.EventBus,
) *ConfirmPaymentCommandHandler {
	return &ConfirmPaymentCommandHandler{
		acquirers: acquirers,
		orders:    orders,
		ledger:    ledger,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (h *ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	acquirer, err := h.acquirers.Get(cmd.Provider)
	if err != nil {
		return nil, err
	}

	verdict := acquirer.ValidateNotification(cmd.Notification)
	result := &ConfirmPaymentResult{Verdict: verdict}

	if !verdict.Accepted() {
		event := ports.PaymentEvent{
			Provider: cmd.Provider,
			CartID:   cmd.Notification.CartID,
			OrderID:  verdict.CartID.OrderID,
			Reason:   domain.RejectionReason(verdict.Err),
		}
		if err := h.events.PublishPaymentRejected(ctx, event); err != nil {
			return result, errors.Join(verdict.Err, fmt.Errorf("publish rejection: %w", err))
		}
		return result, verdict.Err
	}

	order, err := h.resolveOrder(ctx, verdict.CartID)
	if err != nil {
		return result, err
	}
	result.Order = order

	alreadyConfirmed := order.Status == domain.StatusConfirmed
	if !alreadyConfirmed && !order.CanConfirm() {
		return result, order.Confirm(h.now())
	}

	// The claim is the single point that decides which delivery confirms the order.
	key := cmd.LedgerKey()
	claimed, err := h.ledger.Claim(ctx, key, h.record(cmd, order))
	if err != nil {
		return result, fmt.Errorf("claim notification: %w", err)
	}
	if !claimed || alreadyConfirmed {
		result.Replayed = true
		return result, nil
	}

	if err := order.Confirm(h.now()); err != nil {
		return result, h.release(ctx, key, err)
	}

	err = h.orders.UpdateStatus(ctx, order.ID, order.Status, domain.StatusDraft, domain.StatusSent)
	if errors.Is(err, ports.ErrStatusConflict) {
		return h.settleConflict(ctx, key, result, err)
	}
	if err != nil {
		return result, h.release(ctx, key, fmt.Errorf("confirm order %d: %w", order.ID, err))
	}

	event := ports.PaymentEvent{
		Provider:     cmd.Provider,
		CartID:       cmd.Notification.CartID,
		OrderID:      order.ID,
		ApprovalCode: cmd.Notification.ApprovalCode,
	}
	if err := h.events.PublishPaymentConfirmed(ctx, event); err != nil {
		return result, fmt.Errorf("order confirmed but failed to publish event: %w", err)
	}

	return result, nil
}

func (h *ConfirmPaymentCommandHandler) resolveOrder(ctx context.Context, cartID domain.CartID) (*domain.Order, error) {
	order, err := h.orders.GetByID(ctx, cartID.OrderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: no order for cart %s", domain.ErrOrderResolution, cartID)
		}
		return nil, fmt.Errorf("load order %d: %w", cartID.OrderID, err)
	}
	return order, nil
}

// settleConflict handles an order that left draft/sent between the read and the write.
// Another notification confirming it first makes this one a replay.
func (h *ConfirmPaymentCommandHandler) settleConflict(ctx context.Context, key string, result *ConfirmPaymentResult, cause error) (*ConfirmPaymentResult, error) {
	current, err := h.orders.GetByID(ctx, result.Order.ID)
	if err != nil {
		return result, h.release(ctx, key, errors.Join(cause, err))
	}
	result.Order = current

	if current.Status == domain.StatusConfirmed {
		result.Replayed = true
		return result, nil
	}
	return result, h.release(ctx, key, fmt.Errorf("%w: %w", domain.ErrInvalidTransition, cause))
}

// release drops the claim so the gateway can redeliver, and returns cause.
func (h *ConfirmPaymentCommandHandler) release(ctx context.Context, key string, cause error) error {
	if err := h.ledger.Release(ctx, key); err != nil {
		return errors.Join(cause, fmt.Errorf("release notification: %w", err))
	}
	return cause
}

func (h *ConfirmPaymentCommandHandler) record(cmd ConfirmPaymentCommand, order *domain.Order) ports.ProcessedNotification {
	return ports.ProcessedNotification{
		Provider:    cmd.Provider,
		CartID:      cmd.Notification.CartID,
		OrderID:     order.ID,
		ProcessedAt: h.now(),
	}
}
