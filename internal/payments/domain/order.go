package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus captures the lifecycle of a sale order as seen by the payment flow.
type OrderStatus string

const (
	StatusDraft     OrderStatus = "draft"
	StatusSent      OrderStatus = "sent"
	StatusConfirmed OrderStatus = "sale"
	StatusCanceled  OrderStatus = "cancel"
)

// Order is the storefront order a payment is collected for.
type Order struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Status      OrderStatus     `json:"status"`
	AmountTotal decimal.Decimal `json:"amount_total"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CanConfirm reports whether the order is still waiting for payment.
func (o Order) CanConfirm() bool {
	switch o.Status {
	case StatusDraft, StatusSent:
		return true
	default:
		return false
	}
}

// Confirm moves the order into the confirmed state.
func (o *Order) Confirm(now time.Time) error {
	if !o.CanConfirm() {
		return fmt.Errorf("%w: cannot confirm order %d in status %s", ErrInvalidTransition, o.ID, o.Status)
	}
	o.Status = StatusConfirmed
	o.UpdatedAt = now
	return nil
}

// IsTerminal indicates whether the order is in a terminal state.
func (o Order) IsTerminal() bool {
	return o.Status == StatusConfirmed || o.Status == StatusCanceled
}
