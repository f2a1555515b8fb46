package ports

import "context"

// PaymentEvent is the payload announced for every terminal payment outcome.
type PaymentEvent struct {
	Provider     string `json:"provider"`
	CartID       string `json:"cart_id"`
	OrderID      int64  `json:"order_id,omitempty"`
	ApprovalCode string `json:"approval_code,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// EventBus defines the contract for publishing payment lifecycle events.
type EventBus interface {
	PublishPaymentConfirmed(ctx context.Context, event PaymentEvent) error
	PublishPaymentRejected(ctx context.Context, event PaymentEvent) error
	PublishPaymentCanceled(ctx context.Context, event PaymentEvent) error
}
