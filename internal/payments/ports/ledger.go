package ports

import (
	"context"
	"time"
)

// ProcessedNotification records a notification that already confirmed its order.
type ProcessedNotification struct {
	Provider    string
	CartID      string
	OrderID     int64
	ProcessedAt time.Time
}

// NotificationLedger ensures an accepted notification is consumed only once.
// Claim is atomic: of several concurrent claims for one key exactly one reports true.
// Release drops a claim whose confirmation did not go through, so a redelivery can retry.
type NotificationLedger interface {
	Claim(ctx context.Context, key string, record ProcessedNotification) (bool, error)
	Release(ctx context.Context, key string) error
}
