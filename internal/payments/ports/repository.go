package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/wspay/internal/payments/domain"
)

// OrderRepository exposes the order operations the payment flow depends on.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByName(ctx context.Context, name string) ([]domain.Order, error)
	// UpdateStatus sets the status. When from is given the update only applies
	// while the stored status is one of them, otherwise ErrStatusConflict is returned.
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, from ...domain.OrderStatus) error
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrStatusConflict is returned when a conditional status update finds the order in another status.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
