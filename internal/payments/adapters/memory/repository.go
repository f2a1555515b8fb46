package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
)

// Repository provides an in-memory order store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[int64]domain.Order)}
}

// Create stores an order. A zero ID is replaced by the next sequence value.
func (r *Repository) Create(_ context.Context, order domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == 0 {
		r.nextID++
		order.ID = r.nextID
	} else if order.ID > r.nextID {
		r.nextID = order.ID
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	if order.Status == "" {
		order.Status = domain.StatusDraft
	}

	r.orders[order.ID] = order
	stored := order
	return &stored, nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := order
	return &copy, nil
}

// FindByName returns every order carrying the name, ordered by ID.
func (r *Repository) FindByName(_ context.Context, name string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Order{}
	for _, order := range r.orders {
		if order.Name == name {
			result = append(result, order)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// UpdateStatus sets the status and updatedAt timestamp for an order.
// The check against from and the write happen under one lock.
func (r *Repository) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus, from ...domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if len(from) > 0 && !slices.Contains(from, order.Status) {
		return fmt.Errorf("%w: order %d is %s", ports.ErrStatusConflict, id, order.Status)
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}
