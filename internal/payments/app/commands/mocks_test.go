package commands_test

import (
	"context"
	"slices"
	"sync"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/dejobratic/wspay/internal/payments/registry"
	"github.com/dejobratic/wspay/internal/payments/wspay"
)

const (
	shopID    = "MYSHOP"
	secretKey = "secret"
)

func newRegistry() *registry.Registry {
	return registry.New(wspay.NewAcquirer(wspay.Config{
		ShopID:    shopID,
		SecretKey: secretKey,
		BaseURL:   "https://shop.example.com",
	}))
}

func signedNotification(cartID, approvalCode string) domain.Notification {
	return domain.Notification{
		CartID:       cartID,
		Success:      "1",
		ApprovalCode: approvalCode,
		Signature:    wspay.SignNotification(shopID, secretKey, cartID, "1", approvalCode),
	}
}

type mockRepository struct {
	mu                sync.Mutex
	orders            map[int64]domain.Order
	getByIDFn         func(ctx context.Context, id int64) (*domain.Order, error)
	updateStatusFn    func(ctx context.Context, id int64, status domain.OrderStatus) error
	updateStatusCalls int
}

func newMockRepository(orders ...domain.Order) *mockRepository {
	repo := &mockRepository{orders: make(map[int64]domain.Order)}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return &order, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &order, nil
}

func (m *mockRepository) FindByName(ctx context.Context, name string) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, from ...domain.OrderStatus) error {
	m.mu.Lock()
	m.updateStatusCalls++
	m.mu.Unlock()
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if len(from) > 0 && !slices.Contains(from, order.Status) {
		return ports.ErrStatusConflict
	}
	order.Status = status
	m.orders[id] = order
	return nil
}

type mockLedger struct {
	mu           sync.Mutex
	records      map[string]ports.ProcessedNotification
	claimFn      func(ctx context.Context, key string, record ports.ProcessedNotification) (bool, error)
	releaseCalls int
}

func newMockLedger() *mockLedger {
	return &mockLedger{records: make(map[string]ports.ProcessedNotification)}
}

func (m *mockLedger) Claim(ctx context.Context, key string, record ports.ProcessedNotification) (bool, error) {
	if m.claimFn != nil {
		return m.claimFn(ctx, key, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; ok {
		return false, nil
	}
	m.records[key] = record
	return true, nil
}

func (m *mockLedger) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseCalls++
	delete(m.records, key)
	return nil
}

type mockEventBus struct {
	mu        sync.Mutex
	confirmed []ports.PaymentEvent
	rejected  []ports.PaymentEvent
	canceled  []ports.PaymentEvent
	publishFn func(ctx context.Context, event ports.PaymentEvent) error
}

func (m *mockEventBus) publish(ctx context.Context, event ports.PaymentEvent) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	return nil
}

func (m *mockEventBus) PublishPaymentConfirmed(ctx context.Context, event ports.PaymentEvent) error {
	m.mu.Lock()
	m.confirmed = append(m.confirmed, event)
	m.mu.Unlock()
	return m.publish(ctx, event)
}

func (m *mockEventBus) PublishPaymentRejected(ctx context.Context, event ports.PaymentEvent) error {
	m.mu.Lock()
	m.rejected = append(m.rejected, event)
	m.mu.Unlock()
	return m.publish(ctx, event)
}

func (m *mockEventBus) PublishPaymentCanceled(ctx context.Context, event ports.PaymentEvent) error {
	m.mu.Lock()
	m.canceled = append(m.canceled, event)
	m.mu.Unlock()
	return m.publish(ctx, event)
}
