package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/shopspring/decimal"
)

// BeginCheckoutQuery asks for the hosted form that pays for a transaction reference.
// The signed amount and currency always come from the stored order.
type BeginCheckoutQuery struct {
	Provider  string
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Customer  domain.Customer
}

// Validate ensures the query has valid parameters.
func (q BeginCheckoutQuery) Validate() error {
	if strings.TrimSpace(q.Provider) == "" {
		return errors.New("provider is required")
	}
	if strings.TrimSpace(q.Reference) == "" {
		return errors.New("reference is required")
	}
	if strings.TrimSpace(q.Currency) == "" {
		return errors.New("currency is required")
	}
	return nil
}

// CheckoutResult is the signed form plus what the storefront shows next to it.
type CheckoutResult struct {
	Provider string               `json:"provider"`
	OrderID  int64                `json:"order_id"`
	CartID   string               `json:"cart_id"`
	Fees     decimal.Decimal      `json:"fees"`
	Form     *domain.RedirectForm `json:"form"`
}

type BeginCheckoutHandler interface {
	Handle(ctx context.Context, query BeginCheckoutQuery) (*CheckoutResult, error)
}

// BeginCheckoutQueryHandler builds signed redirect forms.
type BeginCheckoutQueryHandler struct {
	acquirers ports.AcquirerRegistry
	orders    ports.OrderRepository
}

// NewBeginCheckoutQueryHandler constructs a BeginCheckoutQueryHandler.
func NewBeginCheckoutQueryHandler(acquirers ports.AcquirerRegistry, orders ports.OrderRepository) *BeginCheckoutQueryHandler {
	return &BeginCheckoutQueryHandler{acquirers: acquirers, orders: orders}
}

// Handle checks the currency, resolves the order behind the reference and signs the form.
func (h *BeginCheckoutQueryHandler) Handle(ctx context.Context, query BeginCheckoutQuery) (*CheckoutResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	acquirer, err := h.acquirers.Get(query.Provider)
	if err != nil {
		return nil, err
	}

	if err := acquirer.CheckCurrency(query.Currency); err != nil {
		return nil, err
	}

	name, attempt, err := domain.SplitReference(query.Reference)
	if err != nil {
		return nil, err
	}

	order, err := h.resolveOrder(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := matchOrder(query, order); err != nil {
		return nil, err
	}

	cartID := domain.NewCartID(order.ID, attempt)
	form, err := acquirer.BuildForm(domain.CheckoutRequest{
		Reference: query.Reference,
		CartID:    cartID,
		Amount:    order.AmountTotal,
		Currency:  order.Currency,
		Customer:  query.Customer,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		Provider: acquirer.Provider(),
		OrderID:  order.ID,
		CartID:   cartID.String(),
		Fees:     acquirer.ComputeFees(order.AmountTotal, order.Currency, query.Customer.Country),
		Form:     form,
	}, nil
}

// matchOrder keeps the signed form bound to the stored order. The amount in the
// query is optional; when present it must equal the order total.
func matchOrder(query BeginCheckoutQuery, order *domain.Order) error {
	if !strings.EqualFold(strings.TrimSpace(query.Currency), strings.TrimSpace(order.Currency)) {
		return fmt.Errorf("%w: order %d is in %q, checkout asked for %q",
			domain.ErrCurrencyMismatch, order.ID, order.Currency, query.Currency)
	}
	if !query.Amount.IsZero() && !query.Amount.Equal(order.AmountTotal) {
		return fmt.Errorf("%w: order %d totals %s, checkout asked for %s",
			domain.ErrInvalidAmount, order.ID, order.AmountTotal, query.Amount)
	}
	return nil
}

// resolveOrder never guesses: exactly one order must carry the name.
func (h *BeginCheckoutQueryHandler) resolveOrder(ctx context.Context, name string) (*domain.Order, error) {
	orders, err := h.orders.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find order %q: %w", name, err)
	}

	switch len(orders) {
	case 0:
		return nil, fmt.Errorf("%w: no order named %q", domain.ErrOrderResolution, name)
	case 1:
		return &orders[0], nil
	default:
		return nil, fmt.Errorf("%w: %d orders named %q", domain.ErrAmbiguousOrder, len(orders), name)
	}
}
