package ports

import (
	"errors"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/shopspring/decimal"
)

// PaymentAcquirer is a hosted payment gateway integration.
type PaymentAcquirer interface {
	// Provider is the key the acquirer is registered under.
	Provider() string
	// CheckCurrency rejects currencies the gateway does not accept.
	CheckCurrency(code string) error
	ComputeFees(amount decimal.Decimal, currency, country string) decimal.Decimal
	FormActionURL() string
	BuildForm(req domain.CheckoutRequest) (*domain.RedirectForm, error)
	ValidateNotification(n domain.Notification) domain.Verdict
}

// AcquirerRegistry resolves acquirers by provider name.
type AcquirerRegistry interface {
	Get(provider string) (PaymentAcquirer, error)
}

// ErrUnknownProvider is returned when no acquirer is registered under a name.
var ErrUnknownProvider = errors.New("unknown payment provider")
