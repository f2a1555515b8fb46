package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when merchant credentials are missing.
	ErrConfiguration = errors.New("acquirer is not configured")
	// ErrCurrencyMismatch is returned for transactions outside the acquirer's currency.
	ErrCurrencyMismatch = errors.New("currency not supported by acquirer")
	// ErrInvalidAmount is returned for negative or otherwise unusable amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSignatureMismatch is returned when a notification signature does not verify.
	ErrSignatureMismatch = errors.New("signature mismatch")
	// ErrMalformedNotification is returned for notifications missing required fields.
	ErrMalformedNotification = errors.New("malformed notification")
	// ErrPaymentDeclined is returned when the gateway reports an unsuccessful payment.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrOrderResolution is returned when a reference maps to zero or several orders.
	ErrOrderResolution = errors.New("order reference cannot be resolved")
	// ErrAmbiguousOrder is the ErrOrderResolution case of several orders sharing a name.
	ErrAmbiguousOrder = fmt.Errorf("%w: ambiguous", ErrOrderResolution)
	// ErrInvalidTransition is returned when an order cannot move to the requested status.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// RejectionReason maps an error onto a short, stable label for metrics and events.
func RejectionReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrPaymentDeclined):
		return "declined"
	case errors.Is(err, ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, ErrMalformedNotification):
		return "malformed"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrCurrencyMismatch):
		return "currency_mismatch"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrOrderResolution):
		return "order_resolution"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "internal"
	}
}
