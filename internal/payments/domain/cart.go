package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const cartIDSeparator = "-"

// CartID is the shopping cart identifier exchanged with the gateway.
// It encodes the order database id and a per-attempt suffix.
type CartID struct {
	OrderID int64
	Suffix  int
}

// NewCartID derives the cart id for an order and payment attempt.
func NewCartID(orderID int64, suffix int) CartID {
	return CartID{OrderID: orderID, Suffix: suffix}
}

func (c CartID) String() string {
	return strconv.FormatInt(c.OrderID, 10) + cartIDSeparator + strconv.Itoa(c.Suffix)
}

// ParseCartID recovers a CartID previously produced by CartID.String.
func ParseCartID(s string) (CartID, error) {
	idPart, suffixPart, ok := strings.Cut(s, cartIDSeparator)
	if !ok || idPart == "" || suffixPart == "" {
		return CartID{}, fmt.Errorf("%w: cart id %q", ErrMalformedNotification, s)
	}

	orderID, err := parseDigits(idPart)
	if err != nil || orderID <= 0 {
		return CartID{}, fmt.Errorf("%w: cart id %q has invalid order id", ErrMalformedNotification, s)
	}

	suffix, err := parseDigits(suffixPart)
	if err != nil {
		return CartID{}, fmt.Errorf("%w: cart id %q has invalid suffix", ErrMalformedNotification, s)
	}

	id := CartID{OrderID: orderID, Suffix: int(suffix)}
	if id.String() != s {
		return CartID{}, fmt.Errorf("%w: cart id %q is not canonical", ErrMalformedNotification, s)
	}
	return id, nil
}

// parseDigits accepts ASCII digits only, so signs and whitespace never slip through.
func parseDigits(s string) (int64, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

// SplitReference separates a transaction reference such as "SO042-3" into the
// order name and the attempt suffix. References without a suffix map to attempt 1.
func SplitReference(reference string) (string, int, error) {
	reference = strings.TrimSpace(reference)
	name, attempt, found := strings.Cut(reference, cartIDSeparator)
	if name == "" {
		return "", 0, fmt.Errorf("%w: empty reference", ErrOrderResolution)
	}
	if !found {
		return name, 1, nil
	}

	n, err := parseDigits(attempt)
	if err != nil {
		return "", 0, fmt.Errorf("%w: reference %q has invalid attempt", ErrOrderResolution, reference)
	}
	return name, int(n), nil
}
