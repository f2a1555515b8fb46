package wspay

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SignatureAmount renders an amount for the signature: two decimals, no separators.
// 1234.5 becomes "123450".
func SignatureAmount(amount decimal.Decimal) string {
	whole, fraction := splitAmount(amount)
	return whole + fraction
}

// DisplayAmount renders an amount for the TotalAmount form field: "1234,50".
// It must never be used for the signature.
func DisplayAmount(amount decimal.Decimal) string {
	whole, fraction := splitAmount(amount)
	return whole + "," + fraction
}

// splitAmount rounds half away from zero to two places.
func splitAmount(amount decimal.Decimal) (string, string) {
	whole, fraction, _ := strings.Cut(amount.StringFixed(2), ".")
	return whole, fraction
}
