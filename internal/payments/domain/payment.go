package domain

import "github.com/shopspring/decimal"

// Customer carries the billing contact passed through to the hosted form verbatim.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZIP       string `json:"zip"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Lang      string `json:"lang"`
}

// CheckoutRequest is a transaction ready to be handed to an acquirer's hosted form.
type CheckoutRequest struct {
	Reference string
	CartID    CartID
	Amount    decimal.Decimal
	Currency  string
	Customer  Customer
}

// RedirectForm describes the form the customer's browser submits to the gateway.
type RedirectForm struct {
	ActionURL string            `json:"action_url"`
	Method    string            `json:"method"`
	Fields    map[string]string `json:"fields"`
}

// Notification is the payload the gateway sends back with the customer's browser.
type Notification struct {
	CartID       string `json:"ShoppingCartID"`
	Success      string `json:"Success"`
	ApprovalCode string `json:"ApprovalCode"`
	Signature    string `json:"Signature"`
	ErrorMessage string `json:"ErrorMessage,omitempty"`
}

// CallbackState is the outcome of validating a single notification.
type CallbackState string

const (
	StateReceived CallbackState = "received"
	StateValid    CallbackState = "valid"
	StateRejected CallbackState = "rejected"
)

// Verdict is the terminal decision for a notification. Err is set only when rejected.
type Verdict struct {
	State  CallbackState
	CartID CartID
	Err    error
}

// Accepted reports whether the notification may confirm its order.
func (v Verdict) Accepted() bool {
	return v.State == StateValid
}

// Valid builds an accepting verdict.
func Valid(cartID CartID) Verdict {
	return Verdict{State: StateValid, CartID: cartID}
}

// Rejected builds a rejecting verdict.
func Rejected(cartID CartID, err error) Verdict {
	return Verdict{State: StateRejected, CartID: cartID, Err: err}
}
