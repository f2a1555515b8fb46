package wspay

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/shopspring/decimal"
)

const (
	ProviderName = "wspay"

	ProductionFormURL = "https://form.WSPay.biz/Authorization.aspx"
	TestFormURL       = "https://formtest.WSPay.biz/Authorization.aspx"

	DefaultCurrency = "HRK"
)

// Callback paths the gateway redirects the customer to.
const (
	ReturnPath = "/payment/wspay/return"
	CancelPath = "/payment/wspay/cancel"
	ErrorPath  = "/payment/wspay/error"
)

// Environment selects which hosted form the customer is sent to.
type Environment string

const (
	EnvironmentProduction Environment = "prod"
	EnvironmentTest       Environment = "test"
)

// Config holds the merchant settings of one WSPay acquirer.
type Config struct {
	ShopID      string
	SecretKey   string
	Environment Environment
	Currency    string
	BaseURL     string
}

// Acquirer integrates the WSPay hosted payment form.
type Acquirer struct {
	cfg    Config
	signer Signer
}

type Option func(*Acquirer)

// WithSigner replaces the credential-based codec.
func WithSigner(signer Signer) Option {
	return func(a *Acquirer) {
		a.signer = signer
	}
}

// NewAcquirer constructs an Acquirer. The currency defaults to HRK.
func NewAcquirer(cfg Config, opts ...Option) *Acquirer {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	cfg.Currency = strings.ToUpper(cfg.Currency)

	a := &Acquirer{
		cfg:    cfg,
		signer: NewCodec(cfg.ShopID, cfg.SecretKey),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Acquirer) Provider() string {
	return ProviderName
}

// Currency is the only currency the acquirer accepts.
func (a *Acquirer) Currency() string {
	return a.cfg.Currency
}

func (a *Acquirer) CheckCurrency(code string) error {
	if !strings.EqualFold(strings.TrimSpace(code), a.cfg.Currency) {
		return fmt.Errorf("%w: only %s transactions are allowed for WSPay checkout, got %q",
			domain.ErrCurrencyMismatch, a.cfg.Currency, code)
	}
	return nil
}

// ComputeFees always returns zero; WSPay fees are settled outside the checkout.
func (a *Acquirer) ComputeFees(_ decimal.Decimal, _, _ string) decimal.Decimal {
	return decimal.Zero
}

func (a *Acquirer) FormActionURL() string {
	if a.cfg.Environment == EnvironmentProduction {
		return ProductionFormURL
	}
	return TestFormURL
}

// BuildForm returns the signed fields of the hosted form. The currency is checked
// before anything is signed.
func (a *Acquirer) BuildForm(req domain.CheckoutRequest) (*domain.RedirectForm, error) {
	if err := a.CheckCurrency(req.Currency); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount %s is negative", domain.ErrInvalidAmount, req.Amount)
	}

	returnURL, cancelURL, errorURL, err := a.callbackURLs()
	if err != nil {
		return nil, err
	}

	cartID := req.CartID.String()
	signature, err := a.signer.SignOutbound(cartID, SignatureAmount(req.Amount))
	if err != nil {
		return nil, fmt.Errorf("sign checkout %s: %w", cartID, err)
	}

	customer := req.Customer
	fields := map[string]string{
		"ShopID":            a.cfg.ShopID,
		"ShoppingCartID":    cartID,
		"TotalAmount":       DisplayAmount(req.Amount),
		"Signature":         signature,
		"ReturnURL":         returnURL,
		"CancelURL":         cancelURL,
		"ReturnErrorURL":    errorURL,
		"Lang":              languageCode(customer.Lang),
		"CustomerFirstName": customer.FirstName,
		"CustomerLastName":  customer.LastName,
		"CustomerAddress":   customer.Address,
		"CustomerCity":      customer.City,
		"CustomerZIP":       customer.ZIP,
		"CustomerCountry":   customer.Country,
		"CustomerEmail":     customer.Email,
		"CustomerPhone":     customer.Phone,
	}

	return &domain.RedirectForm{
		ActionURL: a.FormActionURL(),
		Method:    http.MethodPost,
		Fields:    fields,
	}, nil
}

func (a *Acquirer) callbackURLs() (string, string, string, error) {
	if strings.TrimSpace(a.cfg.BaseURL) == "" {
		return "", "", "", fmt.Errorf("%w: base url is required", domain.ErrConfiguration)
	}

	var urls [3]string
	for i, path := range []string{ReturnPath, CancelPath, ErrorPath} {
		joined, err := url.JoinPath(a.cfg.BaseURL, path)
		if err != nil {
			return "", "", "", fmt.Errorf("%w: base url: %w", domain.ErrConfiguration, err)
		}
		urls[i] = joined
	}
	return urls[0], urls[1], urls[2], nil
}

// languageCode keeps the language part of a locale such as "hr_HR".
func languageCode(lang string) string {
	lang = strings.TrimSpace(lang)
	if utf8.RuneCountInString(lang) > 2 {
		lang = string([]rune(lang)[:2])
	}
	return strings.ToUpper(lang)
}
