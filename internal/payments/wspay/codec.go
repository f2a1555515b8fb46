package wspay

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/dejobratic/wspay/internal/payments/domain"
)

// Signer computes and checks gateway signatures for one merchant.
type Signer interface {
	SignOutbound(cartID, amountDigits string) (string, error)
	VerifyInbound(cartID, successFlag, approvalCode, signature string) (bool, error)
}

// Codec is the Signer backed by the merchant's shop id and shared secret.
type Codec struct {
	shopID    string
	secretKey string
}

// NewCodec constructs a Codec. Blank credentials surface as ErrConfiguration on use.
func NewCodec(shopID, secretKey string) *Codec {
	return &Codec{shopID: shopID, secretKey: secretKey}
}

func (c *Codec) SignOutbound(cartID, amountDigits string) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}
	return SignOutbound(c.shopID, c.secretKey, cartID, amountDigits), nil
}

func (c *Codec) VerifyInbound(cartID, successFlag, approvalCode, signature string) (bool, error) {
	if err := c.validate(); err != nil {
		return false, err
	}
	return VerifyInbound(c.shopID, c.secretKey, cartID, successFlag, approvalCode, signature), nil
}

func (c *Codec) validate() error {
	if strings.TrimSpace(c.shopID) == "" {
		return fmt.Errorf("%w: shop id is required", domain.ErrConfiguration)
	}
	if strings.TrimSpace(c.secretKey) == "" {
		return fmt.Errorf("%w: secret key is required", domain.ErrConfiguration)
	}
	return nil
}

// SignOutbound returns the signature of a checkout request:
// md5(shopID + secret + cartID + secret + amountDigits + secret).
func SignOutbound(shopID, secretKey, cartID, amountDigits string) string {
	return checksum(shopID, secretKey, cartID, amountDigits)
}

// VerifyInbound reports whether signature authenticates a gateway notification:
// md5(shopID + secret + cartID + secret + successFlag + secret + approvalCode + secret).
func VerifyInbound(shopID, secretKey, cartID, successFlag, approvalCode, signature string) bool {
	expected := SignNotification(shopID, secretKey, cartID, successFlag, approvalCode)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// SignNotification computes the signature the gateway attaches to a notification.
// Used to simulate gateway callbacks.
func SignNotification(shopID, secretKey, cartID, successFlag, approvalCode string) string {
	return checksum(shopID, secretKey, cartID, successFlag, approvalCode)
}

// checksum writes the shop id and the secret, then every field followed by the secret.
func checksum(shopID, secretKey string, fields ...string) string {
	h := md5.New()
	_, _ = io.WriteString(h, shopID)
	_, _ = io.WriteString(h, secretKey)
	for _, field := range fields {
		_, _ = io.WriteString(h, field)
		_, _ = io.WriteString(h, secretKey)
	}
	return hex.EncodeToString(h.Sum(nil))
}
