package wspay

import (
	"fmt"
	"strings"

	"github.com/dejobratic/wspay/internal/payments/domain"
)

const successFlag = "1"

// ValidateNotification decides whether a gateway notification may confirm its order.
// A declined payment is rejected without checking the signature.
func (a *Acquirer) ValidateNotification(n domain.Notification) domain.Verdict {
	cartID, cartErr := domain.ParseCartID(n.CartID)

	if n.Success == "" {
		return domain.Rejected(cartID, fmt.Errorf("%w: success flag is missing", domain.ErrMalformedNotification))
	}
	if n.Success != successFlag {
		reason := strings.TrimSpace(n.ErrorMessage)
		if reason == "" {
			reason = "success flag " + n.Success
		}
		return domain.Rejected(cartID, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, reason))
	}
	if n.ApprovalCode == "" {
		return domain.Rejected(cartID, fmt.Errorf("%w: approval code is empty", domain.ErrMalformedNotification))
	}
	if cartErr != nil {
		return domain.Rejected(cartID, cartErr)
	}

	ok, err := a.signer.VerifyInbound(n.CartID, n.Success, n.ApprovalCode, n.Signature)
	if err != nil {
		return domain.Rejected(cartID, err)
	}
	if !ok {
		return domain.Rejected(cartID, fmt.Errorf("%w: cart %s", domain.ErrSignatureMismatch, n.CartID))
	}

	return domain.Valid(cartID)
}
