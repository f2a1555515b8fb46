package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dejobratic/wspay/internal/payments/app"
	"github.com/dejobratic/wspay/internal/payments/app/commands"
	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/gorilla/mux"
)

// Redirects are the storefront pages the customer lands on after a gateway callback.
// Empty values make the callback routes answer with JSON instead.
type Redirects struct {
	Success string
	Failure string
}

// Handler exposes HTTP endpoints for checkout and gateway callbacks.
type Handler struct {
	service   *app.Service
	redirects Redirects
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, redirects Redirects) *Handler {
	return &Handler{service: service, redirects: redirects}
}

// Register binds the payment handlers to the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/v1/payments/providers", h.listProviders).Methods(http.MethodGet)
	r.HandleFunc("/v1/payments/{provider}/checkout", h.checkout).Methods(http.MethodPost)

	r.HandleFunc("/payment/{provider}/return", h.handleReturn).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/payment/{provider}/cancel", h.handleCancel(commands.CancelKindCanceled)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/payment/{provider}/error", h.handleCancel(commands.CancelKindError)).Methods(http.MethodGet, http.MethodPost)
}

func (h *Handler) listProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": h.service.Providers()})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var payload app.CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if strings.TrimSpace(payload.Reference) == "" {
		writeError(w, http.StatusBadRequest, "reference is required")
		return
	}
	if strings.TrimSpace(payload.Currency) == "" {
		writeError(w, http.StatusBadRequest, "currency is required")
		return
	}

	result, err := h.service.BeginCheckout(r.Context(), mux.Vars(r)["provider"], payload)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	notification, err := parseNotification(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ConfirmPayment(r.Context(), mux.Vars(r)["provider"], notification)
	if err != nil {
		if h.redirects.Failure != "" {
			http.Redirect(w, r, h.redirects.Failure, http.StatusSeeOther)
			return
		}
		// A notification that failed to confirm its order is never reported as valid.
		writeJSON(w, statusFor(err), map[string]any{
			"state":   domain.StateRejected,
			"cart_id": notification.CartID,
			"reason":  domain.RejectionReason(err),
			"error":   err.Error(),
		})
		return
	}

	if h.redirects.Success != "" {
		http.Redirect(w, r, h.redirects.Success, http.StatusSeeOther)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state":    result.Verdict.State,
		"cart_id":  notification.CartID,
		"order_id": result.Order.ID,
		"replayed": result.Replayed,
	})
}

func (h *Handler) handleCancel(kind commands.CancelKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notification, err := parseNotification(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := h.service.CancelPayment(r.Context(), mux.Vars(r)["provider"], kind, notification); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		if h.redirects.Failure != "" {
			http.Redirect(w, r, h.redirects.Failure, http.StatusSeeOther)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"state":   "canceled",
			"kind":    kind,
			"cart_id": notification.CartID,
		})
	}
}

// parseNotification reads gateway fields from the query string or a form body.
func parseNotification(r *http.Request) (domain.Notification, error) {
	if err := r.ParseForm(); err != nil {
		return domain.Notification{}, errors.New("invalid form payload")
	}

	return domain.Notification{
		CartID:       r.Form.Get("ShoppingCartID"),
		Success:      r.Form.Get("Success"),
		ApprovalCode: r.Form.Get("ApprovalCode"),
		Signature:    r.Form.Get("Signature"),
		ErrorMessage: r.Form.Get("ErrorMessage"),
	}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrUnknownProvider):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAmbiguousOrder):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOrderResolution):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMalformedNotification),
		errors.Is(err, domain.ErrSignatureMismatch),
		errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
