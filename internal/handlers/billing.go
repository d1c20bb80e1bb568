package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cetinibs/lovacards/internal/payments"
	"github.com/cetinibs/lovacards/internal/platform/auth"
	"github.com/cetinibs/lovacards/internal/platform/httpx"
	"github.com/cetinibs/lovacards/internal/services"
)

const maxWebhookBody = 1 << 16

// BillingHandler serves checkout and the provider webhook.
type BillingHandler struct {
	billing services.BillingService
}

// NewBillingHandler builds the handler.
func NewBillingHandler(billing services.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// CheckoutRoutes registers the user-facing endpoint. The caller wraps
// it with RequireUser middleware.
func (h *BillingHandler) CheckoutRoutes(r chi.Router) {
	r.Post("/checkout", h.checkout)
}

// WebhookRoutes registers the provider callback. It stays outside the
// identity middleware; the payload signature is the authentication.
func (h *BillingHandler) WebhookRoutes(r chi.Router) {
	r.Post("/webhook", h.webhook)
}

func (h *BillingHandler) checkout(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "sign-in required", nil)
		return
	}
	var body struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	session, err := h.billing.StartCheckout(r.Context(), user, body.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, map[string]string{
		"sessionId":   session.ID,
		"checkoutUrl": session.URL,
	})
}

func (h *BillingHandler) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "could not read payload", nil)
		return
	}
	err = h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed", nil)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
