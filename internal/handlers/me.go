package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/platform/auth"
	"github.com/cetinibs/lovacards/internal/platform/httpx"
	"github.com/cetinibs/lovacards/internal/services"
)

type entitlementResponse struct {
	Identity      string     `json:"identity"`
	CardsCreated  int        `json:"cardsCreated"`
	RemainingFree int        `json:"remainingFreeCards"`
	IsPremium     bool       `json:"isPremium"`
	PremiumUntil  *time.Time `json:"premiumUntil,omitempty"`
}

func toEntitlementResponse(record domain.Entitlement) entitlementResponse {
	return entitlementResponse{
		Identity:      record.Identity.Key(),
		CardsCreated:  record.CardsCreated,
		RemainingFree: record.RemainingFreeCards(),
		IsPremium:     record.IsPremium,
		PremiumUntil:  record.PremiumUntil,
	}
}

// MeHandler serves the caller's entitlement status and the anonymous
// usage migration.
type MeHandler struct {
	entitlements services.EntitlementService
}

// NewMeHandler builds the handler.
func NewMeHandler(entitlements services.EntitlementService) *MeHandler {
	return &MeHandler{entitlements: entitlements}
}

// Routes registers the endpoints. The caller wraps them with identity
// middleware; migrate additionally requires a signed-in user.
func (h *MeHandler) Routes(r chi.Router) {
	r.Get("/", h.status)
	r.Post("/migrate", h.migrate)
}

func (h *MeHandler) status(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "identity required", nil)
		return
	}
	record, err := h.entitlements.Status(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toEntitlementResponse(record))
}

// migrate folds the caller's anonymous session usage into their user
// record. The session comes from the X-Anon-Session header so the
// client can send it alongside its first authenticated request.
func (h *MeHandler) migrate(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "sign-in required", nil)
		return
	}
	session := strings.TrimSpace(r.Header.Get("X-Anon-Session"))
	if session == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "missing_session", "X-Anon-Session header is required", nil)
		return
	}
	record, err := h.entitlements.Migrate(r.Context(), domain.AnonymousIdentity(session), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, toEntitlementResponse(record))
}
