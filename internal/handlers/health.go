package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cetinibs/lovacards/internal/platform/httpx"
	"github.com/cetinibs/lovacards/internal/services"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	system services.SystemService
}

// NewHealthHandler builds the handler.
func NewHealthHandler(system services.SystemService) *HealthHandler {
	return &HealthHandler{system: system}
}

// Routes registers the probes.
func (h *HealthHandler) Routes(r chi.Router) {
	r.Get("/healthz", h.liveness)
	r.Get("/readyz", h.readiness)
}

func (h *HealthHandler) liveness(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	report := h.system.Health(r.Context())
	status := http.StatusOK
	body := map[string]any{"status": "ok", "checkedAt": report.CheckedAt}
	if !report.Healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["detail"] = report.Detail
	}
	httpx.WriteJSON(w, r, status, body)
}
