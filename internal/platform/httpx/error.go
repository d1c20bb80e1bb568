// Package httpx provides the shared HTTP response envelope.
package httpx

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/cetinibs/lovacards/internal/platform/requestctx"
)

// ErrorBody is the JSON payload returned for every error response.
type ErrorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// Error wraps ErrorBody under a stable top-level key.
type Error struct {
	Error ErrorBody `json:"error"`
}

// WriteError renders a JSON error envelope with the request id attached.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]string) {
	body := Error{Error: ErrorBody{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestctx.RequestID(r.Context()),
	}}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		requestctx.Logger(r.Context()).Warn("httpx: encode error body", zap.Error(err))
	}
}

// WriteJSON renders a JSON success payload.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		requestctx.Logger(r.Context()).Warn("httpx: encode payload", zap.Error(err))
	}
}
