package idempotency

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cetinibs/lovacards/internal/platform/httpx"
	"github.com/cetinibs/lovacards/internal/platform/requestctx"
)

const (
	keyHeader    = "Idempotency-Key"
	maxKeyLength = 128
)

type bufferingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *bufferingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *bufferingWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

// Middleware replays stored responses for repeated Idempotency-Key values
// on mutating requests. Requests without the header pass through.
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(keyHeader)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxKeyLength {
				httpx.WriteError(w, r, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key too long", nil)
				return
			}

			// Scope the key per route so the same client key cannot
			// replay a response across endpoints.
			scoped := r.Method + " " + r.URL.Path + " " + key

			stored, err := store.Begin(r.Context(), scoped)
			if errors.Is(err, ErrInFlight) {
				httpx.WriteError(w, r, http.StatusConflict, "request_in_flight", "a request with this idempotency key is still processing", nil)
				return
			}
			if err != nil {
				requestctx.Logger(r.Context()).Warn("idempotency: begin failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if stored != nil {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Idempotency-Replayed", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			buf := &bufferingWriter{ResponseWriter: w}
			next.ServeHTTP(buf, r)

			if buf.status >= http.StatusInternalServerError {
				if err := store.Release(r.Context(), scoped); err != nil {
					requestctx.Logger(r.Context()).Warn("idempotency: release failed", zap.Error(err))
				}
				return
			}
			record := Record{
				Key:       scoped,
				Status:    buf.status,
				Body:      buf.body.Bytes(),
				CreatedAt: time.Now().UTC(),
			}
			if err := store.Complete(r.Context(), record); err != nil {
				requestctx.Logger(r.Context()).Warn("idempotency: complete failed", zap.Error(err))
			}
		})
	}
}
