package auth

import (
	"net/http"
	"strings"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/platform/httpx"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	anonSessionHeader   = "X-Anon-Session"
	maxAnonSessionLen   = 64
)

// Middleware resolves the caller identity for incoming requests.
type Middleware struct {
	verifier TokenVerifier
}

// NewMiddleware builds identity middleware over the given verifier.
func NewMiddleware(verifier TokenVerifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// Optional resolves an identity when one is present but never rejects.
//
// A valid bearer token wins over an anonymous session header. Requests
// with neither proceed without an identity; handlers that require one
// use Require or RequireUser instead.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok, err := m.resolve(r)
		if err != nil {
			httpx.WriteError(w, r, http.StatusUnauthorized, "invalid_token", "bearer token is invalid", nil)
			return
		}
		if ok {
			r = r.WithContext(WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects requests that carry neither a valid bearer token nor
// an anonymous session header.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok, err := m.resolve(r)
		if err != nil {
			httpx.WriteError(w, r, http.StatusUnauthorized, "invalid_token", "bearer token is invalid", nil)
			return
		}
		if !ok {
			httpx.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "authentication or anonymous session required", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireUser rejects every request that is not an authenticated user.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok, err := m.resolve(r)
		if err != nil {
			httpx.WriteError(w, r, http.StatusUnauthorized, "invalid_token", "bearer token is invalid", nil)
			return
		}
		if !ok || identity.Kind != domain.IdentityUser {
			httpx.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "sign-in required", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *Middleware) resolve(r *http.Request) (domain.Identity, bool, error) {
	header := r.Header.Get(authorizationHeader)
	if strings.HasPrefix(header, bearerPrefix) {
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if token == "" {
			return domain.Identity{}, false, ErrNoIdentity
		}
		uid, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			return domain.Identity{}, false, err
		}
		return domain.UserIdentity(uid), true, nil
	}

	session := strings.TrimSpace(r.Header.Get(anonSessionHeader))
	if session == "" || len(session) > maxAnonSessionLen {
		return domain.Identity{}, false, nil
	}
	return domain.AnonymousIdentity(session), true, nil
}
