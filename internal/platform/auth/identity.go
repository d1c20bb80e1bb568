// Package auth verifies caller identity and exposes it through context.
package auth

import (
	"context"
	"errors"

	"github.com/cetinibs/lovacards/internal/domain"
)

// ErrNoIdentity is returned when the context carries no caller identity.
var ErrNoIdentity = errors.New("auth: no identity in context")

type contextKey string

const identityKey contextKey = "lovacards/identity"

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the caller identity stored by middleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, error) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	if !ok || identity.ID == "" {
		return domain.Identity{}, ErrNoIdentity
	}
	return identity, nil
}

// UserFromContext returns the identity only when it is an authenticated user.
func UserFromContext(ctx context.Context) (domain.Identity, error) {
	identity, err := IdentityFromContext(ctx)
	if err != nil {
		return domain.Identity{}, err
	}
	if identity.Kind != domain.IdentityUser {
		return domain.Identity{}, ErrNoIdentity
	}
	return identity, nil
}
