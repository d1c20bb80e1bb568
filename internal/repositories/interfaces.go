// Package repositories declares the persistence contracts used by the
// service layer.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/cetinibs/lovacards/internal/domain"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("repositories: not found")

// CardRepository persists card drafts and finished cards.
type CardRepository interface {
	Create(ctx context.Context, card domain.Card) error
	Get(ctx context.Context, id string) (domain.Card, error)
	GetByShareToken(ctx context.Context, token string) (domain.Card, error)
	// Mutate applies fn to the current card inside a transaction and
	// persists the result. fn returning an error aborts the write.
	Mutate(ctx context.Context, id string, fn func(*domain.Card) error) (domain.Card, error)
	ListByOwner(ctx context.Context, ownerKey string) ([]domain.Card, error)
}

// EntitlementRepository persists per-identity usage records.
type EntitlementRepository interface {
	// Get returns the entitlement, or a zero record for identities that
	// have not been seen yet.
	Get(ctx context.Context, identity domain.Identity) (domain.Entitlement, error)
	// IncrementCardsCreated atomically bumps the usage counter and
	// returns the updated record, creating it if needed.
	IncrementCardsCreated(ctx context.Context, identity domain.Identity) (domain.Entitlement, error)
	// SetPremium updates the premium flag for a user identity.
	SetPremium(ctx context.Context, userID string, active bool, until *time.Time) error
	// Migrate folds anonymous usage into the user's record exactly
	// once. Repeated calls with the same pair are no-ops.
	Migrate(ctx context.Context, anon, user domain.Identity) (domain.Entitlement, error)
}

// GalleryRepository serves the community showcase.
type GalleryRepository interface {
	List(ctx context.Context) ([]domain.GalleryItem, error)
	Like(ctx context.Context, id string) (domain.GalleryItem, error)
}

// HealthRepository reports backing store reachability.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
