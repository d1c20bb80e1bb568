package domain

import (
	"fmt"
	"strings"
	"time"
)

// FreeCardLimit is the number of cards an identity may create before the
// paywall engages.
const FreeCardLimit = 1

// IdentityKind distinguishes anonymous browser sessions from signed-in users.
type IdentityKind string

const (
	IdentityAnonymous IdentityKind = "anon"
	IdentityUser      IdentityKind = "user"
)

// Identity names the principal an entitlement record belongs to. Anonymous
// sessions and authenticated users track usage independently until merged.
type Identity struct {
	Kind IdentityKind
	ID   string
}

// AnonymousIdentity builds an anonymous identity from a session id.
func AnonymousIdentity(sessionID string) Identity {
	return Identity{Kind: IdentityAnonymous, ID: strings.TrimSpace(sessionID)}
}

// UserIdentity builds an authenticated identity from a Firebase UID.
func UserIdentity(uid string) Identity {
	return Identity{Kind: IdentityUser, ID: strings.TrimSpace(uid)}
}

// Zero reports whether the identity carries no usable id.
func (i Identity) Zero() bool {
	return strings.TrimSpace(i.ID) == ""
}

// Key returns the stable owner key used to tag documents owned by this identity.
func (i Identity) Key() string {
	return fmt.Sprintf("%s/%s", i.Kind, i.ID)
}

// Entitlement is the per-identity usage record backing the free-tier gate.
type Entitlement struct {
	Identity     Identity
	CardsCreated int
	IsPremium    bool
	PremiumUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanCreateCard derives the right to start a new card.
func (e Entitlement) CanCreateCard() bool {
	return e.IsPremium || e.CardsCreated < FreeCardLimit
}

// RemainingFreeCards reports how many free cards are left; premium
// identities report the full limit since the gate never engages for them.
func (e Entitlement) RemainingFreeCards() int {
	if e.IsPremium {
		return FreeCardLimit
	}
	remaining := FreeCardLimit - e.CardsCreated
	if remaining < 0 {
		return 0
	}
	return remaining
}
