package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/cetinibs/lovacards/internal/domain"
	platformfs "github.com/cetinibs/lovacards/internal/platform/firestore"
)

const (
	usersCollection = "users"
	anonCollection  = "anonymousSessions"
)

type entitlementDoc struct {
	CardsCreated int        `firestore:"cardsCreated"`
	IsPremium    bool       `firestore:"isPremium"`
	PremiumUntil *time.Time `firestore:"premiumUntil"`
	// MigratedTo records the uid anonymous usage was folded into. Set
	// at most once; later migrations of the same session are no-ops.
	MigratedTo string    `firestore:"migratedTo"`
	CreatedAt  time.Time `firestore:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
}

func (d entitlementDoc) toDomain(identity domain.Identity) domain.Entitlement {
	return domain.Entitlement{
		Identity:     identity,
		CardsCreated: d.CardsCreated,
		IsPremium:    d.IsPremium,
		PremiumUntil: d.PremiumUntil,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// EntitlementRepository stores usage records in the users and
// anonymousSessions collections.
type EntitlementRepository struct {
	provider *platformfs.Provider
	clock    func() time.Time
}

// NewEntitlementRepository wires the repository over the shared provider.
func NewEntitlementRepository(provider *platformfs.Provider) (*EntitlementRepository, error) {
	if provider == nil {
		return nil, fmt.Errorf("firestore: provider is required")
	}
	return &EntitlementRepository{provider: provider, clock: time.Now}, nil
}

func collectionFor(kind domain.IdentityKind) string {
	if kind == domain.IdentityAnonymous {
		return anonCollection
	}
	return usersCollection
}

func (r *EntitlementRepository) doc(ctx context.Context, identity domain.Identity) (*firestore.DocumentRef, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(collectionFor(identity.Kind)).Doc(identity.ID), nil
}

func (r *EntitlementRepository) Get(ctx context.Context, identity domain.Identity) (domain.Entitlement, error) {
	ref, err := r.doc(ctx, identity)
	if err != nil {
		return domain.Entitlement{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if platformfs.IsNotFound(err) {
			return domain.Entitlement{Identity: identity}, nil
		}
		return domain.Entitlement{}, platformfs.MapError(err)
	}
	var doc entitlementDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Entitlement{}, fmt.Errorf("decode entitlement %s: %w", snap.Ref.ID, err)
	}
	return doc.toDomain(identity), nil
}

// mutate applies fn to the identity's raw record inside a transaction.
func (r *EntitlementRepository) mutate(ctx context.Context, identity domain.Identity, fn func(*entitlementDoc)) (domain.Entitlement, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.Entitlement{}, err
	}
	ref, err := r.doc(ctx, identity)
	if err != nil {
		return domain.Entitlement{}, err
	}

	var out entitlementDoc
	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := txGetDoc(tx, ref)
		if err != nil {
			return err
		}
		now := r.clock().UTC()
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = now
		}
		fn(&doc)
		doc.UpdatedAt = now
		out = doc
		return tx.Set(ref, doc)
	})
	if err != nil {
		return domain.Entitlement{}, platformfs.MapError(err)
	}
	return out.toDomain(identity), nil
}

func (r *EntitlementRepository) IncrementCardsCreated(ctx context.Context, identity domain.Identity) (domain.Entitlement, error) {
	return r.mutate(ctx, identity, func(doc *entitlementDoc) {
		doc.CardsCreated++
	})
}

func (r *EntitlementRepository) SetPremium(ctx context.Context, userID string, active bool, until *time.Time) error {
	_, err := r.mutate(ctx, domain.UserIdentity(userID), func(doc *entitlementDoc) {
		doc.IsPremium = active
		doc.PremiumUntil = until
	})
	return err
}

func (r *EntitlementRepository) Migrate(ctx context.Context, anon, user domain.Identity) (domain.Entitlement, error) {
	if anon.Kind != domain.IdentityAnonymous || user.Kind != domain.IdentityUser {
		return domain.Entitlement{}, fmt.Errorf("firestore: migrate needs an anonymous source and a user target")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return domain.Entitlement{}, err
	}
	anonRef, err := r.doc(ctx, anon)
	if err != nil {
		return domain.Entitlement{}, err
	}
	userRef, err := r.doc(ctx, user)
	if err != nil {
		return domain.Entitlement{}, err
	}

	var out entitlementDoc
	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		anonDoc, err := txGetDoc(tx, anonRef)
		if err != nil {
			return err
		}
		userDoc, err := txGetDoc(tx, userRef)
		if err != nil {
			return err
		}
		now := r.clock().UTC()
		if userDoc.CreatedAt.IsZero() {
			userDoc.CreatedAt = now
		}

		if anonDoc.MigratedTo == "" && anonDoc.CardsCreated > 0 {
			userDoc.CardsCreated += anonDoc.CardsCreated
		}
		if anonDoc.MigratedTo == "" {
			anonDoc.MigratedTo = user.ID
			anonDoc.CardsCreated = 0
			if anonDoc.CreatedAt.IsZero() {
				anonDoc.CreatedAt = now
			}
			anonDoc.UpdatedAt = now
			if err := tx.Set(anonRef, anonDoc); err != nil {
				return err
			}
		}

		userDoc.UpdatedAt = now
		out = userDoc
		return tx.Set(userRef, userDoc)
	})
	if err != nil {
		return domain.Entitlement{}, platformfs.MapError(err)
	}
	return out.toDomain(user), nil
}

func txGetDoc(tx *firestore.Transaction, ref *firestore.DocumentRef) (entitlementDoc, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if platformfs.IsNotFound(err) {
			return entitlementDoc{}, nil
		}
		return entitlementDoc{}, err
	}
	if !snap.Exists() {
		return entitlementDoc{}, nil
	}
	var doc entitlementDoc
	if err := snap.DataTo(&doc); err != nil {
		return entitlementDoc{}, fmt.Errorf("decode entitlement %s: %w", snap.Ref.ID, err)
	}
	return doc, nil
}
