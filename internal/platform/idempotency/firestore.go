package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	platformfs "github.com/cetinibs/lovacards/internal/platform/firestore"
)

const firestoreCollection = "idempotencyKeys"

// docID hashes the scoped key so it is safe as a document id.
func docID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

type firestoreRecord struct {
	Status    int       `firestore:"status"`
	Body      []byte    `firestore:"body"`
	InFlight  bool      `firestore:"inFlight"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// FirestoreStore persists idempotency records in Firestore.
type FirestoreStore struct {
	provider *platformfs.Provider
	ttl      time.Duration
	clock    func() time.Time
}

// NewFirestoreStore builds a store whose records expire after ttl.
func NewFirestoreStore(provider *platformfs.Provider, ttl time.Duration) *FirestoreStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &FirestoreStore{provider: provider, ttl: ttl, clock: time.Now}
}

func (s *FirestoreStore) doc(ctx context.Context, key string) (*firestore.DocumentRef, error) {
	client, err := s.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(firestoreCollection).Doc(docID(key)), nil
}

func (s *FirestoreStore) Begin(ctx context.Context, key string) (*Record, error) {
	doc, err := s.doc(ctx, key)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	var stored *Record
	client, err := s.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(doc)
		if err != nil && !platformfs.IsNotFound(err) {
			return err
		}
		if snap != nil && snap.Exists() {
			var rec firestoreRecord
			if err := snap.DataTo(&rec); err != nil {
				return err
			}
			if now.Sub(rec.CreatedAt) < s.ttl {
				if rec.InFlight {
					return ErrInFlight
				}
				stored = &Record{Key: key, Status: rec.Status, Body: rec.Body, CreatedAt: rec.CreatedAt}
				return nil
			}
		}
		return tx.Set(doc, firestoreRecord{InFlight: true, CreatedAt: now})
	})
	if errors.Is(err, ErrInFlight) {
		return nil, ErrInFlight
	}
	if err != nil {
		return nil, platformfs.MapError(err)
	}
	return stored, nil
}

func (s *FirestoreStore) Complete(ctx context.Context, record Record) error {
	doc, err := s.doc(ctx, record.Key)
	if err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.clock().UTC()
	}
	_, err = doc.Set(ctx, firestoreRecord{
		Status:    record.Status,
		Body:      record.Body,
		CreatedAt: record.CreatedAt,
	})
	return platformfs.MapError(err)
}

func (s *FirestoreStore) Release(ctx context.Context, key string) error {
	doc, err := s.doc(ctx, key)
	if err != nil {
		return err
	}
	_, err = doc.Delete(ctx)
	return platformfs.MapError(err)
}
