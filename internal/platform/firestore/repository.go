package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Encoder converts a domain value into a Firestore document map.
type Encoder[T any] func(T) (map[string]any, error)

// Decoder converts a Firestore snapshot back into a domain value.
type Decoder[T any] func(*firestore.DocumentSnapshot) (T, error)

// BaseRepository implements the common get/set/create/delete operations
// for one collection of T documents.
type BaseRepository[T any] struct {
	provider   *Provider
	collection string
	encode     Encoder[T]
	decode     Decoder[T]
}

// NewBaseRepository wires a typed repository over one collection.
func NewBaseRepository[T any](provider *Provider, collection string, encode Encoder[T], decode Decoder[T]) (*BaseRepository[T], error) {
	if provider == nil {
		return nil, fmt.Errorf("firestore: provider is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("firestore: collection name is required")
	}
	if encode == nil || decode == nil {
		return nil, fmt.Errorf("firestore: encoder and decoder are required")
	}
	return &BaseRepository[T]{
		provider:   provider,
		collection: collection,
		encode:     encode,
		decode:     decode,
	}, nil
}

// Doc returns the document reference for id.
func (r *BaseRepository[T]) Doc(ctx context.Context, id string) (*firestore.DocumentRef, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(r.collection).Doc(id), nil
}

// Get fetches one document by id.
func (r *BaseRepository[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := r.Doc(ctx, id)
	if err != nil {
		return zero, err
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		return zero, MapError(err)
	}
	return r.decode(snap)
}

// Set writes one document by id, replacing any existing content.
func (r *BaseRepository[T]) Set(ctx context.Context, id string, value T) error {
	doc, err := r.Doc(ctx, id)
	if err != nil {
		return err
	}
	data, err := r.encode(value)
	if err != nil {
		return fmt.Errorf("firestore: encode %s/%s: %w", r.collection, id, err)
	}
	if _, err := doc.Set(ctx, data); err != nil {
		return MapError(err)
	}
	return nil
}

// Create writes one document by id and fails if it already exists.
func (r *BaseRepository[T]) Create(ctx context.Context, id string, value T) error {
	doc, err := r.Doc(ctx, id)
	if err != nil {
		return err
	}
	data, err := r.encode(value)
	if err != nil {
		return fmt.Errorf("firestore: encode %s/%s: %w", r.collection, id, err)
	}
	if _, err := doc.Create(ctx, data); err != nil {
		return MapError(err)
	}
	return nil
}

// Delete removes one document by id. Missing documents are not an error.
func (r *BaseRepository[T]) Delete(ctx context.Context, id string) error {
	doc, err := r.Doc(ctx, id)
	if err != nil {
		return err
	}
	if _, err := doc.Delete(ctx); err != nil {
		return MapError(err)
	}
	return nil
}

// QueryAll decodes every document matched by build.
func (r *BaseRepository[T]) QueryAll(ctx context.Context, build func(firestore.Query) firestore.Query) ([]T, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	query := build(client.Collection(r.collection).Query)
	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []T
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, MapError(err)
		}
		value, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
}

// RunTransaction executes fn inside a Firestore transaction.
func (r *BaseRepository[T]) RunTransaction(ctx context.Context, fn func(context.Context, *firestore.Transaction) error) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	if err := client.RunTransaction(ctx, fn); err != nil {
		return MapError(err)
	}
	return nil
}

// TxGet fetches one document inside a transaction.
func (r *BaseRepository[T]) TxGet(tx *firestore.Transaction, doc *firestore.DocumentRef) (T, error) {
	var zero T
	snap, err := tx.Get(doc)
	if err != nil {
		return zero, MapError(err)
	}
	return r.decode(snap)
}

// TxSet writes one document inside a transaction.
func (r *BaseRepository[T]) TxSet(tx *firestore.Transaction, doc *firestore.DocumentRef, value T) error {
	data, err := r.encode(value)
	if err != nil {
		return fmt.Errorf("firestore: encode %s: %w", doc.Path, err)
	}
	return tx.Set(doc, data)
}
