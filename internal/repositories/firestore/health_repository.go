package firestore

import (
	"context"
	"fmt"

	platformfs "github.com/cetinibs/lovacards/internal/platform/firestore"
)

// HealthRepository checks Firestore reachability with a cheap read.
type HealthRepository struct {
	provider *platformfs.Provider
}

// NewHealthRepository wires the repository over the shared provider.
func NewHealthRepository(provider *platformfs.Provider) (*HealthRepository, error) {
	if provider == nil {
		return nil, fmt.Errorf("firestore: provider is required")
	}
	return &HealthRepository{provider: provider}, nil
}

// Ping reads a well-known document. A missing document still proves the
// store is reachable.
func (r *HealthRepository) Ping(ctx context.Context) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.Collection("health").Doc("probe").Get(ctx)
	if err != nil && !platformfs.IsNotFound(err) {
		return platformfs.MapError(err)
	}
	return nil
}
