// Package firestore provides the shared Firestore client and generic
// repository plumbing.
package firestore

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
)

// Provider lazily builds and shares a single Firestore client.
type Provider struct {
	projectID  string
	databaseID string

	once   sync.Once
	client *firestore.Client
	err    error
}

// NewProvider returns a provider for the given project and database.
func NewProvider(projectID, databaseID string) (*Provider, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore: project id is required")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	return &Provider{projectID: projectID, databaseID: databaseID}, nil
}

// Client returns the shared client, creating it on first use.
func (p *Provider) Client(ctx context.Context) (*firestore.Client, error) {
	p.once.Do(func() {
		p.client, p.err = firestore.NewClientWithDatabase(ctx, p.projectID, p.databaseID)
		if p.err != nil {
			p.err = fmt.Errorf("firestore: create client: %w", p.err)
		}
	})
	return p.client, p.err
}

// Close releases the shared client if one was created.
func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
