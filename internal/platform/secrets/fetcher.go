// Package secrets resolves secret references through Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Fetcher resolves secret:// references at startup.
type Fetcher struct {
	client    *secretmanager.Client
	projectID string
}

// NewFetcher builds a fetcher bound to a default project for short refs.
func NewFetcher(ctx context.Context, projectID string) (*Fetcher, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secrets: create client: %w", err)
	}
	return &Fetcher{client: client, projectID: projectID}, nil
}

// Resolve fetches the secret payload for ref.
//
// A ref may be a full resource name (projects/.../versions/...) or a
// bare secret name, which resolves to the latest version in the
// fetcher's project.
func (f *Fetcher) Resolve(ref string) (string, error) {
	name := ref
	if !strings.HasPrefix(ref, "projects/") {
		if f.projectID == "" {
			return "", fmt.Errorf("secrets: short ref %q needs a default project", ref)
		}
		name = fmt.Sprintf("projects/%s/secrets/%s/versions/latest", f.projectID, ref)
	}

	resp, err := f.client.AccessSecretVersion(context.Background(), &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("secrets: access %q: %w", name, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

// Close releases the underlying client.
func (f *Fetcher) Close() error {
	return f.client.Close()
}
