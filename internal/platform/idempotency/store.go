// Package idempotency replays stored responses for repeated request keys.
package idempotency

import (
	"context"
	"errors"
	"time"
)

// ErrInFlight is returned when another request holds the same key.
var ErrInFlight = errors.New("idempotency: key in flight")

// Record is one stored response.
type Record struct {
	Key       string
	Status    int
	Body      []byte
	CreatedAt time.Time
}

// Store persists responses keyed by caller-supplied idempotency keys.
type Store interface {
	// Begin claims the key. It returns the stored record when the key
	// was already completed, ErrInFlight when another request holds it,
	// and (nil, nil) when the claim succeeded.
	Begin(ctx context.Context, key string) (*Record, error)
	// Complete stores the response for a claimed key.
	Complete(ctx context.Context, record Record) error
	// Release frees a claimed key without storing a response.
	Release(ctx context.Context, key string) error
}
