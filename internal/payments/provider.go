// Package payments integrates the Stripe billing provider.
package payments

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Provider implementations.
var (
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")
	ErrUnknownEvent     = errors.New("payments: unhandled event type")
)

// CheckoutRequest starts a premium subscription purchase.
type CheckoutRequest struct {
	UserID     string
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the redirect target for a started purchase.
type CheckoutSession struct {
	ID  string
	URL string
}

// PremiumEvent is a billing event that changes premium status.
type PremiumEvent struct {
	UserID string
	Active bool
	// Until is the end of the current paid period, when known.
	Until *time.Time
}

// Provider starts purchases and interprets webhook callbacks.
type Provider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	// ParseWebhook verifies the payload signature and extracts a
	// premium status change. ErrUnknownEvent means the event is valid
	// but carries no status change.
	ParseWebhook(payload []byte, signature string) (PremiumEvent, error)
}
