package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

const userIDMetadataKey = "userId"

// StripeProvider implements Provider on the Stripe API.
type StripeProvider struct {
	api           *client.API
	priceID       string
	webhookSecret string
}

// NewStripeProvider builds a provider for one premium price.
func NewStripeProvider(apiKey, priceID, webhookSecret string) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("payments: stripe api key is required")
	}
	if priceID == "" {
		return nil, fmt.Errorf("payments: premium price id is required")
	}
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{api: api, priceID: priceID, webhookSecret: webhookSecret}, nil
}

// CreateCheckout starts a subscription-mode checkout session.
func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(p.priceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{userIDMetadataKey: req.UserID},
		},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("payments: create checkout session: %w", err)
	}
	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe signature and maps the event to a
// premium status change.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (PremiumEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return PremiumEvent{}, ErrInvalidSignature
	}
	return mapEvent(event)
}

func mapEvent(event stripe.Event) (PremiumEvent, error) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return PremiumEvent{}, fmt.Errorf("payments: decode checkout session: %w", err)
		}
		if sess.ClientReferenceID == "" {
			return PremiumEvent{}, fmt.Errorf("payments: checkout session missing client reference id")
		}
		return PremiumEvent{UserID: sess.ClientReferenceID, Active: true}, nil

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return PremiumEvent{}, fmt.Errorf("payments: decode subscription: %w", err)
		}
		userID := sub.Metadata[userIDMetadataKey]
		if userID == "" {
			return PremiumEvent{}, fmt.Errorf("payments: subscription missing %s metadata", userIDMetadataKey)
		}
		active := sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing
		out := PremiumEvent{UserID: userID, Active: active}
		if sub.CurrentPeriodEnd > 0 {
			until := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
			out.Until = &until
		}
		return out, nil

	default:
		return PremiumEvent{}, ErrUnknownEvent
	}
}
