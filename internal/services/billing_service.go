package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/payments"
	"github.com/cetinibs/lovacards/internal/platform/jobs"
)

// ErrBillingDisabled indicates the deployment runs without a payment
// provider.
var ErrBillingDisabled = errors.New("billing: provider not configured")

// BillingService starts purchases and applies webhook outcomes.
type BillingService interface {
	// StartCheckout creates a checkout session for the signed-in user.
	StartCheckout(ctx context.Context, identity domain.Identity, email string) (payments.CheckoutSession, error)
	// HandleWebhook verifies and applies a provider callback.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// BillingServiceDeps wires the service dependencies.
type BillingServiceDeps struct {
	Provider     payments.Provider
	Entitlements EntitlementService
	SuccessURL   string
	CancelURL    string
	Publisher    jobs.Publisher
	Logger       *zap.Logger
	Clock        func() time.Time
}

type billingService struct {
	provider     payments.Provider
	entitlements EntitlementService
	successURL   string
	cancelURL    string
	publisher    jobs.Publisher
	logger       *zap.Logger
	clock        func() time.Time
}

// NewBillingService validates deps and builds the service.
func NewBillingService(deps BillingServiceDeps) (BillingService, error) {
	if deps.Entitlements == nil {
		return nil, fmt.Errorf("services: entitlement service is required")
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = jobs.NopPublisher{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &billingService{
		provider:     deps.Provider,
		entitlements: deps.Entitlements,
		successURL:   deps.SuccessURL,
		cancelURL:    deps.CancelURL,
		publisher:    publisher,
		logger:       logger,
		clock:        func() time.Time { return clock().UTC() },
	}, nil
}

func (s *billingService) StartCheckout(ctx context.Context, identity domain.Identity, email string) (payments.CheckoutSession, error) {
	if s.provider == nil {
		return payments.CheckoutSession{}, ErrBillingDisabled
	}
	if identity.Kind != domain.IdentityUser || identity.Zero() {
		return payments.CheckoutSession{}, fmt.Errorf("services: checkout needs a signed-in user")
	}
	session, err := s.provider.CreateCheckout(ctx, payments.CheckoutRequest{
		UserID:     identity.ID,
		Email:      email,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		return payments.CheckoutSession{}, err
	}
	s.logger.Info("checkout session created",
		zap.String("user", identity.ID), zap.String("session", session.ID))
	return session, nil
}

func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return ErrBillingDisabled
	}
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		// Valid events with no premium change are acknowledged.
		if errors.Is(err, payments.ErrUnknownEvent) {
			return nil
		}
		return err
	}
	if err := s.entitlements.SetPremium(ctx, event.UserID, event.Active, event.Until); err != nil {
		return fmt.Errorf("billing: apply premium change: %w", err)
	}
	s.logger.Info("premium status updated",
		zap.String("user", event.UserID), zap.Bool("active", event.Active))

	published := jobs.Event{
		Type:       "billing.premium_changed",
		OccurredAt: s.clock(),
		Payload:    map[string]any{"userId": event.UserID, "active": event.Active},
	}
	if err := s.publisher.Publish(ctx, published); err != nil {
		s.logger.Warn("publish billing event failed", zap.Error(err))
	}
	return nil
}
