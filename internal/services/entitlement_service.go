// Package services holds the application logic between handlers and
// repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/repositories"
)

var (
	// ErrPaywall indicates the identity exhausted its free cards.
	ErrPaywall = errors.New("entitlement: free card limit reached")
	// ErrEntitlementUnavailable indicates the usage store could not be
	// consulted and the deployment runs fail-closed.
	ErrEntitlementUnavailable = errors.New("entitlement: store unavailable")
)

// EntitlementService gates card creation and tracks usage.
type EntitlementService interface {
	// Status returns the identity's usage record.
	Status(ctx context.Context, identity domain.Identity) (domain.Entitlement, error)
	// Authorize checks that the identity may create a card.
	Authorize(ctx context.Context, identity domain.Identity) error
	// RecordCardCreated bumps the usage counter after a card is finished.
	RecordCardCreated(ctx context.Context, identity domain.Identity) (domain.Entitlement, error)
	// Migrate folds anonymous usage into the signed-in user's record.
	Migrate(ctx context.Context, anon, user domain.Identity) (domain.Entitlement, error)
	// SetPremium flips the premium flag from a billing event.
	SetPremium(ctx context.Context, userID string, active bool, until *time.Time) error
}

// EntitlementServiceDeps wires the service dependencies.
type EntitlementServiceDeps struct {
	Entitlements repositories.EntitlementRepository
	// FailOpen allows creation when the store is unreachable. The
	// default is fail-closed.
	FailOpen bool
	Logger   *zap.Logger
	Clock    func() time.Time
}

type entitlementService struct {
	entitlements repositories.EntitlementRepository
	failOpen     bool
	logger       *zap.Logger
	clock        func() time.Time
}

// NewEntitlementService validates deps and builds the service.
func NewEntitlementService(deps EntitlementServiceDeps) (EntitlementService, error) {
	if deps.Entitlements == nil {
		return nil, fmt.Errorf("services: entitlement repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &entitlementService{
		entitlements: deps.Entitlements,
		failOpen:     deps.FailOpen,
		logger:       logger,
		clock:        func() time.Time { return clock().UTC() },
	}, nil
}

func (s *entitlementService) Status(ctx context.Context, identity domain.Identity) (domain.Entitlement, error) {
	if identity.Zero() {
		return domain.Entitlement{}, fmt.Errorf("services: identity is required")
	}
	return s.entitlements.Get(ctx, identity)
}

func (s *entitlementService) Authorize(ctx context.Context, identity domain.Identity) error {
	if identity.Zero() {
		return fmt.Errorf("services: identity is required")
	}
	record, err := s.entitlements.Get(ctx, identity)
	if err != nil {
		if s.failOpen {
			s.logger.Warn("entitlement store unavailable, allowing creation",
				zap.String("identity", identity.Key()), zap.Error(err))
			return nil
		}
		return fmt.Errorf("%w: %w", ErrEntitlementUnavailable, err)
	}
	if !record.CanCreateCard() {
		return ErrPaywall
	}
	return nil
}

func (s *entitlementService) RecordCardCreated(ctx context.Context, identity domain.Identity) (domain.Entitlement, error) {
	return s.entitlements.IncrementCardsCreated(ctx, identity)
}

func (s *entitlementService) Migrate(ctx context.Context, anon, user domain.Identity) (domain.Entitlement, error) {
	if anon.Zero() || user.Zero() {
		return domain.Entitlement{}, fmt.Errorf("services: both identities are required")
	}
	record, err := s.entitlements.Migrate(ctx, anon, user)
	if err != nil {
		return domain.Entitlement{}, err
	}
	s.logger.Info("anonymous usage migrated",
		zap.String("session", anon.ID), zap.String("user", user.ID))
	return record, nil
}

func (s *entitlementService) SetPremium(ctx context.Context, userID string, active bool, until *time.Time) error {
	if userID == "" {
		return fmt.Errorf("services: user id is required")
	}
	return s.entitlements.SetPremium(ctx, userID, active, until)
}
