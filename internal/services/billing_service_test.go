package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cetinibs/lovacards/internal/domain"
	"github.com/cetinibs/lovacards/internal/payments"
)

type stubProvider struct {
	session     payments.CheckoutSession
	checkoutErr error
	event       payments.PremiumEvent
	parseErr    error
}

func (p stubProvider) CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (payments.CheckoutSession, error) {
	return p.session, p.checkoutErr
}

func (p stubProvider) ParseWebhook(payload []byte, signature string) (payments.PremiumEvent, error) {
	return p.event, p.parseErr
}

func newBilling(t *testing.T, provider payments.Provider, entRepo *stubEntitlementRepo) BillingService {
	t.Helper()
	ents, err := NewEntitlementService(EntitlementServiceDeps{Entitlements: entRepo, Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewEntitlementService: %v", err)
	}
	svc, err := NewBillingService(BillingServiceDeps{
		Provider:     provider,
		Entitlements: ents,
		SuccessURL:   "https://lovacards.app/upgrade/success",
		CancelURL:    "https://lovacards.app/upgrade/cancel",
		Clock:        fixedClock,
	})
	if err != nil {
		t.Fatalf("NewBillingService: %v", err)
	}
	return svc
}

func TestStartCheckoutRequiresUser(t *testing.T) {
	svc := newBilling(t, stubProvider{}, newStubEntitlementRepo())
	if _, err := svc.StartCheckout(context.Background(), domain.AnonymousIdentity("sess-1"), ""); err == nil {
		t.Fatalf("expected error for anonymous checkout")
	}
}

func TestStartCheckoutReturnsSession(t *testing.T) {
	provider := stubProvider{session: payments.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/cs_1"}}
	svc := newBilling(t, provider, newStubEntitlementRepo())

	session, err := svc.StartCheckout(context.Background(), domain.UserIdentity("user-1"), "u@example.com")
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	if session.URL != "https://checkout.stripe.com/cs_1" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestHandleWebhookGrantsPremium(t *testing.T) {
	until := fixedNow.Add(30 * 24 * time.Hour)
	provider := stubProvider{event: payments.PremiumEvent{UserID: "user-1", Active: true, Until: &until}}
	entRepo := newStubEntitlementRepo()
	svc := newBilling(t, provider, entRepo)

	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	record, _ := entRepo.Get(context.Background(), domain.UserIdentity("user-1"))
	if !record.IsPremium || record.PremiumUntil == nil {
		t.Fatalf("premium not applied: %+v", record)
	}
}

func TestHandleWebhookRevokesPremium(t *testing.T) {
	provider := stubProvider{event: payments.PremiumEvent{UserID: "user-1", Active: false}}
	entRepo := newStubEntitlementRepo()
	entRepo.records["user/user-1"] = domain.Entitlement{Identity: domain.UserIdentity("user-1"), IsPremium: true}
	svc := newBilling(t, provider, entRepo)

	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	record, _ := entRepo.Get(context.Background(), domain.UserIdentity("user-1"))
	if record.IsPremium {
		t.Fatalf("premium not revoked: %+v", record)
	}
}

func TestHandleWebhookIgnoresUnknownEvents(t *testing.T) {
	provider := stubProvider{parseErr: payments.ErrUnknownEvent}
	svc := newBilling(t, provider, newStubEntitlementRepo())
	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("unknown events must be acknowledged, got %v", err)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	provider := stubProvider{parseErr: payments.ErrInvalidSignature}
	svc := newBilling(t, provider, newStubEntitlementRepo())
	if err := svc.HandleWebhook(context.Background(), []byte("{}"), "bad"); !errors.Is(err, payments.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestMigrateFoldsAnonymousUsage(t *testing.T) {
	entRepo := newStubEntitlementRepo()
	anon := domain.AnonymousIdentity("sess-1")
	user := domain.UserIdentity("user-1")
	entRepo.records[anon.Key()] = domain.Entitlement{Identity: anon, CardsCreated: 1}
	svc, err := NewEntitlementService(EntitlementServiceDeps{Entitlements: entRepo, Clock: fixedClock})
	if err != nil {
		t.Fatalf("NewEntitlementService: %v", err)
	}

	record, err := svc.Migrate(context.Background(), anon, user)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if record.CardsCreated != 1 {
		t.Fatalf("usage not folded: %+v", record)
	}
	if record.CanCreateCard() {
		t.Fatalf("migrated user should be at the free limit")
	}
}
