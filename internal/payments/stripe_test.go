package payments

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v78"
)

func rawEvent(t *testing.T, eventType string, object any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	if err != nil {
		t.Fatalf("marshal event object: %v", err)
	}
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestMapEventCheckoutCompleted(t *testing.T) {
	event := rawEvent(t, "checkout.session.completed", map[string]any{
		"client_reference_id": "user-1",
	})
	got, err := mapEvent(event)
	if err != nil {
		t.Fatalf("mapEvent: %v", err)
	}
	if got.UserID != "user-1" || !got.Active {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestMapEventCheckoutWithoutReference(t *testing.T) {
	event := rawEvent(t, "checkout.session.completed", map[string]any{})
	if _, err := mapEvent(event); err == nil {
		t.Fatalf("expected error for missing client reference id")
	}
}

func TestMapEventSubscriptionDeleted(t *testing.T) {
	event := rawEvent(t, "customer.subscription.deleted", map[string]any{
		"status":   "canceled",
		"metadata": map[string]string{"userId": "user-1"},
	})
	got, err := mapEvent(event)
	if err != nil {
		t.Fatalf("mapEvent: %v", err)
	}
	if got.UserID != "user-1" || got.Active {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestMapEventSubscriptionActiveWithPeriodEnd(t *testing.T) {
	event := rawEvent(t, "customer.subscription.updated", map[string]any{
		"status":             "active",
		"current_period_end": 1767225600,
		"metadata":           map[string]string{"userId": "user-1"},
	})
	got, err := mapEvent(event)
	if err != nil {
		t.Fatalf("mapEvent: %v", err)
	}
	if !got.Active || got.Until == nil {
		t.Fatalf("unexpected event %+v", got)
	}
	if got.Until.Unix() != 1767225600 {
		t.Fatalf("unexpected period end %v", got.Until)
	}
}

func TestMapEventUnknownType(t *testing.T) {
	event := rawEvent(t, "invoice.finalized", map[string]any{})
	if _, err := mapEvent(event); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}
