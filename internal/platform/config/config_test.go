package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "demo-project")
	t.Setenv("BILLING_DISABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Generator.Strategy != "template" {
		t.Fatalf("unexpected strategy %q", cfg.Generator.Strategy)
	}
	if cfg.Generator.Timeout != 15*time.Second {
		t.Fatalf("unexpected generator timeout %v", cfg.Generator.Timeout)
	}
	if cfg.Entitlements.FailOpen {
		t.Fatalf("fail-open must default to false")
	}
	if cfg.Share.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected share base url %q", cfg.Share.BaseURL)
	}
}

func TestLoadRejectsGeminiWithoutKey(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "demo-project")
	t.Setenv("BILLING_DISABLED", "true")
	t.Setenv("GENERATOR_STRATEGY", "gemini")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for gemini strategy without key")
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "demo-project")
	t.Setenv("BILLING_DISABLED", "true")
	t.Setenv("GENERATOR_STRATEGY", "markov")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestLoadTrimsShareBaseURL(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "demo-project")
	t.Setenv("BILLING_DISABLED", "true")
	t.Setenv("SHARE_BASE_URL", "https://lovacards.app/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Share.BaseURL != "https://lovacards.app" {
		t.Fatalf("unexpected share base url %q", cfg.Share.BaseURL)
	}
}

type staticResolver struct {
	values map[string]string
	err    error
}

func (s staticResolver) Resolve(ref string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.values[ref], nil
}

func TestResolveSecrets(t *testing.T) {
	cfg := Config{
		Generator: Generator{APIKey: "secret://projects/p/secrets/gemini/versions/latest"},
		Billing:   Billing{StripeAPIKey: "sk_test_literal"},
	}
	resolver := staticResolver{values: map[string]string{
		"projects/p/secrets/gemini/versions/latest": "resolved-key",
	}}
	if err := cfg.ResolveSecrets(resolver); err != nil {
		t.Fatalf("ResolveSecrets: %v", err)
	}
	if cfg.Generator.APIKey != "resolved-key" {
		t.Fatalf("unexpected api key %q", cfg.Generator.APIKey)
	}
	if cfg.Billing.StripeAPIKey != "sk_test_literal" {
		t.Fatalf("literal value must be untouched, got %q", cfg.Billing.StripeAPIKey)
	}
}

func TestResolveSecretsPropagatesError(t *testing.T) {
	cfg := Config{Billing: Billing{WebhookSecret: "secret://missing"}}
	wantErr := errors.New("not found")
	if err := cfg.ResolveSecrets(staticResolver{err: wantErr}); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped resolver error, got %v", err)
	}
}
