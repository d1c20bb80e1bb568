// Package config loads process configuration from the environment.
//
// Secret-bearing values accept either a literal or a "secret://" reference
// that is resolved through Secret Manager at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const secretScheme = "secret://"

// Config is the full process configuration.
type Config struct {
	Server       Server
	Firebase     Firebase
	Firestore    Firestore
	Generator    Generator
	Share        Share
	Entitlements Entitlements
	Billing      Billing
	Jobs         Jobs
	Log          Log
}

// Server holds HTTP listener settings.
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Firebase holds identity verification settings.
type Firebase struct {
	ProjectID string
	// Disabled turns off token verification for local development.
	Disabled bool
}

// Firestore holds document store settings.
type Firestore struct {
	ProjectID  string
	DatabaseID string
}

// Generator holds content generation settings.
type Generator struct {
	// Strategy is "template" or "gemini".
	Strategy string
	// APIKey may be a secret:// reference.
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Share holds share-link settings.
type Share struct {
	// BaseURL is the public origin for deep links, without trailing slash.
	BaseURL string
}

// Entitlements holds free-tier enforcement settings.
type Entitlements struct {
	// FailOpen allows card creation when the entitlement store is
	// unreachable. Default is fail-closed.
	FailOpen bool
}

// Billing holds payment provider settings.
type Billing struct {
	// StripeAPIKey and WebhookSecret may be secret:// references.
	StripeAPIKey  string
	WebhookSecret string
	PremiumPrice  string
	SuccessURL    string
	CancelURL     string
	Disabled      bool
}

// Jobs holds event publishing settings.
type Jobs struct {
	Topic    string
	Disabled bool
}

// Log holds logger settings.
type Log struct {
	Level       string
	Pretty      bool
	Environment string
}

// SecretResolver resolves a secret reference to its value.
type SecretResolver interface {
	Resolve(ref string) (string, error)
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:            getenv("SERVER_ADDR", ":8080"),
			ReadTimeout:     duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     duration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: duration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Firebase: Firebase{
			ProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
			Disabled:  boolean("FIREBASE_AUTH_DISABLED", false),
		},
		Firestore: Firestore{
			ProjectID:  getenv("FIRESTORE_PROJECT_ID", os.Getenv("FIREBASE_PROJECT_ID")),
			DatabaseID: getenv("FIRESTORE_DATABASE_ID", "(default)"),
		},
		Generator: Generator{
			Strategy: getenv("GENERATOR_STRATEGY", "template"),
			APIKey:   os.Getenv("GENERATOR_API_KEY"),
			Model:    getenv("GENERATOR_MODEL", "gemini-2.5-flash"),
			Timeout:  duration("GENERATOR_TIMEOUT", 15*time.Second),
		},
		Share: Share{
			BaseURL: strings.TrimRight(getenv("SHARE_BASE_URL", "http://localhost:8080"), "/"),
		},
		Entitlements: Entitlements{
			FailOpen: boolean("ENTITLEMENTS_FAIL_OPEN", false),
		},
		Billing: Billing{
			StripeAPIKey:  os.Getenv("STRIPE_API_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			PremiumPrice:  os.Getenv("STRIPE_PREMIUM_PRICE_ID"),
			SuccessURL:    getenv("BILLING_SUCCESS_URL", ""),
			CancelURL:     getenv("BILLING_CANCEL_URL", ""),
			Disabled:      boolean("BILLING_DISABLED", false),
		},
		Jobs: Jobs{
			Topic:    getenv("JOBS_TOPIC", "lovacards-events"),
			Disabled: boolean("JOBS_DISABLED", false),
		},
		Log: Log{
			Level:       getenv("LOG_LEVEL", "info"),
			Pretty:      boolean("LOG_PRETTY", false),
			Environment: getenv("ENVIRONMENT", "dev"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveSecrets replaces secret:// references with resolved values.
func (c *Config) ResolveSecrets(resolver SecretResolver) error {
	targets := []*string{
		&c.Generator.APIKey,
		&c.Billing.StripeAPIKey,
		&c.Billing.WebhookSecret,
	}
	for _, target := range targets {
		if !strings.HasPrefix(*target, secretScheme) {
			continue
		}
		ref := strings.TrimPrefix(*target, secretScheme)
		value, err := resolver.Resolve(ref)
		if err != nil {
			return fmt.Errorf("config: resolve secret %q: %w", ref, err)
		}
		*target = value
	}
	return nil
}

func (c Config) validate() error {
	switch c.Generator.Strategy {
	case "template", "gemini":
	default:
		return fmt.Errorf("config: unknown generator strategy %q", c.Generator.Strategy)
	}
	if c.Generator.Strategy == "gemini" && c.Generator.APIKey == "" {
		return fmt.Errorf("config: GENERATOR_API_KEY is required for the gemini strategy")
	}
	if c.Firestore.ProjectID == "" {
		return fmt.Errorf("config: FIRESTORE_PROJECT_ID is required")
	}
	if !c.Billing.Disabled {
		if c.Billing.StripeAPIKey == "" {
			return fmt.Errorf("config: STRIPE_API_KEY is required unless BILLING_DISABLED=true")
		}
		if c.Billing.PremiumPrice == "" {
			return fmt.Errorf("config: STRIPE_PREMIUM_PRICE_ID is required unless BILLING_DISABLED=true")
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolean(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
