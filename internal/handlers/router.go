package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cetinibs/lovacards/internal/platform/auth"
	"github.com/cetinibs/lovacards/internal/platform/httpx"
	"github.com/cetinibs/lovacards/internal/platform/idempotency"
	"github.com/cetinibs/lovacards/internal/platform/observability"
)

// RouterDeps carries the cross-cutting middleware inputs.
type RouterDeps struct {
	Logger   *zap.Logger
	Auth     *auth.Middleware
	IdemKeys idempotency.Store
}

// Option mounts one feature area on the router.
type Option func(*routerConfig)

type routerConfig struct {
	health  *HealthHandler
	public  *PublicHandler
	cards   *CardsHandler
	me      *MeHandler
	billing *BillingHandler
}

// WithHealthRoutes mounts the probes.
func WithHealthRoutes(h *HealthHandler) Option {
	return func(c *routerConfig) { c.health = h }
}

// WithPublicRoutes mounts the catalog, recipient view and gallery.
func WithPublicRoutes(h *PublicHandler) Option {
	return func(c *routerConfig) { c.public = h }
}

// WithCardRoutes mounts the card builder.
func WithCardRoutes(h *CardsHandler) Option {
	return func(c *routerConfig) { c.cards = h }
}

// WithMeRoutes mounts the entitlement status endpoints.
func WithMeRoutes(h *MeHandler) Option {
	return func(c *routerConfig) { c.me = h }
}

// WithBillingRoutes mounts checkout and the provider webhook.
func WithBillingRoutes(h *BillingHandler) Option {
	return func(c *routerConfig) { c.billing = h }
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps RouterDeps, opts ...Option) http.Handler {
	cfg := &routerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(observability.RequestID)
	r.Use(observability.Tracing)
	r.Use(observability.RequestLogger(deps.Logger))
	r.Use(observability.Recoverer)

	if cfg.health != nil {
		cfg.health.Routes(r)
	}

	r.Route("/v1", func(r chi.Router) {
		if cfg.public != nil {
			cfg.public.Routes(r)
		}
		if cfg.billing != nil {
			r.Route("/billing", func(r chi.Router) {
				cfg.billing.WebhookRoutes(r)
				r.Group(func(r chi.Router) {
					r.Use(deps.Auth.RequireUser)
					if deps.IdemKeys != nil {
						r.Use(idempotency.Middleware(deps.IdemKeys))
					}
					cfg.billing.CheckoutRoutes(r)
				})
			})
		}
		if cfg.cards != nil {
			r.Route("/cards", func(r chi.Router) {
				r.Use(deps.Auth.Require)
				if deps.IdemKeys != nil {
					r.Use(idempotency.Middleware(deps.IdemKeys))
				}
				cfg.cards.Routes(r)
			})
		}
		if cfg.me != nil {
			r.Route("/me", func(r chi.Router) {
				r.Use(deps.Auth.Require)
				cfg.me.Routes(r)
			})
		}
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(w, req, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(w, req, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})
	return r
}
