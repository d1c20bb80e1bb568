// Command api runs the LovaCards HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cetinibs/lovacards/internal/generator"
	"github.com/cetinibs/lovacards/internal/handlers"
	"github.com/cetinibs/lovacards/internal/payments"
	"github.com/cetinibs/lovacards/internal/platform/auth"
	"github.com/cetinibs/lovacards/internal/platform/config"
	platformfs "github.com/cetinibs/lovacards/internal/platform/firestore"
	"github.com/cetinibs/lovacards/internal/platform/idempotency"
	"github.com/cetinibs/lovacards/internal/platform/jobs"
	"github.com/cetinibs/lovacards/internal/platform/observability"
	"github.com/cetinibs/lovacards/internal/platform/secrets"
	repofs "github.com/cetinibs/lovacards/internal/repositories/firestore"
	"github.com/cetinibs/lovacards/internal/services"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Error("load config", zap.Error(err))
		return err
	}

	logger, err := observability.NewLogger(observability.LoggerConfig{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		Service:     "lovacards-api",
		Environment: cfg.Log.Environment,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := resolveSecrets(ctx, &cfg, logger); err != nil {
		logger.Error("resolve secrets", zap.Error(err))
		return err
	}

	provider, err := platformfs.NewProvider(cfg.Firestore.ProjectID, cfg.Firestore.DatabaseID)
	if err != nil {
		logger.Error("init firestore", zap.Error(err))
		return err
	}
	defer func() { _ = provider.Close() }()

	cardRepo, err := repofs.NewCardRepository(provider)
	if err != nil {
		return err
	}
	entitlementRepo, err := repofs.NewEntitlementRepository(provider)
	if err != nil {
		return err
	}
	galleryRepo, err := repofs.NewGalleryRepository(provider)
	if err != nil {
		return err
	}
	healthRepo, err := repofs.NewHealthRepository(provider)
	if err != nil {
		return err
	}

	var publisher jobs.Publisher = jobs.NopPublisher{Logger: logger}
	if !cfg.Jobs.Disabled {
		pub, cleanup, err := jobs.NewPubSubPublisher(ctx, cfg.Firestore.ProjectID, cfg.Jobs.Topic)
		if err != nil {
			logger.Warn("pubsub unavailable, events disabled", zap.Error(err))
		} else {
			defer cleanup()
			publisher = pub
		}
	}

	entitlementSvc, err := services.NewEntitlementService(services.EntitlementServiceDeps{
		Entitlements: entitlementRepo,
		FailOpen:     cfg.Entitlements.FailOpen,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	var gen generator.Generator
	if cfg.Generator.Strategy == "gemini" {
		gen, err = generator.NewGeminiGenerator(ctx, cfg.Generator.APIKey, cfg.Generator.Model)
		if err != nil {
			logger.Error("init gemini", zap.Error(err))
			return err
		}
	}

	wizardSvc, err := services.NewWizardService(services.WizardServiceDeps{
		Cards:           cardRepo,
		Entitlements:    entitlementSvc,
		Generator:       gen,
		GenerateTimeout: cfg.Generator.Timeout,
		Publisher:       publisher,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	shareSvc, err := services.NewShareService(services.ShareServiceDeps{
		Cards:   cardRepo,
		BaseURL: cfg.Share.BaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	gallerySvc, err := services.NewGalleryService(services.GalleryServiceDeps{Gallery: galleryRepo})
	if err != nil {
		return err
	}

	systemSvc, err := services.NewSystemService(services.SystemServiceDeps{Health: healthRepo})
	if err != nil {
		return err
	}

	var billingProvider payments.Provider
	if !cfg.Billing.Disabled {
		billingProvider, err = payments.NewStripeProvider(cfg.Billing.StripeAPIKey, cfg.Billing.PremiumPrice, cfg.Billing.WebhookSecret)
		if err != nil {
			logger.Error("init stripe", zap.Error(err))
			return err
		}
	}
	billingSvc, err := services.NewBillingService(services.BillingServiceDeps{
		Provider:     billingProvider,
		Entitlements: entitlementSvc,
		SuccessURL:   cfg.Billing.SuccessURL,
		CancelURL:    cfg.Billing.CancelURL,
		Publisher:    publisher,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	var verifier auth.TokenVerifier
	if cfg.Firebase.Disabled {
		logger.Warn("firebase auth disabled, bearer tokens rejected")
		verifier = rejectAllVerifier{}
	} else {
		verifier, err = auth.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID)
		if err != nil {
			logger.Error("init firebase auth", zap.Error(err))
			return err
		}
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Logger:   logger,
		Auth:     auth.NewMiddleware(verifier),
		IdemKeys: idempotency.NewFirestoreStore(provider, 24*time.Hour),
	},
		handlers.WithHealthRoutes(handlers.NewHealthHandler(systemSvc)),
		handlers.WithPublicRoutes(handlers.NewPublicHandler(shareSvc, gallerySvc)),
		handlers.WithCardRoutes(handlers.NewCardsHandler(wizardSvc, shareSvc)),
		handlers.WithMeRoutes(handlers.NewMeHandler(entitlementSvc)),
		handlers.WithBillingRoutes(handlers.NewBillingHandler(billingSvc)),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func resolveSecrets(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if !needsSecrets(*cfg) {
		return nil
	}
	fetcher, err := secrets.NewFetcher(ctx, cfg.Firestore.ProjectID)
	if err != nil {
		return err
	}
	defer func() { _ = fetcher.Close() }()
	return cfg.ResolveSecrets(fetcher)
}

func needsSecrets(cfg config.Config) bool {
	for _, v := range []string{cfg.Generator.APIKey, cfg.Billing.StripeAPIKey, cfg.Billing.WebhookSecret} {
		if len(v) > 9 && v[:9] == "secret://" {
			return true
		}
	}
	return false
}

// rejectAllVerifier stands in when Firebase auth is disabled; anonymous
// sessions still work.
type rejectAllVerifier struct{}

func (rejectAllVerifier) Verify(ctx context.Context, token string) (string, error) {
	return "", errors.New("auth disabled")
}
