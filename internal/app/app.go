// Package app wires configuration, clients, adapters and services into the
// processing pipeline shared by the API server and the command line tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/adapters/cache"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/adapters/database"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/adapters/events"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/adapters/providers/textextraction"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/clients/identity"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/clients/openai"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/clients/postgres"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/clients/redis"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
)

// App holds the wired services. Redis-backed parts are nil when Redis is
// unreachable.
type App struct {
	Config  *config.Config
	Metrics *observability.Metrics

	Postgres *postgres.Client
	Redis    *redis.Client
	Cache    providers.CacheProvider
	EventBus providers.EventBus

	Documents      *services.DocumentProcessingService
	Policies       *services.PolicyService
	RedFlags       *services.RedFlagService
	Export         *services.RedFlagExportService
	Categorization *services.CategorizationService
	Auth           *services.AuthService

	closers []func() error
}

// Options selects optional parts of the wiring.
type Options struct {
	// WithAuth builds the login proxy when an identity provider is configured.
	WithAuth bool
}

// New connects to the backing stores and builds every service.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, opts Options) (*App, error) {
	logger := observability.GetLogger()
	a := &App{Config: cfg, Metrics: metrics}

	pg, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
	}
	a.Postgres = pg
	a.closers = append(a.closers, pg.Close)

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable; running without cache, event bus or shared rate limits")
	} else {
		a.Redis = redisClient
		a.Cache = cache.NewRedisAdapter(redisClient, metrics)
		a.EventBus = events.NewRedisEventBus(redisClient)
		a.closers = append(a.closers, redisClient.Close, a.EventBus.Close)
	}

	var aiProvider providers.PolicyExtractionProvider
	if cfg.Workflow.AIEnabled && cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			logger.Warn().Err(err).Msg("OpenAI client unavailable; using pattern extraction only")
		} else {
			aiProvider = client
		}
	} else {
		logger.Info().Msg("AI extraction disabled; using pattern extraction only")
	}

	docRepo := database.NewPolicyDocumentAdapter(pg)
	policyRepo := database.NewInsurancePolicyAdapter(pg)
	redFlagRepo := database.NewRedFlagAdapter(pg)

	detector := services.NewRedFlagDetector().
		WithDedup(cfg.Workflow.RedFlagDedup).
		WithConfidence(cfg.Workflow.RedFlagConfidence)

	a.Categorization = services.NewCategorizationService()
	a.RedFlags = services.NewRedFlagService(redFlagRepo, detector, a.Categorization)
	a.Export = services.NewRedFlagExportService(a.RedFlags)
	a.Policies = services.NewPolicyService(policyRepo, a.RedFlags)

	extractor := services.NewPolicyDataExtractor(aiProvider, services.PolicyExtractorConfig{
		AIEnabled: cfg.Workflow.AIEnabled,
		AITimeout: cfg.Workflow.AITimeout,
	})
	a.Documents = services.NewDocumentProcessingService(
		docRepo,
		textextraction.NewTextExtractor(""),
		extractor,
		a.Policies,
		a.EventBus,
		services.DocumentProcessingConfig{
			UploadDir:     cfg.Server.UploadDir,
			MinTextLength: cfg.Workflow.MinTextLength,
			Thresholds:    cfg.Workflow.Thresholds,
			StaleAfter:    cfg.Workflow.StaleProcessingAfter,
		},
	)

	if opts.WithAuth {
		a.Auth = a.buildAuth(cfg)
	}

	return a, nil
}

func (a *App) buildAuth(cfg *config.Config) *services.AuthService {
	logger := observability.GetLogger()
	if !cfg.Identity.Enabled() {
		logger.Info().Msg("identity provider not configured; login disabled")
		return nil
	}
	idp, err := identity.NewClient(&cfg.Identity)
	if err != nil {
		logger.Warn().Err(err).Msg("identity client unavailable; login disabled")
		return nil
	}

	var store providers.RateLimitStore = services.NewMemoryRateLimitStore()
	if a.Cache != nil {
		store = cache.NewRateLimitStore(a.Cache)
	}
	limiter := services.NewRateLimiter(store, services.RateLimiterConfig{
		MaxAttempts:     cfg.RateLimit.MaxAttempts,
		Window:          cfg.RateLimit.Window,
		LockoutDuration: cfg.RateLimit.LockoutDuration,
	})
	return services.NewAuthService(idp, limiter)
}

// Ping checks the database and, when connected, Redis.
func (a *App) Ping(ctx context.Context) error {
	start := time.Now()
	err := a.Postgres.Ping(ctx)
	observability.RecordDBMetric(ctx, a.Metrics, "ping", time.Since(start))
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
