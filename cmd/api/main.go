package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/api/handlers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/api/middleware"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/api/routes"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/app"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/secrets"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Vault secrets must land in the environment before config is read.
	vaultResult, vaultErr := secrets.NewLoader(secrets.LoadVaultConfigFromEnv(), nil).Apply(ctx)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	if vaultErr != nil {
		log.Fatal().Err(vaultErr).Msg("Failed to load secrets from Vault")
	}
	if vaultResult.Enabled {
		log.Info().Str("path", vaultResult.Path).Strs("loaded", vaultResult.Loaded).Msg("Secrets loaded from Vault")
	}

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			observability.EnableOTelLogs()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o750); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Server.UploadDir).Msg("Failed to create upload directory")
	}

	application, err := app.New(ctx, cfg, metrics, app.Options{WithAuth: true})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing clients")
		}
	}()

	h := routes.Handlers{
		Documents:      handlers.NewDocumentHandler(application.Documents, cfg.Server.MaxUploadBytes),
		Policies:       handlers.NewPolicyHandler(application.Policies, application.RedFlags, application.Export),
		Categorization: handlers.NewCategorizationHandler(application.Categorization),
	}
	if application.Auth != nil {
		h.Auth = handlers.NewAuthHandler(application.Auth)
	}
	if application.EventBus != nil {
		h.SSE = handlers.NewSSEHandler(application.EventBus)
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if application.Cache != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(application.Cache)
	}

	health := func(r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		return application.Ping(ctx)
	}

	router := routes.NewRouter(h, cacheMiddleware, metrics, health)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Processing runs in the request and may wait on the AI call.
		WriteTimeout: cfg.Workflow.AITimeout + 60*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
