package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/app"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/secrets"
	"golang.org/x/sync/errgroup"
)

type summary struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

func main() {
	var workers int
	var limit int
	var documentID string

	flag.IntVar(&workers, "workers", 3, "Number of documents processed concurrently")
	flag.IntVar(&limit, "limit", 100, "Maximum number of pending documents to reprocess")
	flag.StringVar(&documentID, "document", "", "Single document ID to reprocess")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_, vaultErr := secrets.NewLoader(secrets.LoadVaultConfigFromEnv(), nil).Apply(ctx)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("insurance-details-backfill", cfg.Server.Env)
	if vaultErr != nil {
		log.Fatal().Err(vaultErr).Msg("Failed to load secrets from Vault")
	}

	application, err := app.New(ctx, cfg, nil, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	start := time.Now()

	if documentID != "" {
		result := application.Documents.Process(ctx, documentID)
		if !result.Success {
			log.Fatal().Str("document_id", documentID).Strs("errors", result.Errors).Msg("Reprocessing failed")
		}
		log.Info().Str("document_id", documentID).Str("auto_creation_status", string(result.AutoCreationStatus)).Msg("Document reprocessed")
		return
	}

	s, err := backfill(ctx, application.Documents, workers, limit)
	if err != nil {
		log.Error().Err(err).Msg("Backfill stopped early")
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int64("total", s.Total).
		Int64("succeeded", s.Succeeded).
		Int64("failed", s.Failed).
		Msg("Backfill complete")
}

// backfill reprocesses pending documents, and those left stale in
// processing, with at most workers in flight.
// Each document is processed synchronously by its worker.
func backfill(ctx context.Context, docs *services.DocumentProcessingService, workers, limit int) (summary, error) {
	var s summary

	pending, err := docs.ListPending(ctx, limit)
	if err != nil {
		return s, fmt.Errorf("failed to list pending documents: %w", err)
	}
	stale, err := docs.ListStale(ctx, limit)
	if err != nil {
		return s, fmt.Errorf("failed to list stale documents: %w", err)
	}
	pending = append(pending, stale...)
	if workers <= 0 {
		workers = 1
	}
	log.Info().Int("pending", len(pending)).Int("stale", len(stale)).Int("workers", workers).Msg("Starting backfill")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, doc := range pending {
		if gctx.Err() != nil {
			break
		}
		id := doc.ID
		g.Go(func() error {
			atomic.AddInt64(&s.Total, 1)
			result := docs.Process(gctx, id)
			if result.Success {
				atomic.AddInt64(&s.Succeeded, 1)
				return nil
			}
			atomic.AddInt64(&s.Failed, 1)
			log.Warn().Str("document_id", id).Strs("errors", result.Errors).Msg("Document reprocessing failed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return s, err
	}
	return s, ctx.Err()
}
