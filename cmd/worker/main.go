package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fashionmuse/internal/adapter/repo"
	"fashionmuse/internal/blob"
	"fashionmuse/internal/domain"
	"fashionmuse/internal/infra"
	"fashionmuse/internal/orchestrator"
	"fashionmuse/internal/synthesis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	ledger := repo.NewLedgerRepository(runner)
	jobs := repo.NewJobRepository(runner)

	store, err := blob.NewFileStore(cfg.StorageBasePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open file store")
	}
	fetcher := blob.NewHTTPFetcher(cfg.ReferenceFetchTimeout)

	generator, err := synthesis.NewGeminiClient(synthesis.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
		Timeout: cfg.SynthesisTimeout,
		Retries: cfg.SynthesisRetries,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure synthesis client")
	}
	if generator.Synthetic() {
		logger.Warn().Msg("GEMINI_API_KEY not set, serving synthetic images")
	}

	pipeline := orchestrator.NewPipeline(ledger, jobs, fetcher, store, generator, logger)
	sweeper := orchestrator.NewSweeper(ledger, jobs, cfg.SweepStaleAfter, logger)

	go runSweeper(ctx, sweeper, cfg.SweepInterval, logger)

	logger.Info().
		Dur("poll_interval", cfg.WorkerPollInterval).
		Str("model", generator.Model()).
		Msg("worker started")
	runClaimLoop(ctx, jobs, pipeline, cfg.WorkerPollInterval, logger)
	logger.Info().Msg("worker stopped")
}

// runClaimLoop drains the queue, sleeping the poll interval whenever no job
// is claimable.
func runClaimLoop(ctx context.Context, jobs domain.JobStore, pipeline *orchestrator.Pipeline, pollInterval time.Duration, logger infra.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, err := jobs.ClaimNext(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
				logger.Error().Err(err).Msg("claim failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollInterval):
			}
			continue
		}
		if err := pipeline.Run(ctx, job); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Str("job_id", job.ID).Msg("pipeline run failed")
		}
	}
}

func runSweeper(ctx context.Context, sweeper *orchestrator.Sweeper, interval time.Duration, logger infra.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := sweeper.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("stale sweep failed")
				continue
			}
			if swept > 0 {
				logger.Info().Int("swept", swept).Msg("stale jobs recovered")
			}
		}
	}
}
