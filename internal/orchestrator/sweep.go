package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"fashionmuse/internal/domain"
)

// Sweeper recovers jobs whose worker died mid-run. A claimed job still in
// processing after the lease window is assumed abandoned: it gets failed and
// its reservation refunded, so crashed workers never strand a user's credits.
type Sweeper struct {
	ledger    domain.LedgerStore
	jobs      domain.JobStore
	logger    zerolog.Logger
	olderThan time.Duration
}

func NewSweeper(ledger domain.LedgerStore, jobs domain.JobStore, olderThan time.Duration, logger zerolog.Logger) *Sweeper {
	if olderThan <= 0 {
		olderThan = 15 * time.Minute
	}
	return &Sweeper{ledger: ledger, jobs: jobs, logger: logger, olderThan: olderThan}
}

// Sweep settles every stale job it finds and returns how many it settled.
// Per-job failures are logged and skipped so one bad row cannot wedge the
// whole sweep.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	stale, err := s.jobs.StaleProcessing(ctx, s.olderThan)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range stale {
		job := &stale[i]
		log := s.logger.With().Str("job_id", job.ID).Str("account_id", job.AccountID).Logger()

		if _, err := s.ledger.RefundJob(ctx, job.ID); err != nil {
			if !errors.Is(err, domain.ErrAlreadyRefunded) {
				reconciliationAlarmsTotal.Inc()
				log.Error().Err(err).Msg("reconciliation required: refund failed during sweep")
			}
		} else {
			refundsTotal.Inc()
		}

		if err := s.jobs.Fail(ctx, job.ID, "generation timed out"); err != nil {
			if errors.Is(err, domain.ErrTerminalStatus) || errors.Is(err, domain.ErrNotFound) {
				continue
			}
			log.Error().Err(err).Msg("sweep could not fail stale job")
			continue
		}
		jobsFinishedTotal.WithLabelValues(string(domain.JobStatusFailed)).Inc()
		sweptJobsTotal.Inc()
		swept++
		log.Warn().Dur("older_than", s.olderThan).Msg("stale job failed and refunded")
	}
	return swept, nil
}
