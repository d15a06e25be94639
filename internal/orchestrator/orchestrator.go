package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fashionmuse/internal/domain"
)

// Orchestrator accepts generation submissions. It owns the reserve-then-create
// ordering: credits are debited first and the job row is only written after
// the reservation holds, so a job in the store always has a matching debit.
type Orchestrator struct {
	ledger domain.LedgerStore
	jobs   domain.JobStore
	logger zerolog.Logger
}

func New(ledger domain.LedgerStore, jobs domain.JobStore, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{ledger: ledger, jobs: jobs, logger: logger}
}

// Submit validates the spec, reserves one credit per requested image and
// enqueues the job for background processing. The returned job is already in
// processing status; callers poll the status reader for progress.
func (o *Orchestrator) Submit(ctx context.Context, accountID string, spec domain.GenerationSpec) (*domain.Job, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrValidation)
	}
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()

	if _, err := o.ledger.Reserve(ctx, accountID, spec.ImageCount, jobID); err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			reservationsTotal.WithLabelValues("insufficient").Inc()
			return nil, err
		}
		reservationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("reserve credits: %w", err)
	}
	reservationsTotal.WithLabelValues("reserved").Inc()

	job := &domain.Job{
		ID:           jobID,
		AccountID:    accountID,
		ReferenceURL: spec.ReferenceURL,
		ImageCount:   spec.ImageCount,
		AspectRatio:  spec.AspectRatio,
		Prompt:       spec.Prompt,
		Style:        spec.Style,
		CameraAngle:  spec.CameraAngle,
		Lighting:     spec.Lighting,
		Status:       domain.JobStatusProcessing,
		ImageURLs:    []string{},
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		// The reservation already happened. Give the credits back before
		// surfacing the failure; if even that fails the account is charged
		// for nothing and an operator has to reconcile by hand.
		if _, refundErr := o.ledger.RefundJob(ctx, jobID); refundErr != nil && !errors.Is(refundErr, domain.ErrAlreadyRefunded) {
			reconciliationAlarmsTotal.Inc()
			o.logger.Error().
				Str("job_id", jobID).
				Str("account_id", accountID).
				Int("amount", spec.ImageCount).
				AnErr("create_err", err).
				AnErr("refund_err", refundErr).
				Msg("reconciliation required: job creation and refund both failed")
		} else {
			refundsTotal.Inc()
		}
		return nil, fmt.Errorf("create job: %w", err)
	}

	o.logger.Info().
		Str("job_id", jobID).
		Str("account_id", accountID).
		Int("image_count", spec.ImageCount).
		Str("aspect_ratio", spec.AspectRatio).
		Msg("generation job accepted")
	return job, nil
}
