package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"

	"fashionmuse/internal/blob"
	"fashionmuse/internal/domain"
	"fashionmuse/internal/synthesis"
)

// Pipeline executes one claimed generation job: fetch the reference photo,
// synthesize each slot, publish the results and settle the job. Slot failures
// are partial (the job still completes); only an unreadable reference fails
// the whole job and triggers a refund.
type Pipeline struct {
	ledger    domain.LedgerStore
	jobs      domain.JobStore
	fetcher   blob.Fetcher
	publisher blob.Publisher
	generator synthesis.Generator
	logger    zerolog.Logger
}

func NewPipeline(
	ledger domain.LedgerStore,
	jobs domain.JobStore,
	fetcher blob.Fetcher,
	publisher blob.Publisher,
	generator synthesis.Generator,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		ledger:    ledger,
		jobs:      jobs,
		fetcher:   fetcher,
		publisher: publisher,
		generator: generator,
		logger:    logger,
	}
}

// Run processes job to a terminal state. It returns an error only when the
// job could not be settled at all; a job that finishes failed-and-refunded is
// a success from the worker's point of view.
func (p *Pipeline) Run(ctx context.Context, job *domain.Job) error {
	start := time.Now()
	log := p.logger.With().Str("job_id", job.ID).Str("account_id", job.AccountID).Logger()

	refBytes, refMIME, err := p.fetchReference(ctx, job.ReferenceURL)
	if err != nil {
		log.Warn().Err(err).Msg("reference image unusable, failing job")
		return p.failAndRefund(ctx, log, job.ID, "reference image could not be read")
	}

	succeeded := 0
	for slot := 0; slot < job.ImageCount; slot++ {
		url, slotErr := p.runSlot(ctx, job, refBytes, refMIME, slot)
		if slotErr != nil {
			slotsTotal.WithLabelValues("failed").Inc()
			log.Warn().Err(slotErr).Int("slot", slot).Msg("slot failed, recording placeholder")
			url = domain.SlotFailedURL
		} else {
			slotsTotal.WithLabelValues("ok").Inc()
			succeeded++
		}
		if err := p.jobs.AppendImageURL(ctx, job.ID, url); err != nil {
			// Terminal here means something else (the sweep, an operator)
			// already settled the job under us; stop touching it.
			if errors.Is(err, domain.ErrTerminalStatus) || errors.Is(err, domain.ErrNotFound) {
				log.Warn().Err(err).Int("slot", slot).Msg("job settled elsewhere, abandoning run")
				return nil
			}
			return fmt.Errorf("append image url: %w", err)
		}
	}

	processingMs := time.Since(start).Milliseconds()
	if err := p.jobs.Complete(ctx, job.ID, processingMs); err != nil {
		if errors.Is(err, domain.ErrTerminalStatus) || errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Msg("job settled elsewhere, abandoning completion")
			return nil
		}
		return fmt.Errorf("complete job: %w", err)
	}
	jobsFinishedTotal.WithLabelValues(string(domain.JobStatusCompleted)).Inc()
	jobDurationSeconds.Observe(time.Since(start).Seconds())
	log.Info().
		Int("succeeded", succeeded).
		Int("requested", job.ImageCount).
		Int64("processing_ms", processingMs).
		Msg("generation job completed")
	return nil
}

// fetchReference downloads the reference and confirms it decodes as an image
// before any credits-worth of synthesis calls are spent on it.
func (p *Pipeline) fetchReference(ctx context.Context, url string) ([]byte, string, error) {
	data, mime, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrReferenceUnreadable, err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, "", fmt.Errorf("%w: decode: %v", domain.ErrReferenceUnreadable, err)
	}
	return data, mime, nil
}

func (p *Pipeline) runSlot(ctx context.Context, job *domain.Job, refBytes []byte, refMIME string, slot int) (string, error) {
	result, err := p.generator.Generate(ctx, synthesis.Request{
		ReferenceBytes: refBytes,
		ReferenceMIME:  refMIME,
		Prompt:         job.Prompt,
		Style:          job.Style,
		CameraAngle:    job.CameraAngle,
		Lighting:       job.Lighting,
		AspectRatio:    job.AspectRatio,
		Pose:           synthesis.PoseForSlot(slot),
		JobID:          job.ID,
		SlotIndex:      slot,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	key := fmt.Sprintf("generations/%s/image-%d", job.ID, slot+1)
	url, err := p.publisher.Put(ctx, key, result.Data, result.MIME)
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	return url, nil
}

// failAndRefund settles a job as failed. The refund runs first: if the
// process dies between the two writes, the job is still processing and the
// sweep will retry the settlement, whereas a failed-but-unrefunded job would
// never be revisited.
func (p *Pipeline) failAndRefund(ctx context.Context, log zerolog.Logger, jobID, message string) error {
	if _, err := p.ledger.RefundJob(ctx, jobID); err != nil {
		if !errors.Is(err, domain.ErrAlreadyRefunded) {
			reconciliationAlarmsTotal.Inc()
			log.Error().Err(err).Msg("reconciliation required: refund failed for failing job")
		}
	} else {
		refundsTotal.Inc()
	}
	if err := p.jobs.Fail(ctx, jobID, message); err != nil {
		if errors.Is(err, domain.ErrTerminalStatus) || errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Msg("job settled elsewhere while failing it")
			return nil
		}
		return fmt.Errorf("fail job: %w", err)
	}
	jobsFinishedTotal.WithLabelValues(string(domain.JobStatusFailed)).Inc()
	return nil
}
