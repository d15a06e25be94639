// Package status serves read access to generation jobs, scoped to the
// requesting account. Ownership failures are indistinguishable from missing
// jobs so job IDs cannot be probed across accounts.
package status

import (
	"context"
	"fmt"

	"fashionmuse/internal/domain"
)

type Reader struct {
	jobs domain.JobStore
}

func NewReader(jobs domain.JobStore) *Reader {
	return &Reader{jobs: jobs}
}

// Get returns the job when it exists and belongs to accountID, otherwise
// ErrNotFound.
func (r *Reader) Get(ctx context.Context, accountID, jobID string) (*domain.Job, error) {
	job, err := r.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.AccountID != accountID {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	return job, nil
}

// List returns the account's jobs newest first, capped at limit.
func (r *Reader) List(ctx context.Context, accountID string, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return r.jobs.ListByAccount(ctx, accountID, limit)
}

// ToggleFavorite flips the favorite mark on one of the account's jobs and
// returns the new value. Works on terminal jobs; the store enforces
// ownership, so a foreign job ID reads as ErrNotFound.
func (r *Reader) ToggleFavorite(ctx context.Context, accountID, jobID string) (bool, error) {
	return r.jobs.ToggleFavorite(ctx, jobID, accountID)
}

// Delete removes one of the account's jobs. The underlying store enforces
// ownership, so a foreign job ID reads as ErrNotFound here too.
func (r *Reader) Delete(ctx context.Context, accountID, jobID string) error {
	return r.jobs.Delete(ctx, jobID, accountID)
}
