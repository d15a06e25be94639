package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fashionmuse/internal/domain"
	"fashionmuse/internal/infra"
	"fashionmuse/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobStore on PostgreSQL. image_urls is a
// jsonb array that only ever grows, and every status-changing statement is
// guarded by `status = 'processing'` so terminal jobs reject further updates.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.AccountID,
		job.ReferenceURL,
		job.ImageCount,
		job.AspectRatio,
		job.Prompt,
		job.Style,
		job.CameraAngle,
		job.Lighting,
	)
	if err != nil {
		return fmt.Errorf("%w: create job: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *JobRepositoryPG) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJob, id)
	job, err := scanJob(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("jobs: get %s: %w", id, err)
	}
	return job, nil
}

func (r *JobRepositoryPG) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListJobsByAccount, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("jobs: list: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("jobs: scan: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (r *JobRepositoryPG) AppendImageURL(ctx context.Context, id, url string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QAppendImageURL, id, url)
	if err != nil {
		return fmt.Errorf("%w: append image url: %v", domain.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return r.notUpdatable(ctx, id)
	}
	return nil
}

func (r *JobRepositoryPG) Complete(ctx context.Context, id string, processingMs int64) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QCompleteJob, id, processingMs)
	if err != nil {
		return fmt.Errorf("%w: complete job: %v", domain.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return r.notUpdatable(ctx, id)
	}
	return nil
}

func (r *JobRepositoryPG) Fail(ctx context.Context, id, message string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QFailJob, id, message)
	if err != nil {
		return fmt.Errorf("%w: fail job: %v", domain.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return r.notUpdatable(ctx, id)
	}
	return nil
}

func (r *JobRepositoryPG) ToggleFavorite(ctx context.Context, id, accountID string) (bool, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QToggleFavorite, id, accountID)
	var favorite bool
	if err := row.Scan(&favorite); err != nil {
		if infra.IsNoRows(err) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("jobs: toggle favorite %s: %w", id, err)
	}
	return favorite, nil
}

func (r *JobRepositoryPG) Delete(ctx context.Context, id, accountID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteJob, id, accountID)
	if err != nil {
		return fmt.Errorf("jobs: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepositoryPG) ClaimNext(ctx context.Context) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QClaimNextJob)
	job, err := scanJob(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("jobs: claim: %w", err)
	}
	return job, nil
}

func (r *JobRepositoryPG) StaleProcessing(ctx context.Context, olderThan time.Duration) ([]domain.Job, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectStaleJobs, olderThan.Seconds())
	if err != nil {
		return nil, fmt.Errorf("jobs: stale: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("jobs: scan stale: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// notUpdatable classifies a zero-row status update: missing job or an update
// attempted against a terminal status.
func (r *JobRepositoryPG) notUpdatable(ctx context.Context, id string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QJobStatus, id)
	var status string
	if err := row.Scan(&status); err != nil {
		if infra.IsNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("jobs: status %s: %w", id, err)
	}
	return fmt.Errorf("%w: job %s is %s", domain.ErrTerminalStatus, id, status)
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job    domain.Job
		status string
		urls   []byte
	)
	if err := row.Scan(
		&job.ID,
		&job.AccountID,
		&job.ReferenceURL,
		&job.ImageCount,
		&job.AspectRatio,
		&job.Prompt,
		&job.Style,
		&job.CameraAngle,
		&job.Lighting,
		&status,
		&urls,
		&job.ErrorMessage,
		&job.IsFavorite,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
		&job.ProcessingMs,
		&job.ClaimedAt,
	); err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	job.ImageURLs = []string{}
	if len(urls) > 0 {
		if err := json.Unmarshal(urls, &job.ImageURLs); err != nil {
			return nil, fmt.Errorf("decode image_urls: %w", err)
		}
	}
	return &job, nil
}

var _ domain.JobStore = (*JobRepositoryPG)(nil)
