package domain

import (
	"context"
	"time"
)

// LedgerStore is the single writer of credit movements. Implementations must
// make Reserve atomic against concurrent reservations for the same account:
// two calls that would jointly overdraw must not both succeed.
type LedgerStore interface {
	// Balance returns the current non-negative balance. Unknown accounts
	// report zero.
	Balance(ctx context.Context, accountID string) (int, error)

	// Reserve atomically checks balance >= amount, decrements it and
	// appends a generation debit entry tied to jobID. It returns
	// ErrInsufficientCredits, with no state change, when the balance does
	// not cover the amount.
	Reserve(ctx context.Context, accountID string, amount int, jobID string) (*LedgerEntry, error)

	// Credit unconditionally increments the balance and appends an entry.
	// Used for purchases, bonuses, subscription grants and refunds.
	// Idempotency is the caller's responsibility.
	Credit(ctx context.Context, accountID string, amount int, kind EntryKind, description, relatedJobID string) (*LedgerEntry, error)

	// RefundJob restores the full reservation taken for jobID, at most
	// once. When nothing is refundable, either because a refund already
	// exists or no reservation was ever taken, it returns
	// ErrAlreadyRefunded with no state change.
	RefundJob(ctx context.Context, jobID string) (*LedgerEntry, error)

	// EntriesForAccount lists entries newest first.
	EntriesForAccount(ctx context.Context, accountID string, limit int) ([]LedgerEntry, error)
}

// JobStore persists generation jobs. Status updates must never regress: once
// a job is terminal, further status-changing calls return ErrTerminalStatus,
// and ImageURLs only ever grows.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Job, error)

	// AppendImageURL appends one slot result while the job is processing.
	AppendImageURL(ctx context.Context, id, url string) error
	// Complete transitions processing -> completed and records timing.
	Complete(ctx context.Context, id string, processingMs int64) error
	// Fail transitions processing -> failed with a human-readable message.
	Fail(ctx context.Context, id, message string) error

	// ToggleFavorite flips the favorite mark on a job owned by accountID
	// and returns the new value. Missing and foreign jobs both read as
	// ErrNotFound. Allowed in any status.
	ToggleFavorite(ctx context.Context, id, accountID string) (bool, error)

	// Delete removes a job owned by accountID. Housekeeping only; the
	// orchestration path never deletes.
	Delete(ctx context.Context, id, accountID string) error

	// ClaimNext leases the oldest unclaimed processing job to a worker,
	// or returns ErrNotFound when the queue is empty.
	ClaimNext(ctx context.Context) (*Job, error)
	// StaleProcessing lists claimed jobs still processing after their
	// lease expired, oldest first.
	StaleProcessing(ctx context.Context, olderThan time.Duration) ([]Job, error)
}
