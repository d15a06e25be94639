// Package testsupport provides in-memory implementations of the domain
// stores. They mirror the Postgres repositories' semantics (atomic
// reservations, idempotent refunds, monotonic status) so orchestration and
// handler tests can run without a database.
package testsupport

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fashionmuse/internal/domain"
)

// MemoryLedger is an in-memory domain.LedgerStore.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int
	entries  []domain.LedgerEntry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int)}
}

// Seed sets an account balance directly, bypassing the ledger. Test setup
// only.
func (m *MemoryLedger) Seed(accountID string, credits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = credits
}

// Entries returns a copy of every recorded entry, oldest first.
func (m *MemoryLedger) Entries() []domain.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *MemoryLedger) Balance(ctx context.Context, accountID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[accountID], nil
}

func (m *MemoryLedger) Reserve(ctx context.Context, accountID string, amount int, jobID string) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[accountID] < amount {
		return nil, domain.ErrInsufficientCredits
	}
	m.balances[accountID] -= amount
	entry := domain.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    accountID,
		Amount:       -amount,
		Kind:         domain.EntryKindGeneration,
		Description:  fmt.Sprintf("Generated %d image(s)", amount),
		RelatedJobID: jobID,
		BalanceAfter: m.balances[accountID],
		CreatedAt:    time.Now(),
	}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *MemoryLedger) Credit(ctx context.Context, accountID string, amount int, kind domain.EntryKind, description, relatedJobID string) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown entry kind %q", domain.ErrValidation, kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] += amount
	entry := domain.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    accountID,
		Amount:       amount,
		Kind:         kind,
		Description:  description,
		RelatedJobID: relatedJobID,
		BalanceAfter: m.balances[accountID],
		CreatedAt:    time.Now(),
	}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *MemoryLedger) RefundJob(ctx context.Context, jobID string) (*domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var debit *domain.LedgerEntry
	for i := range m.entries {
		e := &m.entries[i]
		if e.RelatedJobID != jobID {
			continue
		}
		if e.Kind == domain.EntryKindRefund {
			return nil, domain.ErrAlreadyRefunded
		}
		if e.Kind == domain.EntryKindGeneration {
			debit = e
		}
	}
	if debit == nil {
		return nil, fmt.Errorf("%w: no reservation for job %s", domain.ErrAlreadyRefunded, jobID)
	}
	amount := -debit.Amount
	m.balances[debit.AccountID] += amount
	entry := domain.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    debit.AccountID,
		Amount:       amount,
		Kind:         domain.EntryKindRefund,
		Description:  "Refund for failed generation",
		RelatedJobID: jobID,
		BalanceAfter: m.balances[debit.AccountID],
		CreatedAt:    time.Now(),
	}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *MemoryLedger) EntriesForAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].AccountID != accountID {
			continue
		}
		out = append(out, m.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ domain.LedgerStore = (*MemoryLedger)(nil)

// MemoryJobs is an in-memory domain.JobStore.
type MemoryJobs struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
	seq  int
	ord  map[string]int
}

func NewMemoryJobs() *MemoryJobs {
	return &MemoryJobs{jobs: make(map[string]*domain.Job), ord: make(map[string]int)}
}

// Mutate applies fn to the stored job under the lock. Test setup only, e.g.
// backdating ClaimedAt to exercise the stale sweep.
func (m *MemoryJobs) Mutate(id string, fn func(*domain.Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		fn(job)
	}
}

func (m *MemoryJobs) Create(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	now := time.Now()
	stored := *job
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.ImageURLs == nil {
		stored.ImageURLs = []string{}
	}
	m.jobs[job.ID] = &stored
	m.seq++
	m.ord[job.ID] = m.seq
	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

func (m *MemoryJobs) Get(ctx context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return copyJob(job), nil
}

func (m *MemoryJobs) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Job
	for _, job := range m.jobs {
		if job.AccountID == accountID {
			out = append(out, *copyJob(job))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.ord[out[i].ID] > m.ord[out[j].ID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryJobs) AppendImageURL(ctx context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, err := m.updatable(id)
	if err != nil {
		return err
	}
	job.ImageURLs = append(job.ImageURLs, url)
	job.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryJobs) Complete(ctx context.Context, id string, processingMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, err := m.updatable(id)
	if err != nil {
		return err
	}
	now := time.Now()
	job.Status = domain.JobStatusCompleted
	job.CompletedAt = &now
	job.ProcessingMs = &processingMs
	job.UpdatedAt = now
	return nil
}

func (m *MemoryJobs) Fail(ctx context.Context, id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, err := m.updatable(id)
	if err != nil {
		return err
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = message
	job.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryJobs) ToggleFavorite(ctx context.Context, id, accountID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.AccountID != accountID {
		return false, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	job.IsFavorite = !job.IsFavorite
	job.UpdatedAt = time.Now()
	return job.IsFavorite, nil
}

func (m *MemoryJobs) Delete(ctx context.Context, id, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.AccountID != accountID {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	delete(m.jobs, id)
	delete(m.ord, id)
	return nil
}

func (m *MemoryJobs) ClaimNext(ctx context.Context) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *domain.Job
	for _, job := range m.jobs {
		if job.Status != domain.JobStatusProcessing || job.ClaimedAt != nil {
			continue
		}
		if oldest == nil || m.ord[job.ID] < m.ord[oldest.ID] {
			oldest = job
		}
	}
	if oldest == nil {
		return nil, fmt.Errorf("%w: no claimable job", domain.ErrNotFound)
	}
	now := time.Now()
	oldest.ClaimedAt = &now
	oldest.UpdatedAt = now
	return copyJob(oldest), nil
}

func (m *MemoryJobs) StaleProcessing(ctx context.Context, olderThan time.Duration) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var out []domain.Job
	for _, job := range m.jobs {
		if job.Status == domain.JobStatusProcessing && job.ClaimedAt != nil && job.ClaimedAt.Before(cutoff) {
			out = append(out, *copyJob(job))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.ord[out[i].ID] < m.ord[out[j].ID]
	})
	return out, nil
}

func (m *MemoryJobs) updatable(id string) (*domain.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	if job.Status != domain.JobStatusProcessing {
		return nil, fmt.Errorf("%w: job %s is %s", domain.ErrTerminalStatus, id, job.Status)
	}
	return job, nil
}

func copyJob(job *domain.Job) *domain.Job {
	out := *job
	out.ImageURLs = append([]string(nil), job.ImageURLs...)
	if job.CompletedAt != nil {
		t := *job.CompletedAt
		out.CompletedAt = &t
	}
	if job.ProcessingMs != nil {
		v := *job.ProcessingMs
		out.ProcessingMs = &v
	}
	if job.ClaimedAt != nil {
		t := *job.ClaimedAt
		out.ClaimedAt = &t
	}
	return &out
}

var _ domain.JobStore = (*MemoryJobs)(nil)
