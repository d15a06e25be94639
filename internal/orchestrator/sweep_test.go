package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fashionmuse/internal/domain"
	"fashionmuse/internal/testsupport"
)

func setupSweep(t *testing.T) (*testsupport.MemoryLedger, *testsupport.MemoryJobs, *Sweeper) {
	t.Helper()
	ledger := testsupport.NewMemoryLedger()
	jobs := testsupport.NewMemoryJobs()
	ledger.Seed("acct-1", 10)
	return ledger, jobs, NewSweeper(ledger, jobs, 15*time.Minute, zerolog.Nop())
}

func submitJob(t *testing.T, ledger *testsupport.MemoryLedger, jobs *testsupport.MemoryJobs, count int) *domain.Job {
	t.Helper()
	orch := New(ledger, jobs, zerolog.Nop())
	job, err := orch.Submit(context.Background(), "acct-1", domain.GenerationSpec{
		ReferenceURL: "https://example.com/me.jpg",
		ImageCount:   count,
		Prompt:       "lookbook",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return job
}

func TestSweepFailsAndRefundsStaleJobs(t *testing.T) {
	ledger, jobs, sweeper := setupSweep(t)
	job := submitJob(t, ledger, jobs, 4)

	if _, err := jobs.ClaimNext(context.Background()); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	stale := time.Now().Add(-time.Hour)
	jobs.Mutate(job.ID, func(j *domain.Job) { j.ClaimedAt = &stale })

	swept, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}

	stored, _ := jobs.Get(context.Background(), job.ID)
	if stored.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
	if stored.ErrorMessage != "generation timed out" {
		t.Fatalf("error message = %q", stored.ErrorMessage)
	}
	balance, _ := ledger.Balance(context.Background(), "acct-1")
	if balance != 10 {
		t.Fatalf("balance = %d, want full refund to 10", balance)
	}
}

func TestSweepIgnoresFreshAndUnclaimedJobs(t *testing.T) {
	ledger, jobs, sweeper := setupSweep(t)
	fresh := submitJob(t, ledger, jobs, 1)
	if _, err := jobs.ClaimNext(context.Background()); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	unclaimed := submitJob(t, ledger, jobs, 1)

	swept, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if swept != 0 {
		t.Fatalf("swept = %d, want 0", swept)
	}
	for _, id := range []string{unclaimed.ID, fresh.ID} {
		stored, _ := jobs.Get(context.Background(), id)
		if stored.Status != domain.JobStatusProcessing {
			t.Fatalf("job %s status = %s, want processing", id, stored.Status)
		}
	}
}

func TestSweepToleratesAlreadyRefundedJob(t *testing.T) {
	ledger, jobs, sweeper := setupSweep(t)
	job := submitJob(t, ledger, jobs, 2)
	if _, err := jobs.ClaimNext(context.Background()); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	stale := time.Now().Add(-time.Hour)
	jobs.Mutate(job.ID, func(j *domain.Job) { j.ClaimedAt = &stale })

	// Refund landed earlier but the status write was lost.
	if _, err := ledger.RefundJob(context.Background(), job.ID); err != nil {
		t.Fatalf("RefundJob: %v", err)
	}

	swept, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}
	balance, _ := ledger.Balance(context.Background(), "acct-1")
	if balance != 10 {
		t.Fatalf("balance = %d, double refund detected", balance)
	}
	stored, _ := jobs.Get(context.Background(), job.ID)
	if stored.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
}
