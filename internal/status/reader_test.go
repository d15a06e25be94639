package status

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fashionmuse/internal/domain"
	"fashionmuse/internal/testsupport"
)

func seedJobs(t *testing.T, jobs *testsupport.MemoryJobs, accountID string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-job-%d", accountID, i)
		err := jobs.Create(context.Background(), &domain.Job{
			ID:           id,
			AccountID:    accountID,
			ReferenceURL: "https://example.com/me.jpg",
			ImageCount:   1,
			AspectRatio:  "portrait",
			Prompt:       "test",
			Status:       domain.JobStatusProcessing,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestReaderGetEnforcesOwnership(t *testing.T) {
	jobs := testsupport.NewMemoryJobs()
	ids := seedJobs(t, jobs, "acct-1", 1)
	reader := NewReader(jobs)

	job, err := reader.Get(context.Background(), "acct-1", ids[0])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.ID != ids[0] {
		t.Fatalf("job = %q", job.ID)
	}

	// A foreign account must see not-found, not forbidden.
	if _, err := reader.Get(context.Background(), "acct-2", ids[0]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign get = %v, want ErrNotFound", err)
	}
	if _, err := reader.Get(context.Background(), "acct-1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing get = %v, want ErrNotFound", err)
	}
}

func TestReaderListNewestFirst(t *testing.T) {
	jobs := testsupport.NewMemoryJobs()
	ids := seedJobs(t, jobs, "acct-1", 3)
	seedJobs(t, jobs, "acct-2", 2)
	reader := NewReader(jobs)

	list, err := reader.List(context.Background(), "acct-1", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list = %d jobs, want 3", len(list))
	}
	for i, job := range list {
		want := ids[len(ids)-1-i]
		if job.ID != want {
			t.Fatalf("list[%d] = %q, want %q (newest first)", i, job.ID, want)
		}
	}

	limited, err := reader.List(context.Background(), "acct-1", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited list = %d jobs, want 2", len(limited))
	}
}

func TestReaderToggleFavorite(t *testing.T) {
	jobs := testsupport.NewMemoryJobs()
	ids := seedJobs(t, jobs, "acct-1", 1)
	reader := NewReader(jobs)

	if _, err := reader.ToggleFavorite(context.Background(), "acct-2", ids[0]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign toggle = %v, want ErrNotFound", err)
	}

	favorite, err := reader.ToggleFavorite(context.Background(), "acct-1", ids[0])
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !favorite {
		t.Fatal("first toggle should mark favorite")
	}
	job, err := reader.Get(context.Background(), "acct-1", ids[0])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !job.IsFavorite {
		t.Fatal("job should read back as favorite")
	}

	favorite, err = reader.ToggleFavorite(context.Background(), "acct-1", ids[0])
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if favorite {
		t.Fatal("second toggle should clear favorite")
	}
}

func TestReaderDelete(t *testing.T) {
	jobs := testsupport.NewMemoryJobs()
	ids := seedJobs(t, jobs, "acct-1", 1)
	reader := NewReader(jobs)

	if err := reader.Delete(context.Background(), "acct-2", ids[0]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete = %v, want ErrNotFound", err)
	}
	if err := reader.Delete(context.Background(), "acct-1", ids[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := reader.Get(context.Background(), "acct-1", ids[0]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted job still readable: %v", err)
	}
}
