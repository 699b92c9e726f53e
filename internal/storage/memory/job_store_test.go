package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestJobStoreLifecycle(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	store := NewJobStore(time.Hour, clock)
	ctx := context.Background()
	job := styleguide.NewJob("job-1", "https://example.com", clock.Now())

	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, job); !errors.Is(err, styleguide.ErrAlreadyExists) {
		t.Fatalf("expected duplicate job error, got %v", err)
	}

	clock.Advance(time.Minute)
	got, err := store.Update(ctx, job.ID, styleguide.StatusUpdate(styleguide.StatusFetching))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Status != styleguide.StatusFetching || got.Progress != 10 {
		t.Fatalf("unexpected job after update: %+v", got)
	}
	if !got.UpdatedAt.Equal(clock.Now()) || got.URL != job.URL {
		t.Fatalf("expected merge to keep url and stamp updatedAt, got %+v", got)
	}

	if _, err := store.Update(ctx, job.ID, styleguide.StatusUpdate(styleguide.StatusPending)); !errors.Is(err, styleguide.ErrInvalidTransition) {
		t.Fatalf("expected backward transition to be rejected, got %v", err)
	}
	stored, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Status != styleguide.StatusFetching {
		t.Fatalf("rejected update must not change the record, got %s", stored.Status)
	}

	if err := store.Delete(ctx, job.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, job.ID); !errors.Is(err, styleguide.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestJobStoreTTLRefreshAndExpiry(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	store := NewJobStore(time.Hour, clock)
	ctx := context.Background()
	if err := store.Create(ctx, styleguide.NewJob("job-1", "https://example.com", clock.Now())); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	clock.Advance(50 * time.Minute)
	if _, err := store.Update(ctx, "job-1", styleguide.StatusUpdate(styleguide.StatusFetching)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	clock.Advance(50 * time.Minute)
	if _, err := store.Get(ctx, "job-1"); err != nil {
		t.Fatalf("write should refresh TTL, got %v", err)
	}

	clock.Advance(11 * time.Minute)
	if _, err := store.Get(ctx, "job-1"); !errors.Is(err, styleguide.ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if err := store.Create(ctx, styleguide.NewJob("job-1", "https://example.org", clock.Now())); err != nil {
		t.Fatalf("expired id should be reusable, got %v", err)
	}
}

func TestJobStoreSweep(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(0, 0).UTC()}
	store := NewJobStore(time.Minute, clock)
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		if err := store.Create(ctx, styleguide.NewJob(id, "https://example.com", clock.Now())); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}
	clock.Advance(30 * time.Second)
	if err := store.Create(ctx, styleguide.NewJob("c", "https://example.com", clock.Now())); err != nil {
		t.Fatalf("Create(c) error = %v", err)
	}
	clock.Advance(45 * time.Second)
	if removed := store.Sweep(); removed != 2 {
		t.Fatalf("Sweep() removed %d, want 2", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one live entry, got %d", store.Len())
	}
}

func TestJobStoreConcurrentUpdatesAreSerialized(t *testing.T) {
	t.Parallel()

	store := NewJobStore(time.Hour, nil)
	ctx := context.Background()
	if err := store.Create(ctx, styleguide.NewJob("job-1", "https://example.com", time.Now())); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i <= 100; i += 5 {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			_, _ = store.Update(ctx, "job-1", styleguide.JobUpdate{Progress: &p})
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Progress != 100 {
		t.Fatalf("progress must end at the maximum written value, got %d", got.Progress)
	}
}
