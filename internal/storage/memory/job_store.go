package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// DefaultTTL is how long a job lives after its last write.
const DefaultTTL = 24 * time.Hour

type entry struct {
	job     styleguide.Job
	expires time.Time
}

// JobStore provides an in-memory JobStore with per-entry TTL. Expired entries
// are invisible immediately and reclaimed by Sweep.
type JobStore struct {
	mu    sync.Mutex
	jobs  map[string]entry
	ttl   time.Duration
	clock styleguide.Clock
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// NewJobStore constructs a JobStore. Non-positive ttl falls back to DefaultTTL
// and a nil clock uses the system time.
func NewJobStore(ttl time.Duration, clock styleguide.Clock) *JobStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &JobStore{
		jobs:  make(map[string]entry),
		ttl:   ttl,
		clock: clock,
	}
}

// Create stores a new job. An expired record with the same id is replaced.
func (s *JobStore) Create(_ context.Context, job styleguide.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if e, ok := s.jobs[job.ID]; ok && now.Before(e.expires) {
		return fmt.Errorf("%w: %s", styleguide.ErrAlreadyExists, job.ID)
	}
	s.jobs[job.ID] = entry{job: job, expires: now.Add(s.ttl)}
	return nil
}

// Update merges update into the stored job under the store lock and refreshes
// the TTL.
func (s *JobStore) Update(_ context.Context, jobID string, update styleguide.JobUpdate) (styleguide.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	e, ok := s.live(jobID, now)
	if !ok {
		return styleguide.Job{}, fmt.Errorf("%w: %s", styleguide.ErrNotFound, jobID)
	}
	job, err := styleguide.Apply(e.job, update)
	if err != nil {
		return e.job, err
	}
	job.UpdatedAt = now
	s.jobs[jobID] = entry{job: job, expires: now.Add(s.ttl)}
	return job, nil
}

// Get fetches a job by ID.
func (s *JobStore) Get(_ context.Context, jobID string) (styleguide.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(jobID, s.clock.Now())
	if !ok {
		return styleguide.Job{}, fmt.Errorf("%w: %s", styleguide.ErrNotFound, jobID)
	}
	return e.job, nil
}

// Delete removes a job. Deleting a missing job is not an error.
func (s *JobStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *JobStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	removed := 0
	for id, e := range s.jobs {
		if !now.Before(e.expires) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// live must be called with s.mu held.
func (s *JobStore) live(jobID string, now time.Time) (entry, bool) {
	e, ok := s.jobs[jobID]
	if !ok {
		return entry{}, false
	}
	if !now.Before(e.expires) {
		delete(s.jobs, jobID)
		return entry{}, false
	}
	return e, true
}
