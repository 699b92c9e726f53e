// Package fallback wraps a remote JobStore and degrades to a local one while
// the remote is unreachable.
package fallback

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/metrics"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// JobStore routes every call to the primary store first. Calls that fail with
// styleguide.ErrUnavailable are replayed against the local store. Jobs created
// locally during an outage stay readable from the local store afterwards. A
// job the local store has never seen reports the primary's ErrUnavailable
// rather than ErrNotFound. The local copy is best-effort and not durable.
type JobStore struct {
	primary styleguide.JobStore
	local   styleguide.JobStore
	logger  *zap.Logger
}

// New wraps primary with local.
func New(primary, local styleguide.JobStore, logger *zap.Logger) *JobStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobStore{primary: primary, local: local, logger: logger.Named("job_store")}
}

// Create implements styleguide.JobStore.
func (s *JobStore) Create(ctx context.Context, job styleguide.Job) error {
	err := s.primary.Create(ctx, job)
	if !unavailable(err) {
		return err
	}
	s.degraded("create", job.ID, err)
	return s.local.Create(ctx, job)
}

// Update implements styleguide.JobStore.
func (s *JobStore) Update(ctx context.Context, jobID string, update styleguide.JobUpdate) (styleguide.Job, error) {
	job, err := s.primary.Update(ctx, jobID, update)
	switch {
	case unavailable(err):
		s.degraded("update", jobID, err)
		localJob, localErr := s.local.Update(ctx, jobID, update)
		if errors.Is(localErr, styleguide.ErrNotFound) {
			return styleguide.Job{}, err
		}
		return localJob, localErr
	case errors.Is(err, styleguide.ErrNotFound):
		if localJob, localErr := s.local.Update(ctx, jobID, update); !errors.Is(localErr, styleguide.ErrNotFound) {
			return localJob, localErr
		}
	}
	return job, err
}

// Get implements styleguide.JobStore.
func (s *JobStore) Get(ctx context.Context, jobID string) (styleguide.Job, error) {
	job, err := s.primary.Get(ctx, jobID)
	switch {
	case unavailable(err):
		s.degraded("get", jobID, err)
		localJob, localErr := s.local.Get(ctx, jobID)
		if errors.Is(localErr, styleguide.ErrNotFound) {
			return styleguide.Job{}, err
		}
		return localJob, localErr
	case errors.Is(err, styleguide.ErrNotFound):
		if localJob, localErr := s.local.Get(ctx, jobID); localErr == nil {
			return localJob, nil
		}
	}
	return job, err
}

// Delete removes the job from both stores.
func (s *JobStore) Delete(ctx context.Context, jobID string) error {
	localErr := s.local.Delete(ctx, jobID)
	err := s.primary.Delete(ctx, jobID)
	if unavailable(err) {
		s.degraded("delete", jobID, err)
		return localErr
	}
	return err
}

func (s *JobStore) degraded(op, jobID string, err error) {
	metrics.ObserveStoreFallback(op)
	s.logger.Warn("job store unavailable, using local fallback",
		zap.String("op", op),
		zap.String("job_id", jobID),
		zap.Error(err),
	)
}

func unavailable(err error) bool {
	return err != nil && errors.Is(err, styleguide.ErrUnavailable)
}
