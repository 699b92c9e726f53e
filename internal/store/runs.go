// Package store declares interfaces for persisting job run history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("run record not found")

// RunStatus mirrors the job_runs status column.
type RunStatus string

// Run statuses persisted in job_runs.status.
const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// JobRun models the job_runs table. Unlike the job record it survives TTL
// expiry and is used for audits.
type JobRun struct {
	// JobID is the job identifier shared with the job store.
	JobID uuid.UUID
	// URL is the analyzed page.
	URL string
	// Site is the normalized host label (e.g., example.com).
	Site string
	// StartedAt captures when the run was first marked running.
	StartedAt time.Time
	// FinishedAt is nil until the run is marked success/error.
	FinishedAt *time.Time
	// Status is running/success/error.
	Status RunStatus
	// ErrorMessage optionally stores the final failure reason.
	ErrorMessage *string
	// Colors is the number of raw color values harvested.
	Colors int
	// SkippedSheets counts unreadable stylesheets.
	SkippedSheets int
}

// StepTiming is one row of job_steps.
type StepTiming struct {
	JobID      uuid.UUID
	Step       string
	FinishedAt time.Time
	Duration   time.Duration
}

// RunRepository persists per-job run history.
type RunRepository interface {
	// UpsertRunStart inserts (or idempotently updates) the started_at timestamp.
	UpsertRunStart(ctx context.Context, jobID uuid.UUID, url, site string, startedAt time.Time) error
	// CompleteRun marks the run finished with the provided status and error.
	CompleteRun(ctx context.Context, jobID uuid.UUID, finishedAt time.Time, status RunStatus, errMsg *string) error
	// RecordHarvest stores harvest volume for the run.
	RecordHarvest(ctx context.Context, jobID uuid.UUID, colors, skippedSheets int) error
	// RecordSteps appends step timings.
	RecordSteps(ctx context.Context, steps []StepTiming) error

	// GetRun loads a single run or returns ErrNotFound.
	GetRun(ctx context.Context, jobID uuid.UUID) (JobRun, error)
	// ListRuns returns runs filtered by optional status plus limit/offset.
	ListRuns(ctx context.Context, status *RunStatus, limit, offset int) ([]JobRun, error)
}
