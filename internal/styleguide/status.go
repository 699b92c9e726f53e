package styleguide

import (
	"fmt"
	"time"
)

// JobStatus represents the lifecycle state of an analysis job.
type JobStatus string

// Job status values in strict forward order. StatusFailed is reachable from any
// non-terminal state.
const (
	StatusPending               JobStatus = "pending"
	StatusFetching              JobStatus = "fetching"
	StatusExtractingColors      JobStatus = "extracting_colors"
	StatusExtractingTypography  JobStatus = "extracting_typography"
	StatusIdentifyingComponents JobStatus = "identifying_components"
	StatusGeneratingPDF         JobStatus = "generating_pdf"
	StatusCompleted             JobStatus = "completed"
	StatusFailed                JobStatus = "failed"
)

var statusOrder = map[JobStatus]int{
	StatusPending:               0,
	StatusFetching:              1,
	StatusExtractingColors:      2,
	StatusExtractingTypography:  3,
	StatusIdentifyingComponents: 4,
	StatusGeneratingPDF:         5,
	StatusCompleted:             6,
}

var stageProgress = map[JobStatus]int{
	StatusPending:               0,
	StatusFetching:              10,
	StatusExtractingColors:      30,
	StatusExtractingTypography:  50,
	StatusIdentifyingComponents: 70,
	StatusGeneratingPDF:         90,
	StatusCompleted:             100,
}

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	if s == StatusFailed {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// Terminal reports whether s is completed or failed.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress returns the progress value associated with entering s.
func (s JobStatus) Progress() int {
	return stageProgress[s]
}

// ValidateTransition checks that moving from one status to another is a legal
// forward step.
func ValidateTransition(from, to JobStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: job already %s", ErrInvalidTransition, from)
	}
	if to == StatusFailed || from == to {
		return nil
	}
	if statusOrder[to] < statusOrder[from] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Apply merges an update into job and returns the result. Transitions that
// move the status backwards, leave a terminal state, or decrease progress are
// rejected so every store shares the same merge contract.
func Apply(job Job, update JobUpdate) (Job, error) {
	if update.Status != nil {
		if err := ValidateTransition(job.Status, *update.Status); err != nil {
			return job, err
		}
	} else if job.Status.Terminal() {
		return job, fmt.Errorf("%w: job already %s", ErrInvalidTransition, job.Status)
	}
	if update.Progress != nil {
		p := *update.Progress
		if p < 0 || p > 100 {
			return job, fmt.Errorf("%w: progress %d out of range", ErrInvalidTransition, p)
		}
		if p < job.Progress {
			return job, fmt.Errorf("%w: progress %d < %d", ErrInvalidTransition, p, job.Progress)
		}
		job.Progress = p
	}
	if update.Status != nil {
		job.Status = *update.Status
	}
	if update.Error != nil {
		job.Error = *update.Error
	}
	if update.Result != nil {
		job.Result = update.Result
	}
	if update.DocumentURI != nil {
		job.DocumentURI = *update.DocumentURI
	}
	return job, nil
}

// NewJob builds a job in pending state.
func NewJob(id, url string, now time.Time) Job {
	return Job{
		ID:        id,
		URL:       url,
		Status:    StatusPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StatusUpdate builds an update entering status with its stage progress.
func StatusUpdate(status JobStatus) JobUpdate {
	p := status.Progress()
	return JobUpdate{Status: &status, Progress: &p}
}

// FailureUpdate builds an update that marks a job failed with msg.
func FailureUpdate(msg string) JobUpdate {
	status := StatusFailed
	return JobUpdate{Status: &status, Error: &msg}
}
