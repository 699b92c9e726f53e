// Package progress defines the event structures emitted by the analysis pipeline.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageJobStart    Stage = "JOB_START"
	StageJobDone     Stage = "JOB_DONE"
	StageJobError    Stage = "JOB_ERROR"
	StageProbeDone   Stage = "PROBE_DONE"
	StageStepDone    Stage = "STEP_DONE"
	StageHarvestDone Stage = "HARVEST_DONE"
)

// StatusClass is a coarse HTTP response grouping.
type StatusClass string

// Supported HTTP status classes tracked for probe completions.
const (
	Status2xx   StatusClass = "2xx"
	Status3xx   StatusClass = "3xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusOther StatusClass = "other"
)

// Event captures a single component of job progress.
type Event struct {
	// JobID uniquely identifies a job using the 16-byte UUID form.
	JobID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle milestone occurred.
	Stage Stage
	// Step names the pipeline status a STEP_DONE event closes (e.g. extracting_colors).
	Step string
	// Site scopes probe and harvest events to a host label.
	Site string
	// URL is the optional page URL; it should not contain credentials.
	URL string
	// StatusClass groups the probe HTTP response code.
	StatusClass StatusClass
	// Colors is the number of raw color values harvested.
	Colors int
	// SkippedSheets counts stylesheets that could not be read.
	SkippedSheets int
	// Clicks counts dismissed interstitials.
	Clicks int
	// Dur captures execution latency for steps and job completions.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.JobID == [16]byte{} {
		return errors.New("job id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageJobStart, StageJobDone, StageJobError:
	case StageStepDone:
		if e.Step == "" {
			return errors.New("step done requires step")
		}
	case StageProbeDone:
		if e.Site == "" {
			return errors.New("probe done requires site")
		}
		if e.StatusClass == "" {
			return errors.New("probe done requires status class")
		}
	case StageHarvestDone:
		if e.Site == "" {
			return errors.New("harvest done requires site")
		}
		if e.Colors < 0 || e.SkippedSheets < 0 || e.Clicks < 0 {
			return errors.New("harvest counts must be >= 0")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// JobUUID converts the binary job ID to uuid.UUID for repositories.
func (e Event) JobUUID() uuid.UUID {
	return uuid.UUID(e.JobID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}

// ParseJobID converts a textual job id into the Event form.
func ParseJobID(id string) ([16]byte, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return [16]byte{}, fmt.Errorf("parse job id: %w", err)
	}
	return UUIDToBytes(parsed), nil
}

// ClassifyStatus groups HTTP status codes for probe events.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return StatusOther
	}
}
