package sinks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/progress"
	"github.com/JakeFAU/style-guide-generator/internal/store"
)

// StoreSink persists run history via a store.RunRepository. Step timings are
// collected per batch and written in one call.
type StoreSink struct {
	repo   store.RunRepository
	logger *zap.Logger
}

// NewStoreSink constructs a StoreSink for the provided repository.
func NewStoreSink(repo store.RunRepository, logger *zap.Logger) *StoreSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreSink{repo: repo, logger: logger}
}

// Consume forwards lifecycle events to the repository. It respects ctx
// deadlines and returns any repository errors wrapped.
func (s *StoreSink) Consume(ctx context.Context, batch []progress.Event) error {
	if s == nil || s.repo == nil {
		return nil
	}
	var steps []store.StepTiming

	for _, evt := range batch {
		jobID := evt.JobUUID()
		switch evt.Stage {
		case progress.StageJobStart, progress.StageJobDone, progress.StageJobError:
			if err := s.handleJobEvent(ctx, jobID, evt); err != nil {
				return err
			}
		case progress.StageHarvestDone:
			if err := s.repo.RecordHarvest(ctx, jobID, evt.Colors, evt.SkippedSheets); err != nil {
				return fmt.Errorf("record harvest: %w", err)
			}
		case progress.StageStepDone:
			steps = append(steps, store.StepTiming{
				JobID:      jobID,
				Step:       evt.Step,
				FinishedAt: evt.TS,
				Duration:   evt.Dur,
			})
		}
	}

	if len(steps) == 0 {
		return nil
	}
	if err := s.repo.RecordSteps(ctx, steps); err != nil {
		return fmt.Errorf("record steps: %w", err)
	}
	return nil
}

func (s *StoreSink) handleJobEvent(ctx context.Context, jobID uuid.UUID, evt progress.Event) error {
	switch evt.Stage {
	case progress.StageJobStart:
		if err := s.repo.UpsertRunStart(ctx, jobID, evt.URL, evt.Site, evt.TS); err != nil {
			return fmt.Errorf("upsert run start: %w", err)
		}
	case progress.StageJobDone:
		if err := s.repo.CompleteRun(ctx, jobID, evt.TS, store.RunSuccess, nil); err != nil {
			return fmt.Errorf("complete run: %w", err)
		}
	case progress.StageJobError:
		var note *string
		if evt.Note != "" {
			note = &evt.Note
		}
		if err := s.repo.CompleteRun(ctx, jobID, evt.TS, store.RunError, note); err != nil {
			return fmt.Errorf("complete run: %w", err)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *StoreSink) Close(context.Context) error {
	return nil
}
