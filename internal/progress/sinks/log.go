package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/progress"
)

// LogSink emits structured logs for debugging progress streams. It is useful
// during development or audits where a durable store is unavailable.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("job_id", evt.JobUUID().String()),
			zap.String("stage", string(evt.Stage)),
			zap.String("site", evt.Site),
			zap.Duration("dur", evt.Dur),
		}
		switch evt.Stage {
		case progress.StageStepDone:
			fields = append(fields, zap.String("step", evt.Step))
		case progress.StageProbeDone:
			fields = append(fields, zap.String("status_class", string(evt.StatusClass)))
		case progress.StageHarvestDone:
			fields = append(fields,
				zap.Int("colors", evt.Colors),
				zap.Int("skipped_sheets", evt.SkippedSheets),
				zap.Int("clicks", evt.Clicks),
			)
		case progress.StageJobError:
			fields = append(fields, zap.String("note", evt.Note))
		}
		s.logger.Info("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
