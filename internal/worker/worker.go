// Package worker implements the queue consumption loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/metrics"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Processor runs one dequeued job to a terminal state.
type Processor interface {
	Process(ctx context.Context, item styleguide.QueueItem)
}

// Worker consumes queue items and hands them to a Processor.
type Worker struct {
	queue     styleguide.Queue
	processor Processor
	logger    *zap.Logger
}

// New constructs a Worker.
func New(queue styleguide.Queue, processor Processor, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:     queue,
		processor: processor,
		logger:    logger,
	}
}

// Run blocks, consuming queue items until the context finishes or the queue
// is closed and drained.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, styleguide.ErrQueueClosed) {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job", zap.String("job_id", item.JobID), zap.Int("attempt", item.Attempt))
		w.processJob(ctx, item)
	}
}

func (w *Worker) processJob(ctx context.Context, item styleguide.QueueItem) {
	if w.processor == nil {
		w.logger.Error("no processor configured", zap.String("job_id", item.JobID))
		return
	}
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("job processing panicked",
				zap.String("job_id", item.JobID),
				zap.String("panic", fmt.Sprint(r)),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	w.processor.Process(ctx, item)
}
