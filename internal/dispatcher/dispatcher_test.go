// Package dispatcher contains tests for worker coordination.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/queue/memory"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
	"github.com/JakeFAU/style-guide-generator/internal/worker"
)

// TestDispatcherRunStartsWorkers ensures workers begin processing and stop on cancel.
func TestDispatcherRunStartsWorkers(t *testing.T) {
	t.Parallel()

	queue := &blockingQueue{started: make(chan struct{}, 1)}
	w := worker.New(queue, nil, zap.NewNop())
	dispatch := New(queue, []*worker.Worker{w})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		dispatch.Run(ctx)
		close(done)
	}()

	select {
	case <-queue.started:
	case <-time.After(time.Second):
		t.Fatal("worker did not begin dequeuing")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancel")
	}
}

// TestDispatcherPoolDrainsQueue runs a pool to completion over a closed queue.
func TestDispatcherPoolDrainsQueue(t *testing.T) {
	t.Parallel()

	q := memory.NewQueue(8)
	proc := &countingProcessor{}
	dispatch := NewPool(q, proc, 3, func(q styleguide.Queue, p worker.Processor) *worker.Worker {
		return worker.New(q, p, zap.NewNop())
	})
	if dispatch.Size() != 3 {
		t.Fatalf("expected 3 workers, got %d", dispatch.Size())
	}
	for i := 0; i < 5; i++ {
		if err := dispatch.Enqueue(context.Background(), styleguide.QueueItem{JobID: fmt.Sprintf("job-%d", i)}); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}
	q.Close()

	done := make(chan struct{})
	go func() {
		dispatch.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not drain queue")
	}
	if got := proc.n.Load(); got != 5 {
		t.Fatalf("expected 5 processed jobs, got %d", got)
	}
}

// TestDispatcherEnqueueForwardsErrors verifies queue errors are wrapped for callers.
func TestDispatcherEnqueueForwardsErrors(t *testing.T) {
	t.Parallel()

	queue := &errorQueue{err: errors.New("boom")}
	dispatch := New(queue, nil)

	err := dispatch.Enqueue(context.Background(), styleguide.QueueItem{JobID: "job"})
	if err == nil || err.Error() != "queue enqueue: boom" {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

type countingProcessor struct {
	n atomic.Int32
}

func (p *countingProcessor) Process(context.Context, styleguide.QueueItem) {
	p.n.Add(1)
}

type blockingQueue struct {
	started chan struct{}
}

func (q *blockingQueue) Enqueue(_ context.Context, _ styleguide.QueueItem) error {
	select {
	case q.started <- struct{}{}:
	default:
	}
	return nil
}

func (q *blockingQueue) Dequeue(ctx context.Context) (styleguide.QueueItem, error) {
	select {
	case q.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return styleguide.QueueItem{}, fmt.Errorf("blocking dequeue canceled: %w", ctx.Err())
}

type errorQueue struct {
	err error
}

func (q *errorQueue) Enqueue(context.Context, styleguide.QueueItem) error {
	return q.err
}

func (q *errorQueue) Dequeue(context.Context) (styleguide.QueueItem, error) {
	return styleguide.QueueItem{}, nil
}
