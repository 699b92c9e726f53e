package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/metrics"
	"github.com/JakeFAU/style-guide-generator/internal/queue/memory"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

type recordingProcessor struct {
	mu    sync.Mutex
	seen  []string
	panic string
}

func (p *recordingProcessor) Process(_ context.Context, item styleguide.QueueItem) {
	p.mu.Lock()
	p.seen = append(p.seen, item.JobID)
	p.mu.Unlock()
	if item.JobID == p.panic {
		panic("boom")
	}
}

func (p *recordingProcessor) jobs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.seen...)
}

func TestWorkerProcessesQueuedJobs(t *testing.T) {
	t.Parallel()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := memory.NewQueue(4)
	proc := &recordingProcessor{}
	w := New(q, proc, zap.NewNop())
	go w.Run(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(ctx, styleguide.QueueItem{JobID: fmt.Sprintf("job-%d", i)}))
	}
	require.Eventually(t, func() bool { return len(proc.jobs()) == 3 }, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"job-0", "job-1", "job-2"}, proc.jobs())
}

func TestWorkerSurvivesPanics(t *testing.T) {
	t.Parallel()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := memory.NewQueue(2)
	proc := &recordingProcessor{panic: "bad"}
	w := New(q, proc, nil)
	go w.Run(ctx)

	require.NoError(t, q.Enqueue(ctx, styleguide.QueueItem{JobID: "bad"}))
	require.NoError(t, q.Enqueue(ctx, styleguide.QueueItem{JobID: "good"}))
	require.Eventually(t, func() bool { return len(proc.jobs()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestWorkerStopsWhenQueueClosed(t *testing.T) {
	t.Parallel()

	q := memory.NewQueue(1)
	w := New(q, &recordingProcessor{}, zap.NewNop())
	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after queue close")
	}
}

func TestWorkerStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	w := New(memory.NewQueue(1), nil, zap.NewNop())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}
