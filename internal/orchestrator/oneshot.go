package orchestrator

import (
	"context"
	"fmt"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Analyze creates a job for rawURL and runs it inline, returning the terminal
// job record.
func (p *Pipeline) Analyze(ctx context.Context, rawURL string, ids styleguide.IDGenerator) (styleguide.Job, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return styleguide.Job{}, err
	}
	id, err := ids.NewID()
	if err != nil {
		return styleguide.Job{}, fmt.Errorf("generate job id: %w", err)
	}
	now := p.deps.Clock.Now()
	if err := p.deps.Store.Create(ctx, styleguide.NewJob(id, target, now)); err != nil {
		return styleguide.Job{}, fmt.Errorf("create job: %w", err)
	}
	p.Process(ctx, styleguide.QueueItem{JobID: id, URL: target, Attempt: 1, Submitted: now.UnixMilli()})

	job, err := p.deps.Store.Get(context.WithoutCancel(ctx), id)
	if err != nil {
		return styleguide.Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}
