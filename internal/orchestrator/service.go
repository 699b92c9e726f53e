package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Service is the client-facing job API.
type Service struct {
	store    styleguide.JobStore
	queue    styleguide.Queue
	ids      styleguide.IDGenerator
	clock    styleguide.Clock
	docs     styleguide.BlobReader
	renderer styleguide.Renderer
	logger   *zap.Logger
}

// ServiceDeps are the collaborators of a Service. Docs and Renderer are
// optional.
type ServiceDeps struct {
	Store    styleguide.JobStore
	Queue    styleguide.Queue
	IDs      styleguide.IDGenerator
	Clock    styleguide.Clock
	Docs     styleguide.BlobReader
	Renderer styleguide.Renderer
}

// NewService constructs a Service.
func NewService(deps ServiceDeps, logger *zap.Logger) (*Service, error) {
	if deps.Store == nil || deps.Queue == nil || deps.IDs == nil || deps.Clock == nil {
		return nil, errors.New("store, queue, id generator and clock are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    deps.Store,
		queue:    deps.Queue,
		ids:      deps.IDs,
		clock:    deps.Clock,
		docs:     deps.Docs,
		renderer: deps.Renderer,
		logger:   logger.Named("service"),
	}, nil
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", styleguide.ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", styleguide.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: url must use http or https", styleguide.ErrInvalidInput)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: url must include a host", styleguide.ErrInvalidInput)
	}
	return u.String(), nil
}

// Submit validates rawURL, creates a pending job and queues it.
func (s *Service) Submit(ctx context.Context, rawURL string) (styleguide.Job, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return styleguide.Job{}, err
	}
	id, err := s.ids.NewID()
	if err != nil {
		return styleguide.Job{}, fmt.Errorf("generate job id: %w", err)
	}
	now := s.clock.Now()
	job := styleguide.NewJob(id, target, now)
	if err := s.store.Create(ctx, job); err != nil {
		return styleguide.Job{}, fmt.Errorf("create job: %w", err)
	}
	item := styleguide.QueueItem{JobID: id, URL: target, Attempt: 1, Submitted: now.UnixMilli()}
	if err := s.queue.Enqueue(ctx, item); err != nil {
		msg := "job could not be queued"
		if _, uerr := s.store.Update(context.WithoutCancel(ctx), id, styleguide.FailureUpdate(msg)); uerr != nil {
			s.logger.Warn("mark unqueued job failed", zap.String("job_id", id), zap.Error(uerr))
		}
		return styleguide.Job{}, fmt.Errorf("enqueue job: %w", err)
	}
	s.logger.Info("job submitted", zap.String("job_id", id), zap.String("url", target))
	return job, nil
}

// Status returns the job record. Unknown or expired ids yield ErrNotFound.
func (s *Service) Status(ctx context.Context, jobID string) (styleguide.Job, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return styleguide.Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Result returns the finished style guide. It fails with ErrNotReady while
// the job is not completed and ErrMissingResult when a completed job has no
// payload.
func (s *Service) Result(ctx context.Context, jobID string) (styleguide.StyleGuideData, error) {
	job, err := s.Status(ctx, jobID)
	if err != nil {
		return styleguide.StyleGuideData{}, err
	}
	if job.Status != styleguide.StatusCompleted {
		return styleguide.StyleGuideData{}, fmt.Errorf("%w: status %s", styleguide.ErrNotReady, job.Status)
	}
	if job.Result == nil {
		return styleguide.StyleGuideData{}, fmt.Errorf("%w: job %s", styleguide.ErrMissingResult, jobID)
	}
	return *job.Result, nil
}

// Document opens the stored document of a completed job.
func (s *Service) Document(ctx context.Context, jobID string) (io.ReadCloser, error) {
	job, err := s.Status(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != styleguide.StatusCompleted {
		return nil, fmt.Errorf("%w: status %s", styleguide.ErrNotReady, job.Status)
	}
	if job.DocumentURI == "" || s.docs == nil {
		return nil, fmt.Errorf("%w: no document for job %s", styleguide.ErrNotFound, jobID)
	}
	rc, err := s.docs.GetObject(ctx, job.DocumentURI)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return rc, nil
}

// Render produces a document for caller-supplied data.
func (s *Service) Render(data *styleguide.StyleGuideData) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: data is required", styleguide.ErrInvalidInput)
	}
	if s.renderer == nil {
		return nil, errors.New("document rendering is not configured")
	}
	doc, err := s.renderer.Render(*data)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return doc, nil
}

// Delete removes the job record. Unknown ids yield ErrNotFound.
func (s *Service) Delete(ctx context.Context, jobID string) error {
	if _, err := s.Status(ctx, jobID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}
