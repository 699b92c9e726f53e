// Package orchestrator sequences the analysis pipeline and owns every write
// to job state.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/assembler"
	"github.com/JakeFAU/style-guide-generator/internal/browser"
	collyfetcher "github.com/JakeFAU/style-guide-generator/internal/fetcher/colly"
	"github.com/JakeFAU/style-guide-generator/internal/harvest"
	"github.com/JakeFAU/style-guide-generator/internal/metrics"
	"github.com/JakeFAU/style-guide-generator/internal/progress"
	"github.com/JakeFAU/style-guide-generator/internal/storage"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
	"github.com/JakeFAU/style-guide-generator/internal/telemetry"
)

// DefaultJobTimeout bounds one job from dequeue to terminal state.
const DefaultJobTimeout = 3 * time.Minute

const terminalWriteTimeout = 10 * time.Second

var terminalRetryBackoff = []time.Duration{
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
	2 * time.Second,
}

// Page is one loaded browser tab.
type Page interface {
	harvest.Evaluator
	DismissInterstitials(ctx context.Context) browser.DismissReport
	AutoScroll(ctx context.Context) browser.Outcome
	HTML(ctx context.Context) (string, error)
	Close() error
}

// SessionOpener loads a URL into a fresh, settled Page.
type SessionOpener interface {
	Open(ctx context.Context, url string) (Page, error)
}

// Prober checks reachability before a tab is spent on the URL.
type Prober interface {
	Probe(ctx context.Context, url string) (collyfetcher.Result, error)
}

// Launcher adapts a browser.Launcher to SessionOpener.
type Launcher struct {
	*browser.Launcher
}

// Open implements SessionOpener.
func (l Launcher) Open(ctx context.Context, url string) (Page, error) {
	s, err := l.Launcher.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Config controls pipeline behavior.
type Config struct {
	JobTimeout time.Duration
	Topic      string
}

// Deps are the collaborators of a Pipeline. Prober, Renderer, Blobs,
// Publisher and Emitter are optional.
type Deps struct {
	Store     styleguide.JobStore
	Browser   SessionOpener
	Prober    Prober
	Harvester *harvest.Harvester
	Renderer  styleguide.Renderer
	Blobs     styleguide.BlobStore
	Hasher    styleguide.Hasher
	Clock     styleguide.Clock
	Publisher styleguide.Publisher
	Emitter   progress.Emitter
}

// Pipeline runs queued jobs to completion.
type Pipeline struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
	tracer trace.Tracer
}

// NewPipeline validates deps and constructs a Pipeline.
func NewPipeline(deps Deps, cfg Config, logger *zap.Logger) (*Pipeline, error) {
	if deps.Store == nil {
		return nil, errors.New("job store is required")
	}
	if deps.Browser == nil {
		return nil, errors.New("browser is required")
	}
	if deps.Clock == nil {
		return nil, errors.New("clock is required")
	}
	if deps.Renderer != nil && (deps.Blobs == nil || deps.Hasher == nil) {
		return nil, errors.New("document rendering requires blob store and hasher")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Harvester == nil {
		deps.Harvester = harvest.New(logger)
	}
	if deps.Emitter == nil {
		deps.Emitter = progress.NopEmitter{}
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	return &Pipeline{
		deps:   deps,
		cfg:    cfg,
		logger: logger.Named("orchestrator"),
		tracer: telemetry.Tracer(),
	}, nil
}

// run carries per-job state across stages.
type run struct {
	item     styleguide.QueueItem
	rec      *progress.JobRecorder
	logger   *zap.Logger
	status   styleguide.JobStatus
	stageAt  time.Time
	clicks   int
	metadata styleguide.PageMetadata
	raw      styleguide.RawStyles
}

// Process drives one job to completed or failed. It never returns an error;
// every failure is written to the job.
func (p *Pipeline) Process(ctx context.Context, item styleguide.QueueItem) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.JobTimeout)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "styleguide.job",
		trace.WithAttributes(
			attribute.String("job.id", item.JobID),
			attribute.String("job.url", item.URL),
			attribute.Int("job.attempt", item.Attempt),
		))
	defer span.End()

	start := p.deps.Clock.Now()
	r := &run{
		item:    item,
		rec:     progress.NewJobRecorder(p.deps.Emitter, item.JobID, item.URL, metrics.SanitizeSite(item.URL), p.deps.Clock.Now),
		logger:  p.logger.With(zap.String("job_id", item.JobID), zap.String("url", item.URL)),
		status:  styleguide.StatusPending,
		stageAt: start,
	}
	r.rec.Start()

	err := p.execute(ctx, r)
	elapsed := p.deps.Clock.Now().Sub(start)
	if err != nil {
		msg := failureMessage(ctx, err, p.cfg.JobTimeout)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		r.logger.Warn("job failed", zap.String("stage", string(r.status)), zap.Error(err))
		r.rec.Fail(elapsed, msg)
		metrics.ObserveJob(string(styleguide.StatusFailed))
		p.finish(ctx, item, styleguide.FailureUpdate(msg))
		return
	}
	r.rec.Done(elapsed)
	metrics.ObserveJob(string(styleguide.StatusCompleted))
	r.logger.Info("job completed", zap.Duration("duration", elapsed))
}

// execute runs the stages and converts panics into errors.
func (p *Pipeline) execute(ctx context.Context, r *run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("pipeline panicked", zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("internal error during %s: %v", r.status, rec)
		}
	}()

	if err := p.advance(ctx, r, styleguide.StatusFetching, nil); err != nil {
		return err
	}
	if err := p.fetch(ctx, r); err != nil {
		return err
	}

	if err := p.advance(ctx, r, styleguide.StatusExtractingColors, nil); err != nil {
		return err
	}
	var analysis assembler.Analysis
	p.stage(ctx, "colors", func(context.Context) {
		analysis.Colors, analysis.Palette = assembler.AnalyzeColors(r.raw)
	})

	if err := p.advance(ctx, r, styleguide.StatusExtractingTypography, nil); err != nil {
		return err
	}
	p.stage(ctx, "typography", func(context.Context) {
		analysis.Typography = assembler.AnalyzeTypography(r.raw)
	})

	if err := p.advance(ctx, r, styleguide.StatusIdentifyingComponents, nil); err != nil {
		return err
	}
	data, err := assembler.Compose(assembler.Input{
		URL:        r.item.URL,
		Metadata:   r.metadata,
		Raw:        r.raw,
		AnalyzedAt: p.deps.Clock.Now(),
	}, analysis)
	if err != nil {
		return fmt.Errorf("assemble style guide: %w", err)
	}

	if err := p.advance(ctx, r, styleguide.StatusGeneratingPDF, nil); err != nil {
		return err
	}
	uri := p.document(ctx, r, data)

	final := styleguide.StatusUpdate(styleguide.StatusCompleted)
	final.Result = &data
	if uri != "" {
		final.DocumentURI = &uri
	}
	if err := p.advance(ctx, r, styleguide.StatusCompleted, &final); err != nil {
		return err
	}
	p.publish(ctx, r.item.JobID)
	return nil
}

// fetch probes the URL, loads it in a tab and harvests signals.
func (p *Pipeline) fetch(ctx context.Context, r *run) error {
	if p.deps.Prober != nil {
		var res collyfetcher.Result
		var perr error
		p.stage(ctx, "probe", func(ctx context.Context) {
			res, perr = p.deps.Prober.Probe(ctx, r.item.URL)
		})
		if perr != nil {
			return fmt.Errorf("%w: %w", browser.ErrNavigationError, perr)
		}
		r.rec.Probe(res.StatusCode, res.Duration)
		r.logger.Debug("probe complete", zap.Int("status", res.StatusCode), zap.Int("retries", res.Retries))
	}

	var page Page
	var err error
	p.stage(ctx, "navigate", func(ctx context.Context) {
		page, err = p.deps.Browser.Open(ctx, r.item.URL)
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			r.logger.Debug("close browser session", zap.Error(cerr))
		}
	}()

	p.stage(ctx, "interstitials", func(ctx context.Context) {
		report := page.DismissInterstitials(ctx)
		r.clicks = report.Clicked()
	})
	p.stage(ctx, "scroll", func(ctx context.Context) {
		if outcome := page.AutoScroll(ctx); outcome != browser.OutcomeDone {
			r.logger.Debug("auto scroll incomplete", zap.String("outcome", string(outcome)))
		}
	})

	var html string
	p.stage(ctx, "metadata", func(ctx context.Context) {
		html, err = page.HTML(ctx)
	})
	if err != nil {
		r.logger.Debug("read page html", zap.Error(err))
	} else if meta, merr := harvest.Metadata(html); merr != nil {
		r.logger.Debug("parse page metadata", zap.Error(merr))
	} else {
		r.metadata = meta
	}

	p.stage(ctx, "harvest", func(ctx context.Context) {
		r.raw, err = p.deps.Harvester.Harvest(ctx, page)
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("harvest styles: %w", ctx.Err())
		}
		return fmt.Errorf("harvest styles: %w", err)
	}
	r.rec.Harvest(len(r.raw.Colors), r.raw.SkippedSheets, r.clicks)
	metrics.ObserveHarvest(r.item.URL, len(r.raw.Colors), r.raw.SkippedSheets, r.clicks)
	return nil
}

// document renders and stores the guide. Failures are logged and yield "".
func (p *Pipeline) document(ctx context.Context, r *run, data styleguide.StyleGuideData) string {
	if p.deps.Renderer == nil {
		return ""
	}
	var uri string
	var err error
	p.stage(ctx, "document", func(ctx context.Context) {
		uri, err = p.storeDocument(ctx, r.item.JobID, data)
	})
	if err != nil {
		metrics.ObserveDocument("error")
		r.logger.Warn("document generation failed", zap.Error(err))
		return ""
	}
	metrics.ObserveDocument("stored")
	return uri
}

func (p *Pipeline) storeDocument(ctx context.Context, jobID string, data styleguide.StyleGuideData) (string, error) {
	doc, err := p.deps.Renderer.Render(data)
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	hash, err := p.deps.Hasher.Hash(doc)
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	path := storage.DocumentPath(jobID, hash, p.deps.Renderer.Extension())
	uri, err := p.deps.Blobs.PutObject(ctx, path, p.deps.Renderer.ContentType(), bytes.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return uri, nil
}

// advance closes the current stage and writes the next status. extra, when
// set, replaces the plain status update.
func (p *Pipeline) advance(ctx context.Context, r *run, next styleguide.JobStatus, extra *styleguide.JobUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := p.deps.Clock.Now()
	if r.status != styleguide.StatusPending {
		dur := now.Sub(r.stageAt)
		r.rec.Step(string(r.status), dur)
		metrics.ObserveStage(string(r.status), dur)
	}
	update := styleguide.StatusUpdate(next)
	if extra != nil {
		update = *extra
	}
	if _, err := p.deps.Store.Update(ctx, r.item.JobID, update); err != nil {
		return fmt.Errorf("update job to %s: %w", next, err)
	}
	trace.SpanFromContext(ctx).AddEvent("status", trace.WithAttributes(
		attribute.String("status", string(next)),
		attribute.Int("progress", next.Progress()),
	))
	r.status = next
	r.stageAt = now
	return nil
}

// stage wraps fn in a child span.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := p.tracer.Start(ctx, "styleguide."+name)
	defer span.End()
	fn(ctx)
}

// finish writes a terminal update on a context that outlives the job timeout,
// then publishes the outcome. While the store reports ErrUnavailable the write
// is retried until terminalWriteTimeout expires.
func (p *Pipeline) finish(ctx context.Context, item styleguide.QueueItem, update styleguide.JobUpdate) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancel()
	if err := p.writeTerminal(wctx, item.JobID, update); err != nil {
		p.logger.Error("terminal job update failed", zap.String("job_id", item.JobID), zap.Error(err))
		return
	}
	p.publish(wctx, item.JobID)
}

func (p *Pipeline) writeTerminal(ctx context.Context, jobID string, update styleguide.JobUpdate) error {
	for attempt := 0; ; attempt++ {
		_, err := p.deps.Store.Update(ctx, jobID, update)
		if err == nil || !errors.Is(err, styleguide.ErrUnavailable) {
			return err
		}
		delay := terminalRetryBackoff[min(attempt, len(terminalRetryBackoff)-1)]
		p.logger.Warn("job store unavailable, retrying terminal update",
			zap.String("job_id", jobID),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("terminal update: %w (last error: %w)", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

// publish sends the terminal job event. Failures are logged only.
func (p *Pipeline) publish(ctx context.Context, jobID string) {
	if p.deps.Publisher == nil {
		return
	}
	job, err := p.deps.Store.Get(ctx, jobID)
	if err != nil {
		p.logger.Warn("load job for notification", zap.String("job_id", jobID), zap.Error(err))
		return
	}
	ev := styleguide.EventFor(job, p.deps.Clock.Now())
	id, err := p.deps.Publisher.Publish(ctx, p.cfg.Topic, ev)
	if err != nil {
		p.logger.Warn("publish job event failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}
	p.logger.Debug("job event published", zap.String("job_id", jobID), zap.String("message_id", id))
}

func failureMessage(ctx context.Context, err error, timeout time.Duration) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, browser.ErrNavigationTimeout) {
		return fmt.Sprintf("job timed out after %s: %v", timeout, err)
	}
	return err.Error()
}
