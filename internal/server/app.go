// Package server builds the application's dependencies from configuration and
// runs the HTTP service with its worker pool.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/api"
	"github.com/JakeFAU/style-guide-generator/internal/browser"
	"github.com/JakeFAU/style-guide-generator/internal/clock/system"
	"github.com/JakeFAU/style-guide-generator/internal/config"
	"github.com/JakeFAU/style-guide-generator/internal/dispatcher"
	collyfetcher "github.com/JakeFAU/style-guide-generator/internal/fetcher/colly"
	"github.com/JakeFAU/style-guide-generator/internal/harvest"
	"github.com/JakeFAU/style-guide-generator/internal/hash/sha256"
	"github.com/JakeFAU/style-guide-generator/internal/id/uuid"
	"github.com/JakeFAU/style-guide-generator/internal/logging"
	"github.com/JakeFAU/style-guide-generator/internal/orchestrator"
	"github.com/JakeFAU/style-guide-generator/internal/progress"
	progresssinks "github.com/JakeFAU/style-guide-generator/internal/progress/sinks"
	kafkapublisher "github.com/JakeFAU/style-guide-generator/internal/publisher/kafka"
	memorypublisher "github.com/JakeFAU/style-guide-generator/internal/publisher/memory"
	gcppublisher "github.com/JakeFAU/style-guide-generator/internal/publisher/pubsub"
	queueMemory "github.com/JakeFAU/style-guide-generator/internal/queue/memory"
	"github.com/JakeFAU/style-guide-generator/internal/render/pdf"
	docstorage "github.com/JakeFAU/style-guide-generator/internal/storage"
	"github.com/JakeFAU/style-guide-generator/internal/storage/fallback"
	gcsstorage "github.com/JakeFAU/style-guide-generator/internal/storage/gcs"
	localstorage "github.com/JakeFAU/style-guide-generator/internal/storage/local"
	memoryStorage "github.com/JakeFAU/style-guide-generator/internal/storage/memory"
	pgstore "github.com/JakeFAU/style-guide-generator/internal/storage/postgres"
	redisstore "github.com/JakeFAU/style-guide-generator/internal/storage/redis"
	"github.com/JakeFAU/style-guide-generator/internal/store"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
	"github.com/JakeFAU/style-guide-generator/internal/telemetry"
	"github.com/JakeFAU/style-guide-generator/internal/worker"
)

const sweepInterval = time.Minute

// App contains the application's dependencies.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	apiServer   *api.Server
	pipeline    *orchestrator.Pipeline
	dispatch    *dispatcher.Dispatcher
	queue       *queueMemory.Queue
	progressHub *progress.Hub
	launcher    *browser.Launcher
	renderer    *pdf.Renderer
	ids         styleguide.IDGenerator

	jobStore   styleguide.JobStore
	memoryJobs *memoryStorage.JobStore
	pgJobs     *pgstore.JobStore
	runRepo    store.RunRepository
	checks     []api.ReadinessCheck

	redisClient     goredis.UniversalClient
	pgPool          *pgxpool.Pool
	storage         *storage.Client
	pubsubClient    *pubsub.Client
	pubsubPublisher *gcppublisher.Publisher
	kafkaPublisher  *kafkapublisher.Publisher
	tracerProvider  *sdktrace.TracerProvider

	closeOnce sync.Once
}

// NewApp creates an empty App with the given configuration.
func NewApp(cfg config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("creating application",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("documents_backend", cfg.Documents.Backend),
		zap.String("notify_backend", cfg.Notify.Backend),
	)
	return &App{cfg: cfg, logger: logger}
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Handler exposes the HTTP router.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run starts the dispatcher and HTTP server and blocks until ctx is canceled.
// The caller releases resources with Close afterwards.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		a.logger.Info("dispatcher started", zap.Int("workers", a.dispatch.Size()))
		a.dispatch.Run(ctx)
	}()
	go a.sweep(ctx)

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	grace := a.cfg.Server.ShutdownTimeout
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	a.queue.Close()
	select {
	case <-dispatchDone:
	case <-shutdownCtx.Done():
		a.logger.Warn("workers did not drain before shutdown deadline")
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}

// Analyze runs one job inline without the queue or HTTP server.
func (a *App) Analyze(ctx context.Context, rawURL string) (styleguide.Job, error) {
	job, err := a.pipeline.Analyze(ctx, rawURL, a.ids)
	if err != nil {
		return styleguide.Job{}, fmt.Errorf("analyze: %w", err)
	}
	return job, nil
}

// Render produces the PDF for data.
func (a *App) Render(data styleguide.StyleGuideData) ([]byte, error) {
	doc, err := a.renderer.Render(data)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return doc, nil
}

// Close gracefully shuts down the application. Later calls are no-ops.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		if a.queue != nil {
			a.queue.Close()
		}
		a.closeInfrastructure(ctx)
		a.closeObservability(ctx)
		a.logger.Info("shutdown complete")
	})
	return nil
}

func (a *App) closeInfrastructure(ctx context.Context) {
	if a.progressHub != nil {
		if err := a.progressHub.Close(ctx); err != nil {
			a.logger.Warn("progress hub close failed", zap.Error(err))
		}
	}
	if a.launcher != nil {
		a.launcher.Close()
	}
	if a.pubsubPublisher != nil {
		a.pubsubPublisher.Close()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	if a.kafkaPublisher != nil {
		a.kafkaPublisher.Close()
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("redis client close failed", zap.Error(err))
		}
	}
	if a.pgPool != nil {
		a.pgPool.Close()
	}
}

func (a *App) closeObservability(ctx context.Context) {
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	//nolint:errcheck // stdout sync fails on some terminals
	_ = a.logger.Sync()
}

// sweep drops expired job records from stores without native expiry.
func (a *App) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if a.memoryJobs != nil {
			if n := a.memoryJobs.Sweep(); n > 0 {
				a.logger.Debug("swept expired jobs", zap.Int("count", n))
			}
		}
		if a.pgJobs != nil {
			n, err := a.pgJobs.DeleteExpired(ctx)
			if err != nil {
				a.logger.Warn("delete expired jobs failed", zap.Error(err))
				continue
			}
			if n > 0 {
				a.logger.Debug("deleted expired jobs", zap.Int64("count", n))
			}
		}
	}
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{Development: cfg.Logging.Development, Level: cfg.Logging.Level})
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)

	app := NewApp(cfg, logger)
	if err := app.build(ctx); err != nil {
		//nolint:errcheck // partial teardown after a failed build
		_ = app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	tp, err := telemetry.InitTracerProvider(ctx, telemetry.Config{
		ServiceName: a.cfg.Telemetry.ServiceName,
		SampleRatio: a.cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("tracer init failed: %w", err)
	}
	a.tracerProvider = tp

	a.logger.Info("building application dependencies")
	clock := system.New()
	a.ids = uuid.New()
	a.renderer = pdf.New()

	if err := a.setupJobStore(ctx, clock); err != nil {
		return err
	}
	blobs, reader, err := a.setupDocuments(ctx)
	if err != nil {
		return err
	}
	publisher, err := a.setupPublisher(ctx)
	if err != nil {
		return err
	}
	emitter, err := a.setupProgress(ctx)
	if err != nil {
		return err
	}
	if err := a.setupPipeline(clock, blobs, publisher, emitter); err != nil {
		return err
	}

	a.queue = queueMemory.NewQueue(a.cfg.Orchestrator.QueueDepth)
	workerLogger := a.logger.Named("worker")
	a.dispatch = dispatcher.NewPool(a.queue, a.pipeline, a.cfg.Orchestrator.Concurrency,
		func(q styleguide.Queue, p worker.Processor) *worker.Worker {
			return worker.New(q, p, workerLogger)
		})

	svc, err := orchestrator.NewService(orchestrator.ServiceDeps{
		Store:    a.jobStore,
		Queue:    a.queue,
		IDs:      a.ids,
		Clock:    clock,
		Docs:     reader,
		Renderer: a.renderer,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("service init failed: %w", err)
	}
	a.apiServer = api.NewServer(svc, a.runRepo, a.cfg, a.logger.Named("api"), a.checks...)
	return nil
}

func (a *App) setupJobStore(ctx context.Context, clock styleguide.Clock) error {
	sc := a.cfg.Store
	a.memoryJobs = memoryStorage.NewJobStore(sc.TTL, clock)

	var primary styleguide.JobStore
	switch sc.Backend {
	case "redis":
		a.redisClient = goredis.NewClient(&goredis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		rs, err := redisstore.New(a.redisClient, redisstore.Config{
			Namespace:  sc.Namespace,
			TTL:        sc.TTL,
			MaxRetries: sc.Redis.MaxRetries,
		})
		if err != nil {
			return fmt.Errorf("redis job store init failed: %w", err)
		}
		a.checks = append(a.checks, rs.Ping)
		primary = rs
		a.logger.Info("using redis job store", zap.String("addr", sc.Redis.Addr), zap.String("namespace", sc.Namespace))
	case "postgres":
		pool, err := pgstore.NewPool(ctx, pgstore.PoolConfig{
			DSN:             sc.Postgres.DSN,
			MaxConns:        sc.Postgres.MaxConns,
			MinConns:        sc.Postgres.MinConns,
			MaxConnLifetime: sc.Postgres.MaxConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("postgres pool init failed: %w", err)
		}
		a.pgPool = pool
		if sc.Postgres.Migrate {
			if err := pgstore.Migrate(ctx, pool, sc.Postgres.Table); err != nil {
				return fmt.Errorf("postgres migrate failed: %w", err)
			}
		}
		a.pgJobs, err = pgstore.NewJobStore(pool, pgstore.JobStoreConfig{Table: sc.Postgres.Table, TTL: sc.TTL})
		if err != nil {
			return fmt.Errorf("postgres job store init failed: %w", err)
		}
		runs, err := pgstore.NewRunStore(pool)
		if err != nil {
			return fmt.Errorf("postgres run store init failed: %w", err)
		}
		a.runRepo = runs
		a.checks = append(a.checks, pool.Ping)
		primary = a.pgJobs
		a.logger.Info("using postgres job store", zap.String("table", sc.Postgres.Table))
	default:
		a.jobStore = a.memoryJobs
		a.logger.Info("using in-memory job store", zap.Duration("ttl", sc.TTL))
		return nil
	}

	if sc.Fallback {
		a.jobStore = fallback.New(primary, a.memoryJobs, a.logger)
		a.logger.Info("in-memory fallback enabled for job store")
		return nil
	}
	a.memoryJobs = nil
	a.jobStore = primary
	return nil
}

func (a *App) setupDocuments(ctx context.Context) (styleguide.BlobStore, styleguide.BlobReader, error) {
	dc := a.cfg.Documents
	router := docstorage.NewRouter()
	switch dc.Backend {
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs client init failed: %w", err)
		}
		a.storage = client
		blobs, err := gcsstorage.New(client, gcsstorage.Config{Bucket: dc.Bucket, Prefix: dc.Prefix})
		if err != nil {
			return nil, nil, fmt.Errorf("gcs blob store init failed: %w", err)
		}
		a.logger.Info("using GCS document store", zap.String("bucket", dc.Bucket))
		return blobs, router.Register(gcsstorage.Scheme, blobs), nil
	case "local":
		blobs, err := localstorage.New(localstorage.Config{BaseDir: dc.Dir})
		if err != nil {
			return nil, nil, fmt.Errorf("local blob store init failed: %w", err)
		}
		a.logger.Info("using local document store", zap.String("path", dc.Dir))
		return blobs, router.Register(localstorage.Scheme, blobs), nil
	default:
		blobs := memoryStorage.NewBlobStore()
		a.logger.Info("using in-memory document store")
		return blobs, router.Register(memoryStorage.Scheme, blobs), nil
	}
}

func (a *App) setupPublisher(ctx context.Context) (styleguide.Publisher, error) {
	nc := a.cfg.Notify
	switch nc.Backend {
	case "memory":
		a.logger.Info("using in-memory publisher")
		return memorypublisher.New(), nil
	case "pubsub":
		client, err := pubsub.NewClient(ctx, nc.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("pubsub client init failed: %w", err)
		}
		a.pubsubClient = client
		a.pubsubPublisher = gcppublisher.New(client, nc.Topic)
		a.logger.Info("Pub/Sub publisher initialized",
			zap.String("project", nc.ProjectID),
			zap.String("topic", nc.Topic),
		)
		return a.pubsubPublisher, nil
	case "kafka":
		pub, err := kafkapublisher.Dial(nc.Brokers, nc.Topic)
		if err != nil {
			return nil, fmt.Errorf("kafka publisher init failed: %w", err)
		}
		a.kafkaPublisher = pub
		a.logger.Info("Kafka publisher initialized",
			zap.Strings("brokers", nc.Brokers),
			zap.String("topic", nc.Topic),
		)
		return pub, nil
	default:
		a.logger.Info("job notifications disabled")
		return nil, nil
	}
}

func (a *App) setupProgress(ctx context.Context) (progress.Emitter, error) {
	sinkList := []progress.Sink{
		progresssinks.NewLogSink(a.logger.Named("progress_log")),
	}
	promSink, err := progresssinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("progress prometheus sink init failed: %w", err)
	}
	sinkList = append(sinkList, promSink)
	if a.runRepo != nil {
		sinkList = append(sinkList, progresssinks.NewStoreSink(a.runRepo, a.logger.Named("progress_store")))
		a.logger.Debug("added progress store sink")
	}

	pc := a.cfg.Progress
	hubCfg := progress.Config{
		BufferSize:     pc.BufferSize,
		MaxBatchEvents: pc.MaxBatchEvents,
		MaxBatchWait:   pc.MaxBatchWait,
		SinkTimeout:    pc.SinkTimeout,
		BaseContext:    context.WithoutCancel(ctx),
		Logger:         a.logger.Named("progress_hub"),
	}
	a.progressHub = progress.NewHub(hubCfg, sinkList...)
	a.logger.Info("progress hub initialized",
		zap.Int("sinks", len(sinkList)),
		zap.Int("buffer_size", hubCfg.BufferSize),
		zap.Duration("max_batch_wait", hubCfg.MaxBatchWait),
	)
	return a.progressHub, nil
}

func (a *App) setupPipeline(
	clock styleguide.Clock,
	blobs styleguide.BlobStore,
	publisher styleguide.Publisher,
	emitter progress.Emitter,
) error {
	bc := a.cfg.Browser
	browserCfg := browser.DefaultConfig()
	browserCfg.ExecPath = bc.ExecPath
	browserCfg.Headless = bc.Headless
	browserCfg.MaxSessions = bc.MaxSessions
	browserCfg.DomainQPS = bc.DomainQPS
	if bc.UserAgent != "" {
		browserCfg.UserAgent = bc.UserAgent
	}
	if bc.ViewportWidth > 0 && bc.ViewportHeight > 0 {
		browserCfg.ViewportWidth = bc.ViewportWidth
		browserCfg.ViewportHeight = bc.ViewportHeight
	}
	if bc.NavigationTimeout > 0 {
		browserCfg.NavigationTimeout = bc.NavigationTimeout
	}
	launcher, err := browser.NewLauncher(browserCfg, a.logger)
	if err != nil {
		return fmt.Errorf("browser init failed: %w", err)
	}
	a.launcher = launcher

	deps := orchestrator.Deps{
		Store:     a.jobStore,
		Browser:   orchestrator.Launcher{Launcher: launcher},
		Harvester: harvest.New(a.logger),
		Renderer:  a.renderer,
		Blobs:     blobs,
		Hasher:    sha256.New(),
		Clock:     clock,
		Publisher: publisher,
		Emitter:   emitter,
	}
	if a.cfg.Probe.Enabled {
		deps.Prober = collyfetcher.New(collyfetcher.Config{
			UserAgent: a.cfg.Probe.UserAgent,
			Timeout:   a.cfg.Probe.Timeout,
		})
		a.logger.Info("reachability probe enabled", zap.Duration("timeout", a.cfg.Probe.Timeout))
	}

	a.pipeline, err = orchestrator.NewPipeline(deps, orchestrator.Config{
		JobTimeout: a.cfg.Orchestrator.JobTimeout,
		Topic:      a.cfg.Notify.Topic,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("pipeline init failed: %w", err)
	}
	a.logger.Info("pipeline ready",
		zap.Int("concurrency", a.cfg.Orchestrator.Concurrency),
		zap.Int("max_sessions", browserCfg.MaxSessions),
		zap.Duration("job_timeout", a.cfg.Orchestrator.JobTimeout),
	)
	return nil
}
