package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/clock/system"
	"github.com/JakeFAU/style-guide-generator/internal/config"
	"github.com/JakeFAU/style-guide-generator/internal/storage/fallback"
	localstorage "github.com/JakeFAU/style-guide-generator/internal/storage/local"
	memoryStorage "github.com/JakeFAU/style-guide-generator/internal/storage/memory"
	redisstore "github.com/JakeFAU/style-guide-generator/internal/storage/redis"
	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

func defaultConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Logging.Development = false
	cfg.Logging.Level = "error"
	return cfg
}

func TestBuildServesAPI(t *testing.T) {
	cfg := defaultConfig(t)
	ctx := context.Background()

	app, err := Build(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, app.Close(ctx)) })

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"url":"https://example.com"}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, app.queue.Len())

	doc, err := app.Render(styleguide.StyleGuideData{Meta: styleguide.Meta{Domain: "example.com"}})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestSetupJobStoreMemory(t *testing.T) {
	t.Parallel()

	app := NewApp(defaultConfig(t), zap.NewNop())
	require.NoError(t, app.setupJobStore(context.Background(), system.New()))
	_, ok := app.jobStore.(*memoryStorage.JobStore)
	require.True(t, ok)
	require.Nil(t, app.runRepo)
	require.Empty(t, app.checks)
}

func TestSetupJobStoreRedisWithFallback(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := defaultConfig(t)
	cfg.Store.Backend = "redis"
	cfg.Store.Redis.Addr = mr.Addr()

	app := NewApp(cfg, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, app.setupJobStore(ctx, system.New()))
	t.Cleanup(func() { _ = app.redisClient.Close() })

	_, ok := app.jobStore.(*fallback.JobStore)
	require.True(t, ok)
	require.NotNil(t, app.memoryJobs)
	require.Len(t, app.checks, 1)
	require.NoError(t, app.checks[0](ctx))

	require.NoError(t, app.jobStore.Create(ctx, styleguide.NewJob("job-1", "https://example.com", system.New().Now())))
	require.True(t, mr.Exists("styleguide:job:job-1"))
}

func TestSetupJobStoreRedisWithoutFallback(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := defaultConfig(t)
	cfg.Store.Backend = "redis"
	cfg.Store.Redis.Addr = mr.Addr()
	cfg.Store.Fallback = false

	app := NewApp(cfg, zap.NewNop())
	require.NoError(t, app.setupJobStore(context.Background(), system.New()))
	t.Cleanup(func() { _ = app.redisClient.Close() })

	_, ok := app.jobStore.(*redisstore.JobStore)
	require.True(t, ok)
	require.Nil(t, app.memoryJobs)
}

func TestSetupDocuments(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig(t)
	app := NewApp(cfg, zap.NewNop())
	blobs, reader, err := app.setupDocuments(context.Background())
	require.NoError(t, err)
	_, ok := blobs.(*memoryStorage.BlobStore)
	require.True(t, ok)
	require.NotNil(t, reader)

	cfg.Documents.Backend = "local"
	cfg.Documents.Dir = t.TempDir()
	app = NewApp(cfg, zap.NewNop())
	blobs, reader, err = app.setupDocuments(context.Background())
	require.NoError(t, err)
	_, ok = blobs.(*localstorage.BlobStore)
	require.True(t, ok)

	ctx := context.Background()
	uri, err := blobs.PutObject(ctx, "documents/job/abc.pdf", "application/pdf", strings.NewReader("%PDF-1.3"))
	require.NoError(t, err)
	rc, err := reader.GetObject(ctx, uri)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
}

func TestSetupPublisher(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig(t)
	app := NewApp(cfg, zap.NewNop())
	pub, err := app.setupPublisher(context.Background())
	require.NoError(t, err)
	require.Nil(t, pub)

	cfg.Notify.Backend = "memory"
	app = NewApp(cfg, zap.NewNop())
	pub, err = app.setupPublisher(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pub)

	cfg.Notify.Backend = "kafka"
	cfg.Notify.Brokers = []string{"localhost:9092"}
	app = NewApp(cfg, zap.NewNop())
	pub, err = app.setupPublisher(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pub)
	require.NotNil(t, app.kafkaPublisher)
	app.kafkaPublisher.Close()
}
