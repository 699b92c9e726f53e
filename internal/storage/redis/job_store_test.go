package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

func newTestStore(t *testing.T, ttl time.Duration) (*JobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store, err := New(client, Config{TTL: ttl})
	require.NoError(t, err)
	return store, mr
}

func TestJobStoreLifecycle(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	job := styleguide.NewJob("job-1", "https://example.com", time.Unix(1700000000, 0).UTC())

	require.NoError(t, store.Create(ctx, job))
	require.ErrorIs(t, store.Create(ctx, job), styleguide.ErrAlreadyExists)
	require.True(t, mr.Exists("styleguide:job:job-1"))

	got, err := store.Update(ctx, job.ID, styleguide.StatusUpdate(styleguide.StatusExtractingColors))
	require.NoError(t, err)
	require.Equal(t, styleguide.StatusExtractingColors, got.Status)
	require.Equal(t, 30, got.Progress)
	require.Equal(t, job.URL, got.URL)

	raw, err := mr.Get("styleguide:job:job-1")
	require.NoError(t, err)
	var stored styleguide.Job
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Equal(t, "extracting_colors", string(stored.Status))

	_, err = store.Update(ctx, job.ID, styleguide.StatusUpdate(styleguide.StatusFetching))
	require.ErrorIs(t, err, styleguide.ErrInvalidTransition)

	fetched, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, 30, fetched.Progress)

	require.NoError(t, store.Delete(ctx, job.ID))
	_, err = store.Get(ctx, job.ID)
	require.ErrorIs(t, err, styleguide.ErrNotFound)
	_, err = store.Update(ctx, job.ID, styleguide.StatusUpdate(styleguide.StatusFetching))
	require.ErrorIs(t, err, styleguide.ErrNotFound)
}

func TestJobStoreTTL(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, styleguide.NewJob("job-1", "https://example.com", time.Now())))
	require.Equal(t, time.Hour, mr.TTL("styleguide:job:job-1"))

	mr.FastForward(50 * time.Minute)
	_, err := store.Update(ctx, "job-1", styleguide.StatusUpdate(styleguide.StatusFetching))
	require.NoError(t, err)
	require.Equal(t, time.Hour, mr.TTL("styleguide:job:job-1"))

	mr.FastForward(61 * time.Minute)
	_, err = store.Get(ctx, "job-1")
	require.ErrorIs(t, err, styleguide.ErrNotFound)
}

func TestJobStoreConcurrentUpdates(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, styleguide.NewJob("job-1", "https://example.com", time.Now())))

	var wg sync.WaitGroup
	for _, p := range []int{10, 20, 30, 40, 50} {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			_, _ = store.Update(ctx, "job-1", styleguide.JobUpdate{Progress: &p})
		}(p)
	}
	wg.Wait()

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, 50, got.Progress)
}

func TestJobStoreUnavailable(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, time.Hour)
	mr.Close()
	ctx := context.Background()

	err := store.Create(ctx, styleguide.NewJob("job-1", "https://example.com", time.Now()))
	require.True(t, errors.Is(err, styleguide.ErrUnavailable), err)
	_, err = store.Get(ctx, "job-1")
	require.ErrorIs(t, err, styleguide.ErrUnavailable)
	require.ErrorIs(t, store.Ping(ctx), styleguide.ErrUnavailable)
}

func TestJobStoreCustomNamespace(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()
	store, err := New(client, Config{Namespace: "tenant-a"})
	require.NoError(t, err)
	require.Equal(t, "tenant-a:job:abc", store.Key("abc"))

	_, err = New(nil, Config{})
	require.Error(t, err)
}
