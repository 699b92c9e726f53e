// Package redis provides a Redis-backed JobStore.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Defaults for Config.
const (
	DefaultNamespace  = "styleguide"
	DefaultTTL        = 24 * time.Hour
	DefaultMaxRetries = 10
)

// Config controls key layout and optimistic-lock retries.
type Config struct {
	Namespace  string
	TTL        time.Duration
	MaxRetries int
}

// JobStore keeps each job as a JSON value under <namespace>:job:<id>. Updates
// run as WATCH/MULTI transactions and are retried when the key changes
// underneath them.
type JobStore struct {
	client     goredis.UniversalClient
	namespace  string
	ttl        time.Duration
	maxRetries int
	now        func() time.Time
}

// New wraps an existing client.
func New(client goredis.UniversalClient, cfg Config) (*JobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &JobStore{
		client:     client,
		namespace:  cfg.Namespace,
		ttl:        cfg.TTL,
		maxRetries: cfg.MaxRetries,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Key returns the Redis key for jobID.
func (s *JobStore) Key(jobID string) string {
	return fmt.Sprintf("%s:job:%s", s.namespace, jobID)
}

// Ping reports whether the server is reachable.
func (s *JobStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Create stores job with SET NX so an existing live job is never replaced.
func (s *JobStore) Create(ctx context.Context, job styleguide.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.Key(job.ID), payload, s.ttl).Result()
	if err != nil {
		return unavailable("create", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", styleguide.ErrAlreadyExists, job.ID)
	}
	return nil
}

// Update merges update into the stored job and refreshes the TTL.
func (s *JobStore) Update(ctx context.Context, jobID string, update styleguide.JobUpdate) (styleguide.Job, error) {
	key := s.Key(jobID)
	var merged styleguide.Job

	txf := func(tx *goredis.Tx) error {
		current, err := decode(tx.Get(ctx, key).Bytes())
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return fmt.Errorf("%w: %s", styleguide.ErrNotFound, jobID)
			}
			return err
		}
		next, err := styleguide.Apply(current, update)
		if err != nil {
			return err
		}
		next.UpdatedAt = s.now()
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal job: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		merged = next
		return nil
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return merged, nil
		case errors.Is(err, goredis.TxFailedErr):
			continue
		case isDomainErr(err):
			return styleguide.Job{}, err
		default:
			return styleguide.Job{}, unavailable("update", err)
		}
	}
	return styleguide.Job{}, fmt.Errorf("update %s: too much contention after %d attempts", jobID, s.maxRetries)
}

// Get fetches a job by ID.
func (s *JobStore) Get(ctx context.Context, jobID string) (styleguide.Job, error) {
	job, err := decode(s.client.Get(ctx, s.Key(jobID)).Bytes())
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return styleguide.Job{}, fmt.Errorf("%w: %s", styleguide.ErrNotFound, jobID)
		}
		if isDomainErr(err) {
			return styleguide.Job{}, err
		}
		return styleguide.Job{}, unavailable("get", err)
	}
	return job, nil
}

// Delete removes a job.
func (s *JobStore) Delete(ctx context.Context, jobID string) error {
	if err := s.client.Del(ctx, s.Key(jobID)).Err(); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *JobStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

var errCorrupt = errors.New("corrupt job record")

func decode(raw []byte, err error) (styleguide.Job, error) {
	if err != nil {
		return styleguide.Job{}, err
	}
	var job styleguide.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return styleguide.Job{}, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	return job, nil
}

func isDomainErr(err error) bool {
	return errors.Is(err, styleguide.ErrNotFound) ||
		errors.Is(err, styleguide.ErrInvalidTransition) ||
		errors.Is(err, errCorrupt)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: redis %s: %w", styleguide.ErrUnavailable, op, err)
}
