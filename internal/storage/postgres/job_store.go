package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// DefaultJobsTable holds the job records.
const DefaultJobsTable = "style_jobs"

// JobStoreConfig controls table naming and record lifetime.
type JobStoreConfig struct {
	Table string
	TTL   time.Duration
}

// JobStore keeps each job as a JSONB document. Updates lock the row with
// SELECT ... FOR UPDATE inside a transaction.
type JobStore struct {
	pool  Pool
	table string
	ttl   time.Duration
	now   func() time.Time
}

// NewJobStore constructs a store from an existing pool.
func NewJobStore(pool Pool, cfg JobStoreConfig) (*JobStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table := cfg.Table
	if table == "" {
		table = DefaultJobsTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobStore{
		pool:  pool,
		table: table,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the underlying pool resources.
func (s *JobStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Create inserts job. An expired row with the same id is overwritten.
func (s *JobStore) Create(ctx context.Context, job styleguide.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	now := s.now()
	query := fmt.Sprintf(`
INSERT INTO %[1]s (id, data, expires_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
WHERE %[1]s.expires_at <= $4`, s.table)
	tag, err := s.pool.Exec(ctx, query, job.ID, payload, now.Add(s.ttl), now)
	if err != nil {
		return classify("create", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", styleguide.ErrAlreadyExists, job.ID)
	}
	return nil
}

// Update merges update into the locked row and refreshes expires_at.
func (s *JobStore) Update(ctx context.Context, jobID string, update styleguide.JobUpdate) (styleguide.Job, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return styleguide.Job{}, classify("begin", err)
	}
	now := s.now()

	var raw []byte
	selectQuery := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1 AND expires_at > $2 FOR UPDATE`, s.table)
	if err := tx.QueryRow(ctx, selectQuery, jobID, now).Scan(&raw); err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return styleguide.Job{}, fmt.Errorf("%w: %s", styleguide.ErrNotFound, jobID)
		}
		return styleguide.Job{}, classify("select for update", err)
	}
	var current styleguide.Job
	if err := json.Unmarshal(raw, &current); err != nil {
		_ = tx.Rollback(ctx)
		return styleguide.Job{}, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	next, err := styleguide.Apply(current, update)
	if err != nil {
		_ = tx.Rollback(ctx)
		return styleguide.Job{}, err
	}
	next.UpdatedAt = now
	payload, err := json.Marshal(next)
	if err != nil {
		_ = tx.Rollback(ctx)
		return styleguide.Job{}, fmt.Errorf("marshal job: %w", err)
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET data = $1, expires_at = $2, updated_at = $3 WHERE id = $4`, s.table)
	if _, err := tx.Exec(ctx, updateQuery, payload, now.Add(s.ttl), now, jobID); err != nil {
		_ = tx.Rollback(ctx)
		return styleguide.Job{}, classify("update", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return styleguide.Job{}, classify("commit", err)
	}
	return next, nil
}

// Get loads a live job.
func (s *JobStore) Get(ctx context.Context, jobID string) (styleguide.Job, error) {
	var raw []byte
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1 AND expires_at > $2`, s.table)
	if err := s.pool.QueryRow(ctx, query, jobID, s.now()).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return styleguide.Job{}, fmt.Errorf("%w: %s", styleguide.ErrNotFound, jobID)
		}
		return styleguide.Job{}, classify("get", err)
	}
	var job styleguide.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return styleguide.Job{}, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return job, nil
}

// Delete removes a job row.
func (s *JobStore) Delete(ctx context.Context, jobID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table)
	if _, err := s.pool.Exec(ctx, query, jobID); err != nil {
		return classify("delete", err)
	}
	return nil
}

// DeleteExpired removes rows past their expiry and reports how many went.
func (s *JobStore) DeleteExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= $1`, s.table)
	tag, err := s.pool.Exec(ctx, query, s.now())
	if err != nil {
		return 0, classify("delete expired", err)
	}
	return tag.RowsAffected(), nil
}
