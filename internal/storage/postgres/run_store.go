package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/style-guide-generator/internal/store"
)

// RunStore implements the store.RunRepository interface using Postgres.
type RunStore struct {
	pool Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool Pool) (*RunStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &RunStore{pool: pool}, nil
}

// UpsertRunStart inserts or refreshes a run's start row.
func (s *RunStore) UpsertRunStart(ctx context.Context, jobID uuid.UUID, url, site string, startedAt time.Time) error {
	query := `
		INSERT INTO job_runs (job_id, url, site, started_at, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id) DO UPDATE
		SET status = EXCLUDED.status
		WHERE job_runs.status <> EXCLUDED.status;
	`
	_, err := s.pool.Exec(ctx, query, jobID, url, site, startedAt, store.RunRunning)
	if err != nil {
		return fmt.Errorf("failed to upsert run start: %w", err)
	}
	return nil
}

// CompleteRun marks a run as finished with a status and optional error message.
func (s *RunStore) CompleteRun(
	ctx context.Context,
	jobID uuid.UUID,
	finishedAt time.Time,
	status store.RunStatus,
	errMsg *string,
) error {
	query := `
		UPDATE job_runs
		SET finished_at = $1, status = $2, error_message = $3
		WHERE job_id = $4;
	`
	_, err := s.pool.Exec(ctx, query, finishedAt, status, errMsg, jobID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// RecordHarvest stores harvest volume for a run.
func (s *RunStore) RecordHarvest(ctx context.Context, jobID uuid.UUID, colors, skippedSheets int) error {
	query := `UPDATE job_runs SET colors = $1, skipped_sheets = $2 WHERE job_id = $3;`
	if _, err := s.pool.Exec(ctx, query, colors, skippedSheets, jobID); err != nil {
		return fmt.Errorf("failed to record harvest: %w", err)
	}
	return nil
}

// RecordSteps bulk-loads step timings with COPY.
func (s *RunStore) RecordSteps(ctx context.Context, steps []store.StepTiming) error {
	if len(steps) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(steps))
	for _, st := range steps {
		rows = append(rows, []any{st.JobID, st.Step, st.FinishedAt, st.Duration.Milliseconds()})
	}
	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"job_steps"},
		[]string{"job_id", "step", "finished_at", "duration_ms"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy steps: %w", err)
	}
	return nil
}

const runColumns = `job_id, url, site, started_at, finished_at, status, error_message, colors, skipped_sheets`

// GetRun retrieves a single run by job ID.
func (s *RunStore) GetRun(ctx context.Context, jobID uuid.UUID) (store.JobRun, error) {
	query := `SELECT ` + runColumns + ` FROM job_runs WHERE job_id = $1;`
	run, err := scanRun(s.pool.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.JobRun{}, store.ErrNotFound
		}
		return store.JobRun{}, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves runs, newest first, with optional status filtering.
func (s *RunStore) ListRuns(
	ctx context.Context,
	status *store.RunStatus,
	limit,
	offset int,
) ([]store.JobRun, error) {
	query := `SELECT ` + runColumns + `
		FROM job_runs
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := s.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.JobRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (store.JobRun, error) {
	var run store.JobRun
	err := row.Scan(
		&run.JobID,
		&run.URL,
		&run.Site,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Status,
		&run.ErrorMessage,
		&run.Colors,
		&run.SkippedSheets,
	)
	return run, err
}
