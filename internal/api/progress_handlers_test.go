package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/style-guide-generator/internal/store"
)

func TestProgressHandlerListRuns(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	repo := &mockRunRepo{
		runs: []store.JobRun{{
			JobID:     jobID,
			URL:       "https://example.com",
			Site:      "example.com",
			Status:    store.RunSuccess,
			StartedAt: time.Now().Add(-time.Hour),
			Colors:    12,
		}},
	}
	handler := NewProgressHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/runs?status=completed&limit=1000&offset=5", nil)
	rec := httptest.NewRecorder()
	handler.ListRuns(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Runs []runDTO `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	require.Equal(t, jobID.String(), body.Runs[0].JobID)
	require.Equal(t, 12, body.Runs[0].Colors)

	require.NotNil(t, repo.lastStatus)
	require.Equal(t, store.RunSuccess, *repo.lastStatus)
	require.Equal(t, maxRunLimit, repo.lastLimit)
	require.Equal(t, 5, repo.lastOffset)
}

func TestProgressHandlerListRunsBadQuery(t *testing.T) {
	t.Parallel()

	handler := NewProgressHandler(&mockRunRepo{}, zap.NewNop())
	for _, target := range []string{"/api/runs?limit=-1", "/api/runs?offset=x", "/api/runs?status=weird"} {
		rec := httptest.NewRecorder()
		handler.ListRuns(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestProgressHandlerListRunsRepoError(t *testing.T) {
	t.Parallel()

	handler := NewProgressHandler(&mockRunRepo{err: errors.New("boom")}, zap.NewNop())
	rec := httptest.NewRecorder()
	handler.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProgressHandlerGetRun(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	finished := time.Now()
	msg := "navigation failed"
	repo := &mockRunRepo{runs: []store.JobRun{{
		JobID:        jobID,
		Status:       store.RunError,
		StartedAt:    finished.Add(-time.Minute),
		FinishedAt:   &finished,
		ErrorMessage: &msg,
	}}}
	handler := NewProgressHandler(repo, zap.NewNop())

	req := withJobIDParam(httptest.NewRequest(http.MethodGet, "/api/runs/"+jobID.String(), nil), jobID.String())
	rec := httptest.NewRecorder()
	handler.GetRun(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Run runDTO `json:"run"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "error", body.Run.Status)
	require.NotNil(t, body.Run.Error)
	require.Equal(t, msg, *body.Run.Error)
}

func TestProgressHandlerGetRunNotFound(t *testing.T) {
	t.Parallel()

	handler := NewProgressHandler(&mockRunRepo{err: store.ErrNotFound}, zap.NewNop())
	jobID := uuid.New()
	req := withJobIDParam(httptest.NewRequest(http.MethodGet, "/api/runs/"+jobID.String(), nil), jobID.String())
	rec := httptest.NewRecorder()

	handler.GetRun(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgressHandlerGetRunInvalidID(t *testing.T) {
	t.Parallel()

	handler := NewProgressHandler(&mockRunRepo{}, zap.NewNop())
	req := withJobIDParam(httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil), "nope")
	rec := httptest.NewRecorder()

	handler.GetRun(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressHandlerWithoutRepo(t *testing.T) {
	t.Parallel()

	handler := NewProgressHandler(nil, nil)
	rec := httptest.NewRecorder()
	handler.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	handler.GetRun(rec, httptest.NewRequest(http.MethodGet, "/api/runs/x", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type mockRunRepo struct {
	runs []store.JobRun
	err  error

	lastStatus *store.RunStatus
	lastLimit  int
	lastOffset int
}

func (m *mockRunRepo) UpsertRunStart(context.Context, uuid.UUID, string, string, time.Time) error {
	return m.err
}

func (m *mockRunRepo) CompleteRun(context.Context, uuid.UUID, time.Time, store.RunStatus, *string) error {
	return m.err
}

func (m *mockRunRepo) RecordHarvest(context.Context, uuid.UUID, int, int) error {
	return m.err
}

func (m *mockRunRepo) RecordSteps(context.Context, []store.StepTiming) error {
	return m.err
}

func (m *mockRunRepo) GetRun(context.Context, uuid.UUID) (store.JobRun, error) {
	if len(m.runs) > 0 {
		return m.runs[0], nil
	}
	return store.JobRun{}, m.err
}

func (m *mockRunRepo) ListRuns(_ context.Context, status *store.RunStatus, limit, offset int) ([]store.JobRun, error) {
	m.lastStatus = status
	m.lastLimit = limit
	m.lastOffset = offset
	return m.runs, m.err
}

func withJobIDParam(r *http.Request, jobID string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("job_id", jobID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, ctx))
}
