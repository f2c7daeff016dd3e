package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/conviction-radar/internal/api/handlers"
	"github.com/wonny/conviction-radar/internal/brain"
	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/internal/scheduler"
	"github.com/wonny/conviction-radar/pkg/database"
	"github.com/wonny/conviction-radar/pkg/logger"
)

type stubHealth struct {
	err error
}

func (s stubHealth) HealthCheck(context.Context) (*database.HealthStatus, error) {
	if s.err != nil {
		return &database.HealthStatus{Error: s.err.Error()}, s.err
	}
	return &database.HealthStatus{Healthy: true}, nil
}

type stubSource struct{}

func (stubSource) Name() string { return "default" }

func (stubSource) Tickers(context.Context) ([]string, error) { return []string{"AAPL"}, nil }

type stubPipeline struct{}

func (stubPipeline) ScoreTicker(_ context.Context, symbol string, _ bool) (*contracts.ScoreResult, error) {
	return &contracts.ScoreResult{Symbol: symbol, Score: 10}, nil
}

func (stubPipeline) ScoreBatch(_ context.Context, tickers []string, _ brain.RunConfig) (*contracts.BatchReport, error) {
	return &contracts.BatchReport{Total: len(tickers)}, nil
}

func (stubPipeline) ScoreUniverse(context.Context, contracts.UniverseSource, brain.RunConfig) (*contracts.BatchReport, error) {
	return &contracts.BatchReport{}, nil
}

func (stubPipeline) ThesisEnabled() bool { return false }

func newTestRouter(db HealthChecker) http.Handler {
	universes := map[string]contracts.UniverseSource{"default": stubSource{}}
	h := handlers.NewScoreHandler(stubPipeline{}, universes, "default", logger.Nop())
	return NewRouter(h, nil, db, logger.Nop())
}

type scanJob struct {
	runs atomic.Int32
}

func (j *scanJob) Name() string     { return "batch_scan" }
func (j *scanJob) Schedule() string { return "0 30 16 * * 1-5" }

func (j *scanJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return nil
}

func TestSchedulerRoutes(t *testing.T) {
	sched := scheduler.New(logger.Nop())
	job := &scanJob{}
	require.NoError(t, sched.AddJob(job))

	universes := map[string]contracts.UniverseSource{"default": stubSource{}}
	score := handlers.NewScoreHandler(stubPipeline{}, universes, "default", logger.Nop())
	router := NewRouter(score, handlers.NewSchedulerHandler(sched, logger.Nop()), nil, logger.Nop())

	serve := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusNotFound, serve(http.MethodPost, "/api/scheduler/jobs/nope/run").Code)
	assert.Equal(t, http.StatusAccepted, serve(http.MethodPost, "/api/scheduler/jobs/batch_scan/run").Code)
	require.Eventually(t, func() bool {
		return sched.Stats()["batch_scan"].TotalRuns == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())

	rec := serve(http.MethodGet, "/api/scheduler/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Jobs []scheduler.JobStats `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, 1, list.Jobs[0].SuccessCount)

	rec = serve(http.MethodGet, "/api/scheduler/jobs/batch_scan/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	// scheduler 미사용 시 엔드포인트 없음
	rec = httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/jobs", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         HealthChecker
		wantStatus int
		wantBody   string
	}{
		{"no database", nil, http.StatusOK, "ok"},
		{"database ok", stubHealth{}, http.StatusOK, "ok"},
		{"database down", stubHealth{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestRouter(tt.db).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
			if tt.db != nil {
				assert.Contains(t, body, "database")
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/api/score/AAPL", http.StatusOK},
		{http.MethodPost, "/api/batch", http.StatusOK},
		{http.MethodGet, "/api/batch", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	router := newTestRouter(nil)
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/batch", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
