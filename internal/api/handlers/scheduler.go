package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/conviction-radar/internal/scheduler"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// JobControl is the slice of the scheduler the API exposes
type JobControl interface {
	Stats() map[string]scheduler.JobStats
	History(jobName string, limit int) ([]scheduler.JobResult, error)
	RunJob(jobName string) error
}

// SchedulerHandler handles scheduler inspection requests
type SchedulerHandler struct {
	jobs   JobControl
	logger *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(jobs JobControl, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{jobs: jobs, logger: log}
}

// ListJobs handles GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	stats := h.jobs.Stats()

	out := make([]scheduler.JobStats, 0, len(stats))
	for _, st := range stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobName < out[j].JobName })

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": out,
	})
}

// GetHistory handles GET /api/scheduler/jobs/{name}/history?limit=20
func (h *SchedulerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	results, err := h.jobs.History(name, limit)
	if err != nil {
		h.respondJobError(w, name, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":     name,
		"results": results,
	})
}

// TriggerJob handles POST /api/scheduler/jobs/{name}/run
// 비동기 실행 → 202, 결과는 history로 확인
func (h *SchedulerHandler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.jobs.RunJob(name); err != nil {
		h.respondJobError(w, name, err)
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}

func (h *SchedulerHandler) respondJobError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, scheduler.ErrJobNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.WithError(err).WithField("job", name).Error("Scheduler request failed")
	respondError(w, http.StatusInternalServerError, "scheduler request failed")
}
