package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression
	// 초 단위 포함 6필드: "0 30 16 * * 1-5" (평일 16:30), "@daily"
	Schedule() string
}

// JobResult is one execution (or skipped tick) of a job
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory bounds the runs kept per job
const maxHistory = 100

// jobHistory keeps the last maxHistory results of one job, oldest first.
// Callers hold Scheduler.mu.
type jobHistory struct {
	results []JobResult
}

func (h *jobHistory) record(result JobResult) {
	h.results = append(h.results, result)
	if len(h.results) > maxHistory {
		h.results = h.results[len(h.results)-maxHistory:]
	}
}

// latest returns a copy of the newest n results (all when n <= 0)
func (h *jobHistory) latest(n int) []JobResult {
	if n <= 0 || n > len(h.results) {
		n = len(h.results)
	}
	out := make([]JobResult, n)
	copy(out, h.results[len(h.results)-n:])
	return out
}

// stats folds the history into counters; skipped ticks are not runs
func (h *jobHistory) stats(name, schedule string) JobStats {
	st := JobStats{JobName: name, Schedule: schedule}

	for _, r := range h.results {
		started := r.StartTime
		if r.Skipped {
			st.SkippedCount++
			continue
		}

		st.TotalRuns++
		st.LastRun = &started
		if r.Success {
			st.SuccessCount++
			st.LastSuccess = &started
		} else {
			st.FailureCount++
			st.LastFailure = &started
			st.LastError = r.Error
		}
	}

	if st.TotalRuns > 0 {
		st.SuccessRate = float64(st.SuccessCount) / float64(st.TotalRuns)
	}
	return st
}

// JobStats summarizes a job's recorded history
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	NextRun      *time.Time `json:"next_run,omitempty"`
	Running      bool       `json:"running"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SkippedCount int        `json:"skipped_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}
