package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/conviction-radar/internal/brain"
	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// BatchScanJobName is the registered name of the periodic scan
const BatchScanJobName = "batch_scan"

// UniverseScanner runs the batch pipeline over a universe
type UniverseScanner interface {
	ScoreUniverse(ctx context.Context, src contracts.UniverseSource, cfg brain.RunConfig) (*contracts.BatchReport, error)
}

// BatchScanJob scores the configured universe on a cron schedule
// ⭐ SSOT: 주기 스캔 스케줄은 이 Job에서만 (결과는 로그로만 남김)
type BatchScanJob struct {
	scanner  UniverseScanner
	universe contracts.UniverseSource
	schedule string
	logTop   int
	logger   *logger.Logger

	mu     sync.RWMutex
	latest *contracts.BatchReport
}

// NewBatchScanJob creates a new batch scan job
func NewBatchScanJob(scanner UniverseScanner, universe contracts.UniverseSource, schedule string, logTop int, log *logger.Logger) *BatchScanJob {
	return &BatchScanJob{
		scanner:  scanner,
		universe: universe,
		schedule: schedule,
		logTop:   logTop,
		logger:   log,
	}
}

// Name returns the job name
func (j *BatchScanJob) Name() string {
	return BatchScanJobName
}

// Schedule returns the cron schedule (with seconds)
func (j *BatchScanJob) Schedule() string {
	return j.schedule
}

// Latest returns the report of the last successful run (nil before first run)
func (j *BatchScanJob) Latest() *contracts.BatchReport {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest
}

// Run executes one scan
func (j *BatchScanJob) Run(ctx context.Context) error {
	j.logger.WithField("universe", j.universe.Name()).Info("Starting scheduled batch scan")

	report, err := j.scanner.ScoreUniverse(ctx, j.universe, brain.RunConfig{})
	if err != nil {
		return fmt.Errorf("batch scan: %w", err)
	}

	j.mu.Lock()
	j.latest = report
	j.mu.Unlock()

	j.logger.WithFields(map[string]interface{}{
		"run_id":     report.RunID,
		"total":      report.Total,
		"failed":     report.Failed,
		"candidates": len(report.Ranked),
	}).Info("Batch scan completed")

	for i, r := range report.Ranked {
		if j.logTop > 0 && i >= j.logTop {
			break
		}
		j.logger.WithFields(map[string]interface{}{
			"run_id": report.RunID,
			"rank":   r.Rank,
			"ticker": r.Symbol,
			"score":  r.Score,
		}).Info(r.Summary)
	}

	// 전부 실패 = 데이터 소스 장애 → 재시도 대상
	if report.Total > 0 && report.Failed == report.Total {
		return fmt.Errorf("batch scan: all %d tickers failed", report.Total)
	}

	return nil
}
