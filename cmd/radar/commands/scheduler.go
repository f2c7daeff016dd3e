package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/conviction-radar/internal/scheduler"
	"github.com/wonny/conviction-radar/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `주기 배치 스캔 스케줄러를 시작하거나 즉시 실행합니다.

Subcommands:
  start   - 스케줄러 시작 (SCAN_SCHEDULE)
  run     - batch_scan 즉시 1회 실행

Example:
  go run ./cmd/radar scheduler start
  go run ./cmd/radar scheduler run`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 batch_scan 작업을 등록합니다.

등록되는 작업:
- batch_scan: SCAN_SCHEDULE (기본 평일 16:30, 초 포함 6필드)

결과는 로그로만 남습니다. Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run",
		Short: "batch_scan 즉시 실행",
		RunE:  runJobOnce,
	}
)

var (
	schedulerUniverse string
	schedulerLogTop   int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerUniverse, "universe", "", "universe 소스 (기본: UNIVERSE_SOURCE)")
	schedulerCmd.PersistentFlags().IntVar(&schedulerLogTop, "log-top", 10, "로그에 남길 상위 종목 수 (0 = 전부)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fmt.Println("=== Conviction Radar Scheduler ===")

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Printf("  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")
	printJobStats(sched)

	return nil
}

func runJobOnce(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	// Ctrl+C → 실행 중인 스캔 취소
	go func() {
		<-cmd.Context().Done()
		sched.Stop()
	}()

	result, err := sched.RunJobSync(jobs.BatchScanJobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("%s failed: %s", result.JobName, result.Error)
	}

	fmt.Printf("✅ %s completed in %.2fs (attempts: %d)\n", result.JobName, result.Duration.Seconds(), result.Attempts)
	return nil
}

func initScheduler(cmd *cobra.Command) (*app, *scheduler.Scheduler, error) {
	a, err := bootstrap(cmd.Context(), appOptions{needDB: schedulerUniverse == "watchlist"})
	if err != nil {
		return nil, nil, err
	}

	sched, err := newScheduler(a, schedulerUniverse)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, sched, nil
}

// newScheduler registers batch_scan over the named universe ("" → UNIVERSE_SOURCE)
func newScheduler(a *app, universe string) (*scheduler.Scheduler, error) {
	src, err := a.universe(universe)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(a.log, scheduler.WithRetry(1, 5*time.Minute))

	// Register jobs
	job := jobs.NewBatchScanJob(a.orchestrator, src, a.cfg.ScanSchedule, schedulerLogTop, a.log)
	if err := sched.AddJob(job); err != nil {
		return nil, err
	}
	return sched, nil
}

// printJobStats summarizes each job's runs since start
func printJobStats(sched *scheduler.Scheduler) {
	stats := sched.Stats()
	for _, name := range sched.GetAllJobs() {
		st := stats[name]
		fmt.Printf("  - %s: %d runs (%d ok, %d failed, %d skipped)\n",
			name, st.TotalRuns, st.SuccessCount, st.FailureCount, st.SkippedCount)
		if st.LastError != "" {
			fmt.Printf("    last error: %s\n", st.LastError)
		}
	}
}
