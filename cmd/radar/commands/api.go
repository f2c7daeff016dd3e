package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/conviction-radar/internal/api"
	"github.com/wonny/conviction-radar/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                         - Health check
  GET  /api/score/{ticker}?thesis=true - 단일 종목 점수
  POST /api/batch                      - 배치 스캔 + 랭킹
  GET  /ws/batch                       - 배치 진행 상황 스트리밍 (websocket)

With --scheduler:
  GET  /api/scheduler/jobs                - 작업별 실행 통계
  GET  /api/scheduler/jobs/{name}/history - 최근 실행 결과
  POST /api/scheduler/jobs/{name}/run     - 즉시 실행 (비동기, 202)

Example:
  go run ./cmd/radar api
  go run ./cmd/radar api --port 8080 --scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "scheduler", false, "batch_scan 스케줄러를 함께 실행하고 /api/scheduler 엔드포인트 노출")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fmt.Println("=== Conviction Radar API Server ===")

	a, err := bootstrap(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":      a.cfg.Port,
		"env":       a.cfg.Env,
		"universe":  a.cfg.Batch.UniverseSource,
		"scheduler": apiWithScheduler,
		"thesis":    a.orchestrator.ThesisEnabled(),
	}).Info("Initializing API server")

	// Create handlers + router
	scoreHandler := handlers.NewScoreHandler(a.orchestrator, a.universes(), a.cfg.Batch.UniverseSource, a.log)

	var jobsHandler *handlers.SchedulerHandler
	if apiWithScheduler {
		sched, err := newScheduler(a, a.cfg.Batch.UniverseSource)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		jobsHandler = handlers.NewSchedulerHandler(sched, a.log)
	}

	var health api.HealthChecker
	if a.db != nil {
		health = a.db
	}
	router := api.NewRouter(scoreHandler, jobsHandler, health, a.log)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/score/{ticker}")
	fmt.Println("  POST /api/batch")
	fmt.Println("  GET  /ws/batch")
	if jobsHandler != nil {
		fmt.Println("  GET  /api/scheduler/jobs")
		fmt.Println("  GET  /api/scheduler/jobs/{name}/history")
		fmt.Println("  POST /api/scheduler/jobs/{name}/run")
	}
	if !a.orchestrator.ThesisEnabled() {
		fmt.Println("\n⚠️  No thesis provider configured: thesis requests get a placeholder")
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Blocks until Ctrl+C (root context), then drains
	if err := api.New(a.cfg, a.log, router).Run(ctx); err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
