package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose  bool
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Conviction Radar - 저평가 종목 스캐너",
	Long: `Conviction Radar CLI

Yahoo Finance 데이터로 US/인도 종목을 점수화합니다.
S0 데이터 → S1 지표 → S2 규칙 점수 → S3 랭킹.

Usage:
  go run ./cmd/radar [command]

Examples:
  go run ./cmd/radar score AAPL
  go run ./cmd/radar score KOTAKBANK.NS --thesis
  go run ./cmd/radar batch --top 10
  go run ./cmd/radar api
  go run ./cmd/radar scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C cancels the command context so in-flight fetches stop
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "로그 레벨 (debug|info|warn|error), LOG_LEVEL 대신 사용")
}
