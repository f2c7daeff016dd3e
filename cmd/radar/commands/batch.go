package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/conviction-radar/internal/brain"
	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/internal/s0_data"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Universe 배치 스캔 + 랭킹",
	Long: `여러 종목을 병렬로 점수화하고 상위 종목을 출력합니다.

Universe:
  default   - 내장 US + India 목록
  file      - UNIVERSE_FILE (YAML)
  sp500     - Wikipedia S&P 500 구성 종목
  watchlist - Postgres watchlist 테이블

Example:
  go run ./cmd/radar batch
  go run ./cmd/radar batch --universe sp500 --top 10
  go run ./cmd/radar batch --tickers AAPL,MSFT,INFY.NS --json`,
	RunE: runBatch,
}

var (
	batchTickers  []string
	batchUniverse string
	batchThesis   bool
	batchJSON     bool
	batchTop      int
)

func init() {
	rootCmd.AddCommand(batchCmd)

	// Flags
	batchCmd.Flags().StringSliceVar(&batchTickers, "tickers", nil, "쉼표 구분 종목 (universe 대신 사용)")
	batchCmd.Flags().StringVar(&batchUniverse, "universe", "", "universe 소스 (기본: UNIVERSE_SOURCE)")
	batchCmd.Flags().BoolVar(&batchThesis, "thesis", false, "배치에서도 AI thesis 생성")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "JSON 출력")
	batchCmd.Flags().IntVar(&batchTop, "top", 0, "상위 N개 (기본: BATCH_TOP_N)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx, appOptions{needDB: batchUniverse == "watchlist", topN: batchTop})
	if err != nil {
		return err
	}
	defer a.Close()

	runCfg := brain.RunConfig{}
	withThesis := a.cfg.Batch.Thesis
	if cmd.Flags().Changed("thesis") {
		runCfg.Thesis = &batchThesis
		withThesis = batchThesis
	}
	warnNoThesisProvider(cmd.ErrOrStderr(), withThesis, a.orchestrator.ThesisEnabled())
	if !batchJSON {
		runCfg.Progress = func(done, total int, entry contracts.BatchEntry) {
			status := "ok"
			if entry.Failed() {
				status = "failed"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "[Batch] %s %s [%d/%d]\n", entry.Symbol, status, done, total)
		}
	}

	var report *contracts.BatchReport
	if len(batchTickers) > 0 {
		report, err = a.orchestrator.ScoreBatch(ctx, s0_data.NormalizeTickers(batchTickers), runCfg)
	} else {
		src, uerr := a.universe(batchUniverse)
		if uerr != nil {
			return uerr
		}
		report, err = a.orchestrator.ScoreUniverse(ctx, src, runCfg)
	}
	if err != nil {
		return fmt.Errorf("batch scan: %w", err)
	}

	if batchJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	renderBatch(cmd.OutOrStdout(), report)
	return nil
}
