package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [ticker]",
	Short: "단일 종목 점수 계산",
	Long: `한 종목의 Conviction Score를 계산합니다.

출력:
- 종목명, 거래소, "Conviction Score: N/100"
- 발동한 신호 요약 (Signals: ...)
- Why flagged: 규칙/관측/AI thesis

Example:
  go run ./cmd/radar score AAPL
  go run ./cmd/radar score KOTAKBANK.NS --thesis
  go run ./cmd/radar score NVDA --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var (
	scoreThesis bool
	scoreJSON   bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	// Flags
	scoreCmd.Flags().BoolVar(&scoreThesis, "thesis", false, "AI thesis 생성 (THESIS_PROVIDER 필요)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "JSON 출력")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	warnNoThesisProvider(cmd.ErrOrStderr(), scoreThesis, a.orchestrator.ThesisEnabled())

	result, err := a.orchestrator.ScoreTicker(ctx, args[0], scoreThesis)
	if err != nil {
		return fmt.Errorf("score %s: %w", args[0], err)
	}

	if scoreJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	renderScore(cmd.OutOrStdout(), result)
	return nil
}
