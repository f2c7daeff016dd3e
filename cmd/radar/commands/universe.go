package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/conviction-radar/internal/s0_data"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Universe 조회 및 watchlist 관리",
	Long: `배치 스캔 대상 종목을 조회하거나 Postgres watchlist를 관리합니다.

Subcommands:
  list    - universe 종목 출력
  add     - watchlist에 종목 추가 (DATABASE_URL 필요)
  remove  - watchlist에서 종목 제거 (DATABASE_URL 필요)

Example:
  go run ./cmd/radar universe list --universe sp500
  go run ./cmd/radar universe add AAPL INFY.NS --note "earnings dip"
  go run ./cmd/radar universe remove AAPL`,
}

var (
	universeListCmd = &cobra.Command{
		Use:   "list",
		Short: "universe 종목 출력",
		RunE:  listUniverse,
	}

	universeAddCmd = &cobra.Command{
		Use:   "add [ticker...]",
		Short: "watchlist에 종목 추가",
		Args:  cobra.MinimumNArgs(1),
		RunE:  addWatchlist,
	}

	universeRemoveCmd = &cobra.Command{
		Use:   "remove [ticker...]",
		Short: "watchlist에서 종목 제거",
		Args:  cobra.MinimumNArgs(1),
		RunE:  removeWatchlist,
	}
)

var (
	universeName string
	watchNote    string
)

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeListCmd)
	universeCmd.AddCommand(universeAddCmd)
	universeCmd.AddCommand(universeRemoveCmd)

	universeListCmd.Flags().StringVar(&universeName, "universe", "", "universe 소스 (기본: UNIVERSE_SOURCE)")
	universeAddCmd.Flags().StringVar(&watchNote, "note", "", "메모")
}

func listUniverse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx, appOptions{needDB: universeName == "watchlist"})
	if err != nil {
		return err
	}
	defer a.Close()

	src, err := a.universe(universeName)
	if err != nil {
		return err
	}

	tickers, err := src.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("load universe %s: %w", src.Name(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d tickers)\n", src.Name(), len(tickers))
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tickers, "\n"))
	return nil
}

func addWatchlist(cmd *cobra.Command, args []string) error {
	return withWatchlist(cmd, func(repo *s0_data.WatchlistRepository) error {
		n, err := repo.Add(cmd.Context(), watchNote, args...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %d ticker(s) to watchlist\n", n)
		return nil
	})
}

func removeWatchlist(cmd *cobra.Command, args []string) error {
	return withWatchlist(cmd, func(repo *s0_data.WatchlistRepository) error {
		n, err := repo.Remove(cmd.Context(), args...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed %d ticker(s) from watchlist\n", n)
		return nil
	})
}

func withWatchlist(cmd *cobra.Command, fn func(*s0_data.WatchlistRepository) error) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx, appOptions{needDB: true})
	if err != nil {
		return err
	}
	defer a.Close()

	repo := s0_data.NewWatchlistRepository(a.db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure watchlist schema: %w", err)
	}

	return fn(repo)
}
