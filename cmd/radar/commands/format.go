package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/conviction-radar/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderScore prints a single-ticker result
func renderScore(w io.Writer, r *contracts.ScoreResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s (%s)\n", displayName(r), r.Symbol)
	fmt.Fprintln(w, singleLine)
	printKeyValue(w, "Exchange", orDash(r.Exchange), 8)
	if r.Sector != "" || r.Industry != "" {
		printKeyValue(w, "Sector", strings.Trim(r.Sector+" / "+r.Industry, " /"), 8)
	}
	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "  Conviction Score: %d/100\n", r.Score)
	fmt.Fprintf(w, "  %s\n", r.Summary)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Why flagged:")
	fmt.Fprintln(w, r.Explanation)
	fmt.Fprintln(w, doubleLine)
}

// renderBatch prints the ranked table and failures
func renderBatch(w io.Writer, report *contracts.BatchReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintln(w, "  Top Undervalued Picks")
	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "  Run ID  : %s\n", report.RunID)
	fmt.Fprintf(w, "  Scanned : %d (failed %d)\n", report.Total, report.Failed)
	fmt.Fprintln(w, singleLine)

	if len(report.Ranked) == 0 {
		fmt.Fprintln(w, "  No candidates (every score was 0)")
	} else {
		widths := []int{4, 14, 28, 5}
		printTableHeader(w, []string{"#", "Ticker", "Name", "Score"}, widths)
		for _, r := range report.Ranked {
			printTableRow(w, []string{
				fmt.Sprintf("%d", r.Rank),
				r.Symbol,
				truncate(displayName(&r), widths[2]),
				fmt.Sprintf("%d", r.Score),
			}, widths)
			fmt.Fprintf(w, "      %s\n", r.Summary)
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "⚠️  %d ticker(s) failed:\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(w, "   • %s: %s\n", e.Symbol, e.Error)
		}
	}
	fmt.Fprintln(w, doubleLine)
}

// printTableHeader prints a table header
func printTableHeader(w io.Writer, columns []string, widths []int) {
	printTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, "  "+strings.Repeat("─", totalWidth))
}

// printTableRow prints a table row
func printTableRow(w io.Writer, values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		cells[i] = fmt.Sprintf("%-*s", widths[i], val)
	}
	fmt.Fprintln(w, "  "+strings.TrimRight(strings.Join(cells, "  "), " "))
}

// printKeyValue prints key-value pairs
func printKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "  %-*s : %s\n", keyWidth, key, value)
}

func displayName(r *contracts.ScoreResult) string {
	if r.Name != "" {
		return r.Name
	}
	return r.Symbol
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// warnNoThesisProvider tells the user a requested thesis will be the placeholder
func warnNoThesisProvider(w io.Writer, requested, enabled bool) bool {
	if !requested || enabled {
		return false
	}
	fmt.Fprintln(w, "⚠️  No thesis provider configured (THESIS_PROVIDER): thesis will be a placeholder")
	return true
}
