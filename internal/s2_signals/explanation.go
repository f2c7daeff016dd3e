package s2_signals

import "strings"

// LowScoreThreshold is the score under which the fallback line is added
const LowScoreThreshold = 40

// FallbackLine is appended for low-conviction results
const FallbackLine = "No major valuation anomaly or sharp drop detected (mild opportunity)."

// ThesisLabel prefixes the external narrative block
const ThesisLabel = "AI Thesis: "

// Compose renders the explanation text
// ⭐ SSOT: 설명 문구 순서는 여기서만
//
// Order: triggered rules, technical observations, low-score fallback,
// then the narrative verbatim (no parsing).
func Compose(ev Evaluation, obs []Observation, narrative *string) string {
	lines := make([]string, 0, len(ev.Triggered)+len(obs)+1)

	for _, t := range ev.Triggered {
		lines = append(lines, t.Line)
	}
	for _, o := range obs {
		lines = append(lines, o.Text)
	}
	if ev.Score < LowScoreThreshold {
		lines = append(lines, FallbackLine)
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(line)
	}

	if narrative != nil {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(ThesisLabel)
		b.WriteString(*narrative)
	}

	return b.String()
}
