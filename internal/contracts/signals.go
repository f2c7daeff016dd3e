package contracts

import "strings"

// ScoreResult is the per-ticker output of the scoring pipeline
// ⭐ SSOT: S2 → S3/표시 계층 결과 전달
type ScoreResult struct {
	Symbol   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`

	// 점수 (0 ~ 100+)
	Score   int      `json:"score"`
	Rank    int      `json:"rank,omitempty"` // batch 모드에서만 (1-based)
	Reasons []string `json:"reasons"`
	Summary string   `json:"summary"`

	Explanation  string   `json:"explanation"`
	Observations []string `json:"observations"`

	// 원본 데이터
	Fundamentals Fundamentals `json:"fundamentals"`
	Indicators   IndicatorSet `json:"indicators"`

	// AI thesis (optional)
	Thesis *string `json:"thesis,omitempty"`
}

// HasThesis reports whether a narrative block is attached
func (r *ScoreResult) HasThesis() bool {
	return r.Thesis != nil && strings.TrimSpace(*r.Thesis) != ""
}

// IsCandidate reports whether the result is eligible for batch ranking
func (r *ScoreResult) IsCandidate() bool {
	return r.Score > 0
}

// Clone returns a copy that shares no slices with r
func (r ScoreResult) Clone() ScoreResult {
	out := r
	out.Reasons = append([]string(nil), r.Reasons...)
	out.Observations = append([]string(nil), r.Observations...)
	if r.Thesis != nil {
		t := *r.Thesis
		out.Thesis = &t
	}
	return out
}

// SummaryFor renders the "Signals: a; b" line from triggered reasons
func SummaryFor(reasons []string) string {
	return "Signals: " + strings.Join(reasons, "; ")
}
