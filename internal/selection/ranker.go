package selection

import (
	"context"
	"sort"

	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// DefaultTopN is the number of candidates a batch run keeps
const DefaultTopN = 20

// Ranker implements S3: batch ranking
// ⭐ SSOT: S3 랭킹 로직은 여기서만
type Ranker struct {
	topN   int
	logger *logger.Logger
}

// NewRanker creates a new ranker
// topN <= 0 → DefaultTopN
func NewRanker(topN int, logger *logger.Logger) *Ranker {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Ranker{
		topN:   topN,
		logger: logger,
	}
}

// TopN returns the configured cut
func (r *Ranker) TopN() int {
	return r.topN
}

// Rank filters, orders and truncates batch entries
//
// Failed entries and zero scores are dropped. Ties keep input order
// (Index), so completion order of parallel fetches never matters.
// Inputs are not mutated; returned results are copies with Rank set.
func (r *Ranker) Rank(ctx context.Context, entries []contracts.BatchEntry) []contracts.ScoreResult {
	ranked := Rank(entries, r.topN)

	if r.logger != nil {
		fields := map[string]interface{}{
			"total_entries": len(entries),
			"ranked":        len(ranked),
		}
		if len(ranked) > 0 {
			fields["top_score"] = ranked[0].Score
			fields["top_ticker"] = ranked[0].Symbol
		}
		r.logger.WithFields(fields).Info("Ranking completed")
	}

	return ranked
}

// Rank is the pure ranking function behind Ranker
func Rank(entries []contracts.BatchEntry, topN int) []contracts.ScoreResult {
	candidates := make([]contracts.BatchEntry, 0, len(entries))
	for _, e := range entries {
		if e.Failed() || !e.Result.IsCandidate() {
			continue
		}
		candidates = append(candidates, e)
	}

	// 점수 내림차순, 동점은 입력 순서
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Result.Score != b.Result.Score {
			return a.Result.Score > b.Result.Score
		}
		return a.Index < b.Index
	})

	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}

	ranked := make([]contracts.ScoreResult, 0, len(candidates))
	for i, e := range candidates {
		res := e.Result.Clone()
		res.Rank = i + 1
		ranked = append(ranked, res)
	}

	return ranked
}

// Errors lists failed entries in input order
func Errors(entries []contracts.BatchEntry) []contracts.BatchError {
	var errs []contracts.BatchError
	for _, e := range entries {
		if !e.Failed() {
			continue
		}
		errs = append(errs, contracts.BatchError{
			Symbol: e.Symbol,
			Error:  e.ErrorMessage(),
		})
	}
	return errs
}
