package s2_signals

import (
	"context"

	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// Scorer wraps the pure rule evaluation with logging
// ⭐ SSOT: S2 점수 산출 진입점
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a new scorer
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{
		logger: log,
	}
}

// Evaluate scores normalized fundamentals and indicators
func (s *Scorer) Evaluate(ctx context.Context, f contracts.Fundamentals, ind contracts.IndicatorSet) Evaluation {
	ev := Evaluate(f, ind)

	if s.logger != nil {
		s.logger.WithFields(map[string]interface{}{
			"symbol":     f.Symbol,
			"base_score": ev.BaseScore,
			"score":      ev.Score,
			"triggered":  len(ev.Triggered),
			"bonus":      ev.BonusApplied(),
		}).Debug("Evaluated scoring rules")
	}

	return ev
}

// ThesisInputFor builds the narrative request for an evaluated ticker
func ThesisInputFor(f contracts.Fundamentals, ind contracts.IndicatorSet, ev Evaluation) contracts.ThesisInput {
	return contracts.ThesisInput{
		Symbol:       f.Symbol,
		Name:         f.Name,
		Score:        ev.Score,
		Reasons:      ev.Reasons(),
		Fundamentals: f,
		Indicators:   ind,
	}
}

// Assemble builds the final ScoreResult
// narrative == nil → thesis block omitted
func Assemble(f contracts.Fundamentals, ind contracts.IndicatorSet, ev Evaluation, narrative *string) contracts.ScoreResult {
	obs := Observe(ind)
	reasons := ev.Reasons()

	texts := make([]string, 0, len(obs))
	for _, o := range obs {
		texts = append(texts, o.Text)
	}

	var thesis *string
	if narrative != nil {
		t := *narrative
		thesis = &t
	}

	return contracts.ScoreResult{
		Symbol:       f.Symbol,
		Name:         f.Name,
		Exchange:     f.Exchange,
		Sector:       f.Sector,
		Industry:     f.Industry,
		Score:        ev.Score,
		Reasons:      reasons,
		Summary:      contracts.SummaryFor(reasons),
		Explanation:  Compose(ev, obs, narrative),
		Observations: texts,
		Fundamentals: f,
		Indicators:   ind,
		Thesis:       thesis,
	}
}
