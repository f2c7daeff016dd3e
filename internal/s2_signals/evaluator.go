package s2_signals

import "github.com/wonny/conviction-radar/internal/contracts"

// Triggered is a rule that fired, with the value it observed
type Triggered struct {
	Order  int     `json:"order"`
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Points int     `json:"points"`
	Line   string  `json:"line"`
	Value  float64 `json:"value"`
}

// Evaluation is the outcome of applying the rule table
type Evaluation struct {
	BaseScore int         `json:"base_score"` // 규칙 1~5 합계
	Score     int         `json:"score"`      // 보너스 포함 최종 점수
	Triggered []Triggered `json:"triggered"`  // 테이블 순서
}

// Reasons returns the triggered labels in table order
func (e Evaluation) Reasons() []string {
	reasons := make([]string, 0, len(e.Triggered))
	for _, t := range e.Triggered {
		reasons = append(reasons, t.Label)
	}
	return reasons
}

// BonusApplied reports whether the multiple-signals bonus fired
func (e Evaluation) BonusApplied() bool {
	return e.Score > e.BaseScore
}

// Evaluate applies the fixed rule table
// ⭐ SSOT: 규칙 평가 순서는 여기서만 (1~5 → 보너스)
func Evaluate(f contracts.Fundamentals, ind contracts.IndicatorSet) Evaluation {
	in := RuleInput{Fundamentals: f, Indicators: ind}

	base, triggered := evaluateBase(in, BaseRules())
	bonus := MomentumBonus()

	total := base
	if bonus.Fires(base) {
		total = base + bonus.Points
		triggered = append(triggered, Triggered{
			Order:  bonus.Order,
			Name:   bonus.Name,
			Label:  bonus.Label,
			Points: bonus.Points,
			Line:   bonus.Line(),
			Value:  float64(base),
		})
	}

	return Evaluation{
		BaseScore: base,
		Score:     total,
		Triggered: triggered,
	}
}

// evaluateBase folds the base rules into a running total
func evaluateBase(in RuleInput, rules []Rule) (int, []Triggered) {
	total := 0
	triggered := make([]Triggered, 0, len(rules)+1)

	for _, r := range rules {
		v, ok := r.Fires(in)
		if !ok {
			continue
		}
		total += r.Points
		triggered = append(triggered, Triggered{
			Order:  r.Order,
			Name:   r.Name,
			Label:  r.Label,
			Points: r.Points,
			Line:   r.Line(v),
			Value:  v,
		})
	}

	return total, triggered
}
