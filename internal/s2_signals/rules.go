package s2_signals

import (
	"fmt"
	"math"

	"github.com/wonny/conviction-radar/internal/contracts"
)

// RuleInput is what every scoring rule reads
type RuleInput struct {
	Fundamentals contracts.Fundamentals
	Indicators   contracts.IndicatorSet
}

// Rule is one row of the scoring table
// ⭐ SSOT: 점수 정책은 이 테이블에서만 (조건/가중치/라벨)
type Rule struct {
	Order  int
	Name   string
	Points int
	Label  string

	// field returns the value the rule reads; false when missing → rule is skipped
	field func(in RuleInput) contracts.Optional
	holds func(v float64) bool
	line  func(v float64) string
}

// Fires reports whether the rule triggers, along with the observed value
func (r Rule) Fires(in RuleInput) (float64, bool) {
	v, ok := r.field(in).Get()
	if !ok {
		return 0, false
	}
	return v, r.holds(v)
}

// Line renders the explanation line for an observed value
func (r Rule) Line(v float64) string {
	return r.line(v)
}

// BonusRule awards extra points when the base rules' total exceeds a threshold
// base 합계만 보고 한 번만 평가됨 (자기 자신은 합계에 포함되지 않음)
type BonusRule struct {
	Order     int
	Name      string
	Threshold int
	Points    int
	Label     string
}

// Fires reports whether the bonus applies to a base total
func (b BonusRule) Fires(baseTotal int) bool {
	return baseTotal > b.Threshold
}

// Line renders the explanation line for the bonus
func (b BonusRule) Line() string {
	return "Several strong value signals align (high-conviction pick)."
}

// Reason labels
const (
	LabelPriceDrop30D = "Significant 1-month price drop (>10%)"
	LabelLowPE        = "Low P/E ratio (<18)"
	LabelHighROE      = "High Return on Equity (>12%)"
	LabelPositiveEPS  = "EPS is positive"
	LabelLowPB        = "Low Price/Book (<3)"
	LabelMultiSignal  = "Multiple strong signals"
)

// BaseRules returns the five base rules in evaluation order
func BaseRules() []Rule {
	return []Rule{
		{
			Order:  1,
			Name:   "price_drop_30d",
			Points: 20,
			Label:  LabelPriceDrop30D,
			field:  func(in RuleInput) contracts.Optional { return in.Indicators.PriceDrop30D },
			holds:  func(v float64) bool { return v < -10 },
			line: func(v float64) string {
				return fmt.Sprintf("Price dropped %.2f%% in the last month (possible overreaction).", math.Abs(v))
			},
		},
		{
			Order:  2,
			Name:   "low_pe",
			Points: 20,
			Label:  LabelLowPE,
			field:  func(in RuleInput) contracts.Optional { return in.Fundamentals.PE },
			holds:  func(v float64) bool { return v < 18 },
			line: func(v float64) string {
				return fmt.Sprintf("P/E ratio is %.2f, which is low for its sector.", v)
			},
		},
		{
			Order:  3,
			Name:   "high_roe",
			Points: 15,
			Label:  LabelHighROE,
			field:  func(in RuleInput) contracts.Optional { return in.Fundamentals.ROE },
			holds:  func(v float64) bool { return v > 0.12 },
			line: func(v float64) string {
				return fmt.Sprintf("Return on Equity is strong at %.2f%%.", v*100)
			},
		},
		{
			Order:  4,
			Name:   "positive_eps",
			Points: 15,
			Label:  LabelPositiveEPS,
			field:  func(in RuleInput) contracts.Optional { return in.Fundamentals.EPS },
			holds:  func(v float64) bool { return v > 0 },
			line: func(v float64) string {
				return fmt.Sprintf("Earnings per share (EPS) is positive at %.2f.", v)
			},
		},
		{
			Order:  5,
			Name:   "low_pb",
			Points: 10,
			Label:  LabelLowPB,
			field:  func(in RuleInput) contracts.Optional { return in.Fundamentals.PB },
			holds:  func(v float64) bool { return v < 3 },
			line: func(v float64) string {
				return fmt.Sprintf("Price/Book ratio is %.2f, relatively attractive.", v)
			},
		},
	}
}

// MomentumBonus is rule 6
func MomentumBonus() BonusRule {
	return BonusRule{
		Order:     6,
		Name:      "multiple_signals",
		Threshold: 60,
		Points:    10,
		Label:     LabelMultiSignal,
	}
}
