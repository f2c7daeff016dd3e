package s2_signals

import (
	"fmt"

	"github.com/wonny/conviction-radar/internal/contracts"
)

// ObservationKind identifies a descriptive (non-scoring) technical observation
type ObservationKind string

const (
	ObservationSMA20 ObservationKind = "sma_20"
	ObservationSMA50 ObservationKind = "sma_50"
	ObservationRSI   ObservationKind = "rsi_14"
)

// RSI regime thresholds
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
)

// Observation is a descriptive technical comment; it never affects the score
type Observation struct {
	Kind ObservationKind `json:"kind"`
	Text string          `json:"text"`
}

// Observe derives technical commentary from indicators
// ⭐ SSOT: 기술적 코멘트는 여기서만 (점수와 무관)
// 지표 또는 종가가 없으면 해당 코멘트는 생략
func Observe(ind contracts.IndicatorSet) []Observation {
	obs := make([]Observation, 0, 3)

	closePrice, hasClose := ind.ClosePrice.Get()

	if sma20, ok := ind.SMA20.Get(); ok && hasClose {
		text := fmt.Sprintf("Price %.2f is below the 20-day SMA (%.2f): possible short-term weakness.", closePrice, sma20)
		if closePrice > sma20 {
			text = fmt.Sprintf("Price %.2f is above the 20-day SMA (%.2f): positive short-term momentum.", closePrice, sma20)
		}
		obs = append(obs, Observation{Kind: ObservationSMA20, Text: text})
	}

	if sma50, ok := ind.SMA50.Get(); ok && hasClose {
		text := fmt.Sprintf("Price %.2f is below the 50-day SMA (%.2f): longer-term trend may be weak.", closePrice, sma50)
		if closePrice > sma50 {
			text = fmt.Sprintf("Price %.2f is above the 50-day SMA (%.2f): longer-term uptrend.", closePrice, sma50)
		}
		obs = append(obs, Observation{Kind: ObservationSMA50, Text: text})
	}

	if rsi, ok := ind.RSI14.Get(); ok && hasClose {
		obs = append(obs, Observation{
			Kind: ObservationRSI,
			Text: fmt.Sprintf("RSI(14) is %.1f: %s.", rsi, rsiRegime(rsi)),
		})
	}

	return obs
}

// rsiRegime classifies an RSI value
func rsiRegime(rsi float64) string {
	switch {
	case rsi > RSIOverbought:
		return "overbought"
	case rsi < RSIOversold:
		return "oversold"
	default:
		return "neutral"
	}
}
