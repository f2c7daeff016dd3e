package s1_indicators

import (
	"context"

	"github.com/markcheno/go-talib"

	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// Minimum series lengths for each indicator
const (
	MinPointsDrop7D  = 7
	MinPointsDrop30D = 21 // sma_20도 같은 조건으로 계산
	MinPointsSMA50   = 50
	RSIPeriod        = 14
	MinPointsRSI     = RSIPeriod + 1 // diff 시리즈 길이 >= 14

	drop7DAnchor  = 7
	drop30DAnchor = 21
)

// Calculator derives indicators from a price series
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new indicator calculator
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log,
	}
}

// Calculate computes the indicator set for a symbol
func (c *Calculator) Calculate(ctx context.Context, symbol string, series contracts.PriceSeries) contracts.IndicatorSet {
	set := Compute(series)

	if c.logger != nil {
		c.logger.WithFields(map[string]interface{}{
			"symbol":         symbol,
			"points":         series.Len(),
			"price_drop_7d":  set.PriceDrop7D.String(),
			"price_drop_30d": set.PriceDrop30D.String(),
			"sma_20":         set.SMA20.String(),
			"sma_50":         set.SMA50.String(),
			"rsi_14":         set.RSI14.String(),
		}).Debug("Calculated indicators")
	}

	return set
}

// Compute is the pure indicator function
// 길이가 부족한 필드는 0이 아니라 결측(None)으로 남음
func Compute(series contracts.PriceSeries) contracts.IndicatorSet {
	set := contracts.IndicatorSet{}

	if last, ok := series.FromEnd(1); ok {
		set.ClosePrice = contracts.Some(last)
	}

	if series.Len() >= MinPointsDrop7D {
		set.PriceDrop7D = percentChange(series, drop7DAnchor)
	}

	if series.Len() >= MinPointsDrop30D {
		set.PriceDrop30D = percentChange(series, drop30DAnchor)
		set.SMA20 = sma(series, 20)
	}

	if series.Len() >= MinPointsSMA50 {
		set.SMA50 = sma(series, 50)
	}

	if series.Len() >= MinPointsRSI {
		set.RSI14 = rsi(series, RSIPeriod)
	}

	return set
}

// percentChange returns (close[-1] - close[-anchor]) / close[-anchor] * 100
func percentChange(series contracts.PriceSeries, anchor int) contracts.Optional {
	last, ok := series.FromEnd(1)
	if !ok {
		return contracts.None()
	}
	base, ok := series.FromEnd(anchor)
	if !ok || base == 0 {
		return contracts.None()
	}
	return contracts.Some((last - base) / base * 100)
}

// sma returns the mean of the most recent n closes
func sma(series contracts.PriceSeries, n int) contracts.Optional {
	if series.Len() < n {
		return contracts.None()
	}
	out := talib.Sma([]float64(series.Tail(n)), n)
	return contracts.Some(out[len(out)-1])
}

// rsi computes RSI from simple rolling means of up/down moves
// avgLoss == 0 → 100, avgGain == 0 → 0
func rsi(series contracts.PriceSeries, period int) contracts.Optional {
	if series.Len() < period+1 {
		return contracts.None()
	}

	tail := series.Tail(period + 1)
	up := make([]float64, period)
	down := make([]float64, period)
	for i := 1; i < len(tail); i++ {
		diff := tail[i] - tail[i-1]
		if diff > 0 {
			up[i-1] = diff
		} else {
			down[i-1] = -diff
		}
	}

	gains := talib.Sma(up, period)
	losses := talib.Sma(down, period)
	avgGain := gains[len(gains)-1]
	avgLoss := losses[len(losses)-1]

	return contracts.Some(rsiFromAverages(avgGain, avgLoss))
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss <= 0 {
		return 100.0
	}
	if avgGain <= 0 {
		return 0.0
	}

	rs := avgGain / avgLoss
	value := 100 - (100 / (1 + rs))

	// float 오차 방어
	if value > 100 {
		return 100
	}
	if value < 0 {
		return 0
	}
	return value
}
