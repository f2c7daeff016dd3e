package contracts

// PriceSeries is an ordered sequence of daily closes, most recent last
// ⭐ SSOT: S0 → S1 가격 데이터 전달
type PriceSeries []float64

// Len returns the number of closes
func (s PriceSeries) Len() int {
	return len(s)
}

// FromEnd returns the close n positions from the end (1 = most recent)
func (s PriceSeries) FromEnd(n int) (float64, bool) {
	if n < 1 || n > len(s) {
		return 0, false
	}
	return s[len(s)-n], true
}

// Tail returns the most recent n closes (shares the backing array)
func (s PriceSeries) Tail(n int) PriceSeries {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// QuoteSnapshot is the raw per-ticker snapshot returned by a quote provider
// Any field may be missing.
type QuoteSnapshot struct {
	Name     *string
	Exchange *string
	Sector   *string
	Industry *string

	Price Optional // regular market price
	PE    Optional // trailing P/E
	PB    Optional // price to book
	EPS   Optional // trailing EPS
	ROE   Optional // return on equity (fraction, 0.15 = 15%)
}

// Fundamentals is a normalized QuoteSnapshot
// 문자열은 기본값으로 채우고, 숫자는 결측 그대로 유지
type Fundamentals struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`

	Price Optional `json:"price"`
	PE    Optional `json:"pe"`
	PB    Optional `json:"pb"`
	EPS   Optional `json:"eps"`
	ROE   Optional `json:"roe"`
}

// IndicatorSet holds price-derived indicators
// Each field is present only when the series was long enough.
type IndicatorSet struct {
	PriceDrop7D  Optional `json:"price_drop_7d"`  // %
	PriceDrop30D Optional `json:"price_drop_30d"` // %
	SMA20        Optional `json:"sma_20"`
	SMA50        Optional `json:"sma_50"`
	RSI14        Optional `json:"rsi_14"` // 0 ~ 100
	ClosePrice   Optional `json:"close_price"`
}
