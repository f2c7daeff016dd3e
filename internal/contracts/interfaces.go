package contracts

import "context"

// PriceProvider fetches trailing daily closes (S0)
// ⭐ SSOT: 가격 히스토리 조회 인터페이스
type PriceProvider interface {
	FetchCloses(ctx context.Context, symbol string) (PriceSeries, error)
}

// QuoteProvider fetches the current fundamentals/metadata snapshot (S0)
// ⭐ SSOT: 시세/재무 스냅샷 조회 인터페이스
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (QuoteSnapshot, error)
}

// UniverseSource lists tickers for batch mode
type UniverseSource interface {
	Name() string
	Tickers(ctx context.Context) ([]string, error)
}

// ThesisGenerator produces a free-text narrative for a scored ticker
// 실패는 호출 측에서 placeholder로 흡수 (점수에 영향 없음)
type ThesisGenerator interface {
	Generate(ctx context.Context, in ThesisInput) (string, error)
}

// ThesisInput carries the fields of a ScoreResult given to the narrative step
type ThesisInput struct {
	Symbol       string
	Name         string
	Score        int
	Reasons      []string
	Fundamentals Fundamentals
	Indicators   IndicatorSet
}
