package s0_data

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/config"
	"github.com/wonny/conviction-radar/pkg/httputil"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// barFetcher returns daily closes between start and end (oldest first)
type barFetcher func(symbol string, start, end time.Time) ([]decimal.Decimal, error)

// equityFetcher returns the quote snapshot for a symbol
type equityFetcher func(symbol string) (*finance.Equity, error)

// YahooProvider implements PriceProvider and QuoteProvider on Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 여기서만
type YahooProvider struct {
	cfg      config.YahooConfig
	http     *httputil.Client
	limiters []httputil.Limiter
	logger   *logger.Logger

	fetchBars   barFetcher
	fetchEquity equityFetcher
	now         func() time.Time
}

// NewYahooProvider creates a new Yahoo provider
// limiters are awaited before every finance-go call (the http client carries its own)
func NewYahooProvider(cfg *config.Config, client *httputil.Client, log *logger.Logger, limiters ...httputil.Limiter) *YahooProvider {
	return &YahooProvider{
		cfg:         cfg.Yahoo,
		http:        client,
		limiters:    limiters,
		logger:      log,
		fetchBars:   chartCloses,
		fetchEquity: equity.Get,
		now:         time.Now,
	}
}

// FetchCloses fetches trailing daily closes, most recent last
func (p *YahooProvider) FetchCloses(ctx context.Context, symbol string) (contracts.PriceSeries, error) {
	end := p.now()
	start := end.AddDate(0, 0, -p.cfg.HistoryDays)

	closes, err := withContext(ctx, p.limiters, func() ([]decimal.Decimal, error) {
		return p.fetchBars(symbol, start, end)
	})
	if err != nil {
		return nil, contracts.DataUnavailable(symbol, fmt.Errorf("price history: %w", err))
	}

	// 빈 히스토리는 실패가 아님: 지표가 모두 결측으로 남음
	series := toSeries(closes)

	p.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"closes": series.Len(),
	}).Debug("Fetched price history")

	return series, nil
}

// FetchQuote fetches the fundamentals snapshot
// 섹터/업종/ROE는 quoteSummary에서 best-effort로 보강 (실패 시 결측)
func (p *YahooProvider) FetchQuote(ctx context.Context, symbol string) (contracts.QuoteSnapshot, error) {
	eq, err := withContext(ctx, p.limiters, func() (*finance.Equity, error) {
		return p.fetchEquity(symbol)
	})
	if err != nil {
		return contracts.QuoteSnapshot{}, contracts.DataUnavailable(symbol, fmt.Errorf("quote: %w", err))
	}
	if eq == nil {
		return contracts.QuoteSnapshot{}, contracts.DataUnavailable(symbol, errors.New("unknown ticker"))
	}

	snap := snapshotFromEquity(eq)

	if p.http != nil && p.cfg.SummaryURL != "" {
		profile, err := p.fetchProfile(ctx, symbol)
		if err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).Debug("quoteSummary unavailable, sector/industry/roe left absent")
		} else {
			profile.apply(&snap)
		}
	}

	return snap, nil
}

// snapshotFromEquity maps a finance-go equity quote
// finance-go는 결측 필드를 0으로 반환하므로 배수형 지표의 0은 결측으로 취급
func snapshotFromEquity(eq *finance.Equity) contracts.QuoteSnapshot {
	name := eq.LongName
	if name == "" {
		name = eq.ShortName
	}

	return contracts.QuoteSnapshot{
		Name:     nonEmpty(name),
		Exchange: nonEmpty(eq.ExchangeID),
		Price:    nonZero(eq.RegularMarketPrice),
		PE:       nonZero(eq.TrailingPE),
		PB:       nonZero(eq.PriceToBook),
		EPS:      nonZero(eq.EpsTrailingTwelveMonths),
	}
}

// quoteSummaryResponse is the subset of Yahoo's quoteSummary payload we read
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			FinancialData struct {
				ReturnOnEquity struct {
					Raw *float64 `json:"raw"`
				} `json:"returnOnEquity"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// profile is the best-effort enrichment from quoteSummary
type profile struct {
	sector   string
	industry string
	roe      contracts.Optional
}

func (pr profile) apply(snap *contracts.QuoteSnapshot) {
	snap.Sector = nonEmpty(pr.sector)
	snap.Industry = nonEmpty(pr.industry)
	snap.ROE = pr.roe
}

func (p *YahooProvider) fetchProfile(ctx context.Context, symbol string) (profile, error) {
	endpoint := fmt.Sprintf("%s/%s?modules=assetProfile,financialData",
		strings.TrimRight(p.cfg.SummaryURL, "/"), url.PathEscape(symbol))

	var resp quoteSummaryResponse
	if err := p.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return profile{}, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return profile{}, fmt.Errorf("quoteSummary %s: %s", e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return profile{}, errors.New("quoteSummary: empty result")
	}

	r := resp.QuoteSummary.Result[0]
	return profile{
		sector:   r.AssetProfile.Sector,
		industry: r.AssetProfile.Industry,
		roe:      contracts.FromPtr(r.FinancialData.ReturnOnEquity.Raw),
	}, nil
}

// chartCloses pulls daily bars through finance-go
func chartCloses(symbol string, start, end time.Time) ([]decimal.Decimal, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	var closes []decimal.Decimal
	iter := chart.Get(params)
	for iter.Next() {
		closes = append(closes, iter.Bar().Close)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return closes, nil
}

// toSeries converts decimal closes, skipping non-positive bars (휴장일 null)
func toSeries(closes []decimal.Decimal) contracts.PriceSeries {
	series := make(contracts.PriceSeries, 0, len(closes))
	for _, c := range closes {
		if c.Sign() <= 0 {
			continue
		}
		f, _ := c.Float64()
		series = append(series, f)
	}
	return series
}

// withContext runs a blocking finance-go call so that ctx cancellation is honored
// finance-go 자체는 context를 지원하지 않음
func withContext[T any](ctx context.Context, limiters []httputil.Limiter, fn func() (T, error)) (T, error) {
	var zero T

	for _, l := range limiters {
		if err := l.Wait(ctx); err != nil {
			return zero, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)

	go func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nonZero(v float64) contracts.Optional {
	if v == 0 {
		return contracts.None()
	}
	return contracts.Some(v)
}
