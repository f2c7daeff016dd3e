package brain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/internal/s0_data"
	"github.com/wonny/conviction-radar/internal/s1_indicators"
	"github.com/wonny/conviction-radar/internal/s2_signals"
	"github.com/wonny/conviction-radar/internal/selection"
	"github.com/wonny/conviction-radar/internal/thesis"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// Orchestrator coordinates the scoring pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
//
// S0 (fetch) → S1 (indicators) + normalize → S2 (rules, explanation) → S3 (ranking, batch only)
type Orchestrator struct {
	// Stage components
	prices     contracts.PriceProvider
	quotes     contracts.QuoteProvider
	calculator *s1_indicators.Calculator
	scorer     *s2_signals.Scorer
	ranker     *selection.Ranker
	thesis     contracts.ThesisGenerator // nil → thesis 단계 없음

	options Options
	logger  *logger.Logger
}

// Options tunes the orchestrator
type Options struct {
	Workers       int           // batch 병렬도
	ThesisTimeout time.Duration // thesis 호출 타임아웃
	BatchThesis   bool          // batch에서도 thesis 생성
}

// RunConfig holds per-run settings for a batch
type RunConfig struct {
	RunID    string // empty → generated
	Thesis   *bool  // nil → Options.BatchThesis
	Progress ProgressFunc
}

// ProgressFunc is called once per finished ticker (serialized, completion order)
type ProgressFunc func(done, total int, entry contracts.BatchEntry)

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	prices contracts.PriceProvider,
	quotes contracts.QuoteProvider,
	calculator *s1_indicators.Calculator,
	scorer *s2_signals.Scorer,
	ranker *selection.Ranker,
	gen contracts.ThesisGenerator,
	options Options,
	log *logger.Logger,
) *Orchestrator {
	if options.Workers < 1 {
		options.Workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		prices:     prices,
		quotes:     quotes,
		calculator: calculator,
		scorer:     scorer,
		ranker:     ranker,
		thesis:     gen,
		options:    options,
		logger:     log,
	}
}

// ThesisEnabled reports whether a narrative provider is wired
func (o *Orchestrator) ThesisEnabled() bool {
	return o.thesis != nil
}

// ScoreTicker runs the single-ticker pipeline
// 실패는 DataUnavailable 하나뿐 (부분 결측은 결과 데이터에 반영)
func (o *Orchestrator) ScoreTicker(ctx context.Context, symbol string, withThesis bool) (*contracts.ScoreResult, error) {
	symbol = s0_data.NormalizeTicker(symbol)
	if symbol == "" {
		return nil, contracts.DataUnavailable("", errors.New("empty ticker"))
	}

	// S0: price history + quote snapshot (병렬)
	var (
		series contracts.PriceSeries
		quote  contracts.QuoteSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = o.prices.FetchCloses(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		quote, err = o.quotes.FetchQuote(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		if !contracts.IsDataUnavailable(err) {
			err = contracts.DataUnavailable(symbol, err)
		}
		return nil, err
	}

	// S1 + normalize
	indicators := o.calculator.Calculate(ctx, symbol, series)
	fundamentals := s2_signals.Normalize(symbol, quote)

	// S2
	ev := o.scorer.Evaluate(ctx, fundamentals, indicators)

	var narrative *string
	if withThesis {
		out := thesis.Resolve(ctx, o.thesis, s2_signals.ThesisInputFor(fundamentals, indicators, ev), o.options.ThesisTimeout)
		if !out.OK() {
			o.logger.WithError(out.Err).WithField("symbol", symbol).Warn("Thesis unavailable")
		}
		text := out.Narrative()
		narrative = &text
	}

	result := s2_signals.Assemble(fundamentals, indicators, ev, narrative)

	o.logger.WithFields(map[string]interface{}{
		"symbol":  symbol,
		"score":   result.Score,
		"reasons": len(result.Reasons),
		"thesis":  result.HasThesis(),
	}).Info("Ticker scored")

	return &result, nil
}

// ScoreBatch scores tickers in parallel and ranks them
// 각 결과는 입력 인덱스 슬롯에 기록 → 완료 순서와 무관한 랭킹
func (o *Orchestrator) ScoreBatch(ctx context.Context, tickers []string, cfg RunConfig) (*contracts.BatchReport, error) {
	startTime := time.Now()

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	withThesis := o.options.BatchThesis
	if cfg.Thesis != nil {
		withThesis = *cfg.Thesis
	}

	log := o.logger.WithField("run_id", runID)
	log.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": o.options.Workers,
		"top_n":   o.ranker.TopN(),
		"thesis":  withThesis,
	}).Info("Starting batch run")

	entries := make([]contracts.BatchEntry, len(tickers))

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.options.Workers)

	for i, symbol := range tickers {
		g.Go(func() error {
			entry := contracts.BatchEntry{Index: i, Symbol: symbol}

			// 취소 시 남은 티커는 실패로 기록
			if err := gctx.Err(); err != nil {
				entry.Err = contracts.DataUnavailable(symbol, err)
			} else {
				entry.Result, entry.Err = o.ScoreTicker(gctx, symbol, withThesis)
			}
			if entry.Err != nil {
				log.WithError(entry.Err).WithField("symbol", symbol).Warn("Ticker failed")
			}

			entries[i] = entry

			mu.Lock()
			done++
			if cfg.Progress != nil {
				cfg.Progress(done, len(tickers), entry)
			}
			mu.Unlock()

			// 티커 실패는 배치를 중단시키지 않음
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch %s cancelled: %w", runID, err)
	}

	// S3
	ranked := o.ranker.Rank(ctx, entries)
	errs := selection.Errors(entries)

	report := &contracts.BatchReport{
		RunID:  runID,
		Total:  len(tickers),
		Failed: len(errs),
		Ranked: ranked,
		Errors: errs,
	}

	log.WithFields(map[string]interface{}{
		"total":    report.Total,
		"failed":   report.Failed,
		"ranked":   len(report.Ranked),
		"duration": time.Since(startTime).Seconds(),
	}).Info("Batch run completed")

	return report, nil
}

// ScoreUniverse lists tickers from src and runs ScoreBatch
func (o *Orchestrator) ScoreUniverse(ctx context.Context, src contracts.UniverseSource, cfg RunConfig) (*contracts.BatchReport, error) {
	tickers, err := src.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("universe %s: %w", src.Name(), err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("universe %s: %w", src.Name(), s0_data.ErrEmptyUniverse)
	}
	return o.ScoreBatch(ctx, tickers, cfg)
}
