package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/conviction-radar/internal/brain"
	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/internal/s0_data"
	"github.com/wonny/conviction-radar/internal/s1_indicators"
	"github.com/wonny/conviction-radar/internal/s2_signals"
	"github.com/wonny/conviction-radar/internal/selection"
	"github.com/wonny/conviction-radar/internal/thesis"
	"github.com/wonny/conviction-radar/pkg/config"
	"github.com/wonny/conviction-radar/pkg/database"
	"github.com/wonny/conviction-radar/pkg/httputil"
	"github.com/wonny/conviction-radar/pkg/logger"
	"github.com/wonny/conviction-radar/pkg/redis"
)

// app holds the wired pipeline shared by all commands
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	http         *httputil.Client
	redis        *redis.Client
	db           *database.DB // nil when DATABASE_URL is empty
	orchestrator *brain.Orchestrator
}

// appOptions tweak bootstrap per command
type appOptions struct {
	needDB bool // true → DB 연결 실패 시 에러
	topN   int  // > 0 → BATCH_TOP_N 대신 사용
}

// bootstrap loads config and wires every collaborator
func bootstrap(ctx context.Context, opts appOptions) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if opts.topN > 0 {
		cfg.Batch.TopN = opts.topN
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// 3. Redis (optional shared rate limit)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 4. Database (optional: watchlist)
	a.db, err = database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		if opts.needDB {
			a.Close()
			return nil, err
		}
		a.db = nil
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		log.Info("Connected to database")
	}

	// 5. HTTP client + Yahoo provider
	a.http = httputil.New(cfg, log)
	yahoo := s0_data.NewYahooProvider(cfg, a.http, log, s0_data.YahooLimiters(cfg, a.redis)...)

	// 6. Thesis generator (optional)
	gen, err := thesis.New(ctx, cfg, cfg.Thesis.APIKey())
	if err != nil {
		log.WithError(err).Warn("Thesis provider unavailable, narratives will be placeholders")
		gen = nil
	}
	if gen != nil && a.redis.Enabled() {
		gen = thesis.WithLimiter(gen, a.redis.Limiter(redis.ThesisRateLimit))
	}

	// 7. Pipeline
	a.orchestrator = brain.NewOrchestrator(
		yahoo,
		yahoo,
		s1_indicators.NewCalculator(log),
		s2_signals.NewScorer(log),
		selection.NewRanker(cfg.Batch.TopN, log),
		gen,
		brain.Options{
			Workers:       cfg.Batch.Workers,
			ThesisTimeout: cfg.Thesis.Timeout,
			BatchThesis:   cfg.Batch.Thesis,
		},
		log,
	)

	return a, nil
}

// universe builds the configured universe source, or the named override
func (a *app) universe(name string) (contracts.UniverseSource, error) {
	cfg := *a.cfg
	if name != "" {
		cfg.Batch.UniverseSource = name
	}
	return s0_data.NewUniverse(&cfg, a.universeDeps())
}

// universes builds every source available with the current wiring
// watchlist는 DB가 있을 때만 포함
func (a *app) universes() map[string]contracts.UniverseSource {
	out := make(map[string]contracts.UniverseSource)
	for _, name := range []string{config.UniverseDefault, config.UniverseFile, config.UniverseSP500, config.UniverseWatchlist} {
		src, err := a.universe(name)
		if err != nil {
			a.log.WithField("universe", name).Debug("Universe source not available")
			continue
		}
		out[name] = src
	}
	return out
}

func (a *app) universeDeps() s0_data.UniverseDeps {
	return s0_data.UniverseDeps{HTTP: a.http, DB: a.db, Logger: a.log}
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
