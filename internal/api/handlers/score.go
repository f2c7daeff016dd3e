package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/wonny/conviction-radar/internal/brain"
	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/internal/s0_data"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// Pipeline is what the score handlers need from the orchestrator
type Pipeline interface {
	ScoreTicker(ctx context.Context, symbol string, withThesis bool) (*contracts.ScoreResult, error)
	ScoreBatch(ctx context.Context, tickers []string, cfg brain.RunConfig) (*contracts.BatchReport, error)
	ScoreUniverse(ctx context.Context, src contracts.UniverseSource, cfg brain.RunConfig) (*contracts.BatchReport, error)
	ThesisEnabled() bool
}

// ThesisWarningHeader flags responses whose thesis is only the placeholder
const ThesisWarningHeader = "X-Thesis-Warning"

// ScoreHandler handles scoring endpoints
// ⭐ SSOT: 점수 API 핸들러는 이 구조체에서만
type ScoreHandler struct {
	pipeline        Pipeline
	universes       map[string]contracts.UniverseSource
	defaultUniverse string
	validate        *validator.Validate
	logger          *logger.Logger
}

// NewScoreHandler creates a new score handler
// universes: 요청에서 이름으로 선택 가능한 소스 (defaultUniverse는 반드시 포함)
func NewScoreHandler(pipeline Pipeline, universes map[string]contracts.UniverseSource, defaultUniverse string, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		pipeline:        pipeline,
		universes:       universes,
		defaultUniverse: defaultUniverse,
		validate:        validator.New(),
		logger:          log,
	}
}

// BatchRequest is the body of POST /api/batch
type BatchRequest struct {
	Tickers  []string `json:"tickers" validate:"omitempty,max=500,dive,required,max=20"`
	Universe string   `json:"universe" validate:"omitempty,oneof=default file watchlist sp500"`
	Thesis   *bool    `json:"thesis"`
}

// GetScore scores a single ticker
// GET /api/score/{ticker}?thesis=true
func (h *ScoreHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	withThesis := false
	if v := r.URL.Query().Get("thesis"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "thesis must be a boolean")
			return
		}
		withThesis = parsed
	}

	h.warnThesis(w.Header(), withThesis)

	result, err := h.pipeline.ScoreTicker(r.Context(), ticker, withThesis)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// PostBatch runs a batch scan and returns the ranking
// POST /api/batch
func (h *ScoreHandler) PostBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	h.warnThesis(w.Header(), req.Thesis != nil && *req.Thesis)

	report, err := h.run(r.Context(), req, brain.RunConfig{Thesis: req.Thesis})
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// warnThesis marks a thesis request that no provider can serve
func (h *ScoreHandler) warnThesis(header http.Header, requested bool) {
	if !requested || h.pipeline.ThesisEnabled() {
		return
	}
	header.Set(ThesisWarningHeader, "no thesis provider configured")
	h.logger.Warn("Thesis requested but no provider configured")
}

// run dispatches to explicit tickers or a named universe
func (h *ScoreHandler) run(ctx context.Context, req BatchRequest, cfg brain.RunConfig) (*contracts.BatchReport, error) {
	if len(req.Tickers) > 0 {
		tickers := s0_data.NormalizeTickers(req.Tickers)
		return h.pipeline.ScoreBatch(ctx, tickers, cfg)
	}

	name := req.Universe
	if name == "" {
		name = h.defaultUniverse
	}
	src, ok := h.universes[name]
	if !ok {
		return nil, errUnknownUniverse{name: name}
	}
	return h.pipeline.ScoreUniverse(ctx, src, cfg)
}

type errUnknownUniverse struct {
	name string
}

func (e errUnknownUniverse) Error() string {
	return "universe not available: " + e.name
}

// respondPipelineError maps pipeline errors to HTTP statuses
func (h *ScoreHandler) respondPipelineError(w http.ResponseWriter, err error) {
	var unknown errUnknownUniverse

	switch {
	case contracts.IsDataUnavailable(err):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &unknown):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		respondError(w, http.StatusRequestTimeout, "Request cancelled")
	default:
		h.logger.WithError(err).Error("Scoring request failed")
		respondError(w, http.StatusInternalServerError, "Scoring failed")
	}
}

// splitTickers parses "AAPL, msft,INFY.NS"
func splitTickers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return s0_data.NormalizeTickers(strings.Split(raw, ","))
}
