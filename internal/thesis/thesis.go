package thesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/config"
	"github.com/wonny/conviction-radar/pkg/httputil"
)

// PlaceholderPrefix starts the text used when no narrative could be produced
const PlaceholderPrefix = "AI thesis unavailable: "

// ErrNoAPIKey is returned when a provider is selected without a key
var ErrNoAPIKey = errors.New("thesis provider selected but API key is empty")

// ErrEmptyResponse is returned when a provider answers with no text
var ErrEmptyResponse = errors.New("empty thesis response")

// New builds the generator selected by cfg.Thesis.Provider
// provider "none" → (nil, nil): 호출 측에서 thesis 단계를 건너뜀
func New(ctx context.Context, cfg *config.Config, apiKey string) (contracts.ThesisGenerator, error) {
	switch cfg.Thesis.Provider {
	case config.ThesisProviderNone, "":
		return nil, nil
	case config.ThesisProviderClaude:
		if apiKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewClaudeGenerator(apiKey, cfg.Thesis.Model, cfg.Thesis.MaxTokens), nil
	case config.ThesisProviderGemini:
		if apiKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewGeminiGenerator(ctx, apiKey, cfg.Thesis.Model, cfg.Thesis.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown thesis provider %q", cfg.Thesis.Provider)
	}
}

// Outcome is the isolated result of the narrative step
// 실패해도 점수에는 영향 없음 (Err는 placeholder로만 표면화)
type Outcome struct {
	Text string
	Err  error
}

// OK reports whether a narrative was produced
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Narrative returns the text to attach: the thesis, or a placeholder on failure
func (o Outcome) Narrative() string {
	if o.Err != nil {
		return PlaceholderPrefix + o.Err.Error()
	}
	return o.Text
}

// Resolve runs gen with a timeout and never returns an error
func Resolve(ctx context.Context, gen contracts.ThesisGenerator, in contracts.ThesisInput, timeout time.Duration) Outcome {
	if gen == nil {
		return Outcome{Err: errors.New("no thesis provider configured")}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := gen.Generate(ctx, in)
	if err != nil {
		return Outcome{Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Err: ErrEmptyResponse}
	}
	return Outcome{Text: text}
}

// limited waits on a limiter before delegating
type limited struct {
	gen     contracts.ThesisGenerator
	limiter httputil.Limiter
}

// WithLimiter wraps gen so that every call first waits on limiter
func WithLimiter(gen contracts.ThesisGenerator, limiter httputil.Limiter) contracts.ThesisGenerator {
	if gen == nil || limiter == nil {
		return gen
	}
	return &limited{gen: gen, limiter: limiter}
}

func (l *limited) Generate(ctx context.Context, in contracts.ThesisInput) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("thesis rate limit: %w", err)
	}
	return l.gen.Generate(ctx, in)
}
