package thesis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/config"
)

type fakeGenerator struct {
	text  string
	err   error
	delay time.Duration
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, in contracts.ThesisInput) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.text, f.err
}

func sampleInput() contracts.ThesisInput {
	return contracts.ThesisInput{
		Symbol:  "INFY.NS",
		Name:    "Infosys Limited",
		Score:   90,
		Reasons: []string{"Low P/E ratio (<18)", "EPS is positive"},
		Fundamentals: contracts.Fundamentals{
			Symbol:   "INFY.NS",
			Sector:   "Technology",
			Industry: "IT Services",
			PE:       contracts.Some(15),
		},
		Indicators: contracts.IndicatorSet{PriceDrop30D: contracts.Some(-12)},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		gen           contracts.ThesisGenerator
		timeout       time.Duration
		wantOK        bool
		wantNarrative string
		wantContains  string
	}{
		{
			name:          "success trims whitespace",
			gen:           &fakeGenerator{text: "  Cheap and profitable.\n"},
			wantOK:        true,
			wantNarrative: "Cheap and profitable.",
		},
		{
			name:         "provider error",
			gen:          &fakeGenerator{err: errors.New("401 unauthorized")},
			wantContains: PlaceholderPrefix + "401 unauthorized",
		},
		{
			name:         "empty text",
			gen:          &fakeGenerator{text: "   "},
			wantContains: PlaceholderPrefix + ErrEmptyResponse.Error(),
		},
		{
			name:         "timeout",
			gen:          &fakeGenerator{text: "late", delay: time.Second},
			timeout:      20 * time.Millisecond,
			wantContains: PlaceholderPrefix,
		},
		{
			name:         "no generator",
			gen:          nil,
			wantContains: "no thesis provider configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resolve(context.Background(), tt.gen, sampleInput(), tt.timeout)

			assert.Equal(t, tt.wantOK, out.OK())
			if tt.wantNarrative != "" {
				assert.Equal(t, tt.wantNarrative, out.Narrative())
			}
			if tt.wantContains != "" {
				assert.Contains(t, out.Narrative(), tt.wantContains)
			}
		})
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	gen, err := New(ctx, &config.Config{Thesis: config.ThesisConfig{Provider: config.ThesisProviderNone}}, "")
	require.NoError(t, err)
	assert.Nil(t, gen)

	_, err = New(ctx, &config.Config{Thesis: config.ThesisConfig{Provider: config.ThesisProviderClaude}}, "")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(ctx, &config.Config{Thesis: config.ThesisConfig{Provider: config.ThesisProviderGemini}}, "")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(ctx, &config.Config{Thesis: config.ThesisConfig{Provider: "gpt"}}, "key")
	assert.Error(t, err)

	gen, err = New(ctx, &config.Config{Thesis: config.ThesisConfig{Provider: config.ThesisProviderClaude}}, "sk-test")
	require.NoError(t, err)
	assert.IsType(t, &ClaudeGenerator{}, gen)
}

type countingLimiter struct {
	waits int
	err   error
}

func (c *countingLimiter) Wait(ctx context.Context) error {
	c.waits++
	return c.err
}

func TestWithLimiter(t *testing.T) {
	inner := &fakeGenerator{text: "ok"}
	lim := &countingLimiter{}

	gen := WithLimiter(inner, lim)
	text, err := gen.Generate(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, lim.waits)

	lim.err = context.Canceled
	_, err = gen.Generate(context.Background(), sampleInput())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)

	assert.Same(t, inner, WithLimiter(inner, nil))
	assert.Nil(t, WithLimiter(nil, lim))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleInput())

	assert.Contains(t, p, "Stock: Infosys Limited (INFY.NS)")
	assert.Contains(t, p, "Sector: Technology / IT Services")
	assert.Contains(t, p, "Conviction score: 90/100")
	assert.Contains(t, p, "Signals: Low P/E ratio (<18); EPS is positive")
	assert.Contains(t, p, "P/E: 15, P/B: n/a")
	assert.Contains(t, p, "30-day change: -12%")

	empty := BuildPrompt(contracts.ThesisInput{Symbol: "X", Name: "X"})
	assert.Contains(t, empty, "Signals: none")
	assert.NotContains(t, empty, "Sector:")
}
