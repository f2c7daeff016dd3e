package s2_signals

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/conviction-radar/internal/contracts"
)

func TestCompose_Order(t *testing.T) {
	f := contracts.Fundamentals{Symbol: "X", PE: contracts.Some(12)}
	ev := Evaluate(f, contracts.IndicatorSet{})
	obs := []Observation{{Kind: ObservationRSI, Text: "RSI(14) is 50.0: neutral."}}
	narrative := "Solid franchise at a fair price."

	got := Compose(ev, obs, &narrative)

	assert.Equal(t,
		"- P/E ratio is 12.00, which is low for its sector.\n"+
			"- RSI(14) is 50.0: neutral.\n"+
			"- "+FallbackLine+"\n\n"+
			ThesisLabel+narrative,
		got)
}

func TestCompose_Fallback(t *testing.T) {
	tests := []struct {
		name         string
		score        int
		wantFallback bool
	}{
		{"zero", 0, true},
		{"just under", 39, true},
		{"at threshold", 40, false},
		{"high", 90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(Evaluation{Score: tt.score}, nil, nil)
			assert.Equal(t, tt.wantFallback, strings.Contains(got, FallbackLine))
		})
	}
}

func TestCompose_NarrativeVerbatim(t *testing.T) {
	narrative := "line one\n- not a bullet of ours\nAI Thesis: nested"
	got := Compose(Evaluation{Score: 50}, nil, &narrative)

	assert.Equal(t, ThesisLabel+narrative, got)
}

func TestCompose_NoNarrative(t *testing.T) {
	got := Compose(Evaluation{Score: 0}, nil, nil)

	assert.Equal(t, "- "+FallbackLine, got)
	assert.NotContains(t, got, ThesisLabel)
}
