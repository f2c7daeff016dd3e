package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/conviction-radar/internal/contracts"
)

func TestRenderScore(t *testing.T) {
	r := &contracts.ScoreResult{
		Symbol:      "KOTAKBANK.NS",
		Name:        "Kotak Mahindra Bank",
		Exchange:    "NSI",
		Sector:      "Financial Services",
		Score:       35,
		Summary:     "Signals: Low P/E ratio (<18); EPS is positive",
		Explanation: "- Low P/E ratio (<18)\n- EPS is positive",
	}

	var buf bytes.Buffer
	renderScore(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Kotak Mahindra Bank (KOTAKBANK.NS)")
	assert.Contains(t, out, "Exchange : NSI")
	assert.Contains(t, out, "Sector   : Financial Services\n")
	assert.Contains(t, out, "Conviction Score: 35/100")
	assert.Contains(t, out, "Signals: Low P/E ratio (<18); EPS is positive")
	assert.Contains(t, out, "Why flagged:\n- Low P/E ratio (<18)\n- EPS is positive")
}

func TestRenderScore_MissingMetadata(t *testing.T) {
	var buf bytes.Buffer
	renderScore(&buf, &contracts.ScoreResult{Symbol: "XYZ"})
	out := buf.String()

	assert.Contains(t, out, "XYZ (XYZ)")
	assert.Contains(t, out, "Exchange : -")
	assert.NotContains(t, out, "Sector")
	assert.Contains(t, out, "Conviction Score: 0/100")
}

func TestRenderBatch(t *testing.T) {
	report := &contracts.BatchReport{
		RunID:  "run-1",
		Total:  3,
		Failed: 1,
		Ranked: []contracts.ScoreResult{
			{Symbol: "D", Name: "Delta", Score: 70, Rank: 1, Summary: "Signals: a"},
			{Symbol: "A", Score: 40, Rank: 2, Summary: "Signals: b"},
		},
		Errors: []contracts.BatchError{{Symbol: "B", Error: "B: data unavailable"}},
	}

	var buf bytes.Buffer
	renderBatch(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Run ID  : run-1")
	assert.Contains(t, out, "Scanned : 3 (failed 1)")
	assert.Less(t, strings.Index(out, "Delta"), strings.Index(out, "Signals: b"))
	assert.Contains(t, out, "B: data unavailable")
}

func TestRenderBatch_NoCandidates(t *testing.T) {
	var buf bytes.Buffer
	renderBatch(&buf, &contracts.BatchReport{RunID: "r", Total: 2})

	assert.Contains(t, buf.String(), "No candidates")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, &contracts.ScoreResult{Symbol: "AAPL", Score: 20}))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "AAPL", got["ticker"])
	assert.EqualValues(t, 20, got["score"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Berkshire…", truncate("Berkshire Hathaway", 10))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"score", "batch", "api", "scheduler", "universe"} {
		assert.True(t, names[want], want)
	}
}

func TestWarnNoThesisProvider(t *testing.T) {
	tests := []struct {
		name      string
		requested bool
		enabled   bool
		want      bool
	}{
		{"requested without provider", true, false, true},
		{"requested with provider", true, true, false},
		{"not requested", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.want, warnNoThesisProvider(&buf, tt.requested, tt.enabled))
			if tt.want {
				assert.Contains(t, buf.String(), "No thesis provider configured")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
