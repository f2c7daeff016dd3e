package contracts

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreResult_Clone(t *testing.T) {
	thesis := "cheap and profitable"
	orig := ScoreResult{
		Symbol:       "AAPL",
		Score:        90,
		Reasons:      []string{"Low P/E ratio (<18)"},
		Observations: []string{"RSI(14) is 45.0: neutral."},
		Thesis:       &thesis,
	}

	cp := orig.Clone()
	cp.Reasons[0] = "changed"
	cp.Observations[0] = "changed"
	*cp.Thesis = "changed"

	assert.Equal(t, "Low P/E ratio (<18)", orig.Reasons[0])
	assert.Equal(t, "RSI(14) is 45.0: neutral.", orig.Observations[0])
	assert.Equal(t, "cheap and profitable", *orig.Thesis)
}

func TestScoreResult_HasThesis(t *testing.T) {
	blank := "   "
	text := "story"

	tests := []struct {
		name   string
		thesis *string
		want   bool
	}{
		{"nil", nil, false},
		{"blank", &blank, false},
		{"text", &text, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ScoreResult{Thesis: tt.thesis}
			assert.Equal(t, tt.want, r.HasThesis())
		})
	}
}

func TestSummaryFor(t *testing.T) {
	assert.Equal(t, "Signals: ", SummaryFor(nil))
	assert.Equal(t,
		"Signals: Low P/E ratio (<18); EPS is positive",
		SummaryFor([]string{"Low P/E ratio (<18)", "EPS is positive"}),
	)
}

func TestScoreResult_JSON(t *testing.T) {
	r := ScoreResult{
		Symbol: "INFY.NS",
		Name:   "Infosys Limited",
		Score:  35,
		Fundamentals: Fundamentals{
			Symbol: "INFY.NS",
			PE:     Some(22.5),
		},
		Indicators: IndicatorSet{
			RSI14: Some(41.2),
		},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "INFY.NS", raw["ticker"])
	assert.NotContains(t, raw, "thesis")
	assert.NotContains(t, raw, "rank")

	fund := raw["fundamentals"].(map[string]interface{})
	assert.Equal(t, 22.5, fund["pe"])
	assert.Nil(t, fund["roe"])

	ind := raw["indicators"].(map[string]interface{})
	assert.Equal(t, 41.2, ind["rsi_14"])
	assert.Nil(t, ind["sma_50"])
}

func TestBatchEntry_Failed(t *testing.T) {
	ok := BatchEntry{Symbol: "MSFT", Result: &ScoreResult{Score: 50}}
	failed := BatchEntry{Symbol: "XXXX", Err: DataUnavailable("XXXX", errors.New("404"))}
	empty := BatchEntry{Symbol: "YYYY"}

	assert.False(t, ok.Failed())
	assert.Equal(t, "", ok.ErrorMessage())

	assert.True(t, failed.Failed())
	assert.Contains(t, failed.ErrorMessage(), "404")

	assert.True(t, empty.Failed())
	assert.Equal(t, "no result", empty.ErrorMessage())
}

func TestDataUnavailable(t *testing.T) {
	err := DataUnavailable("TSLA", errors.New("timeout"))
	assert.True(t, IsDataUnavailable(err))
	assert.True(t, errors.Is(err, ErrDataUnavailable))
	assert.Contains(t, err.Error(), "TSLA")
	assert.Contains(t, err.Error(), "timeout")

	assert.True(t, IsDataUnavailable(DataUnavailable("TSLA", nil)))
	assert.False(t, IsDataUnavailable(errors.New("other")))
}
