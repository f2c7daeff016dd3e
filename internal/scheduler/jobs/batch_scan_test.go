package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/conviction-radar/internal/brain"
	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/logger"
)

type fakeScanner struct {
	report *contracts.BatchReport
	err    error
	seen   []string
}

func (f *fakeScanner) ScoreUniverse(_ context.Context, src contracts.UniverseSource, _ brain.RunConfig) (*contracts.BatchReport, error) {
	f.seen = append(f.seen, src.Name())
	return f.report, f.err
}

type namedSource string

func (n namedSource) Name() string { return string(n) }

func (n namedSource) Tickers(context.Context) ([]string, error) { return []string{"AAPL"}, nil }

func TestBatchScanJob_Run(t *testing.T) {
	tests := []struct {
		name       string
		report     *contracts.BatchReport
		scanErr    error
		wantErr    bool
		wantLatest bool
	}{
		{
			name: "ranked",
			report: &contracts.BatchReport{RunID: "r1", Total: 2, Failed: 1, Ranked: []contracts.ScoreResult{
				{Symbol: "AAPL", Score: 15, Rank: 1, Summary: "Signals: EPS is positive"},
			}},
			wantLatest: true,
		},
		{
			name:       "all failed is retried",
			report:     &contracts.BatchReport{RunID: "r2", Total: 3, Failed: 3},
			wantErr:    true,
			wantLatest: true,
		},
		{
			name:    "universe error",
			scanErr: errors.New("universe unavailable"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := &fakeScanner{report: tt.report, err: tt.scanErr}
			job := NewBatchScanJob(scanner, namedSource("default"), "0 30 16 * * 1-5", 5, logger.Nop())

			err := job.Run(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, []string{"default"}, scanner.seen)
			if tt.wantLatest {
				assert.Same(t, tt.report, job.Latest())
			} else {
				assert.Nil(t, job.Latest())
			}
		})
	}
}

func TestBatchScanJob_Metadata(t *testing.T) {
	job := NewBatchScanJob(&fakeScanner{}, namedSource("sp500"), "@daily", 0, logger.Nop())
	assert.Equal(t, BatchScanJobName, job.Name())
	assert.Equal(t, "@daily", job.Schedule())
}
