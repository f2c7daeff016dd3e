package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/conviction-radar/internal/brain"
	"github.com/wonny/conviction-radar/internal/contracts"
	"github.com/wonny/conviction-radar/pkg/logger"
)

func dialStream(t *testing.T, h *ScoreHandler, query string) *websocket.Conn {
	conn, _ := dialStreamResponse(t, h, query)
	return conn
}

func dialStreamResponse(t *testing.T, h *ScoreHandler, query string) (*websocket.Conn, *http.Response) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(h.StreamBatch))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/batch" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, resp
}

// stallingPipeline reports one ticker, then blocks until the run is cancelled
type stallingPipeline struct {
	fakePipeline
	cancelled chan error
}

func (p *stallingPipeline) ScoreBatch(ctx context.Context, tickers []string, cfg brain.RunConfig) (*contracts.BatchReport, error) {
	score := &contracts.ScoreResult{Symbol: tickers[0], Score: 10}
	cfg.Progress(1, len(tickers), contracts.BatchEntry{Index: 0, Symbol: tickers[0], Result: score})

	select {
	case <-ctx.Done():
		p.cancelled <- ctx.Err()
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		p.cancelled <- nil
		return &contracts.BatchReport{Total: len(tickers)}, nil
	}
}

func TestStreamBatch_ClientDisconnectCancelsRun(t *testing.T) {
	sp := &stallingPipeline{cancelled: make(chan error, 1)}
	h := NewScoreHandler(sp, nil, "default", logger.Nop())
	conn := dialStream(t, h, "?tickers=AAPL,MSFT")

	var first StreamMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "progress", first.Type)

	// 클라이언트가 배치 도중 떠남
	require.NoError(t, conn.Close())

	select {
	case err := <-sp.cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("batch was not cancelled after the client left")
	}
}

func TestStreamBatch_ThesisWarningHeader(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		enabled     bool
		wantWarning bool
	}{
		{"thesis without provider", "?tickers=AAPL&thesis=true", false, true},
		{"thesis with provider", "?tickers=AAPL&thesis=true", true, false},
		{"thesis not requested", "?tickers=AAPL", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fp := newTestHandler()
			fp.thesisEnabled = tt.enabled

			_, resp := dialStreamResponse(t, h, tt.query)
			assert.Equal(t, tt.wantWarning, resp.Header.Get(ThesisWarningHeader) != "")
		})
	}
}

func TestStreamBatch_ProgressThenResult(t *testing.T) {
	h, _ := newTestHandler()
	conn := dialStream(t, h, "?tickers=AAPL,ZZZZ,MSFT")

	var msgs []StreamMessage
	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		msgs = append(msgs, msg)
		if msg.Type == "result" || msg.Type == "error" {
			break
		}
	}

	require.Len(t, msgs, 4)
	for i, msg := range msgs[:3] {
		assert.Equal(t, "progress", msg.Type)
		assert.Equal(t, i+1, msg.Done)
		assert.Equal(t, 3, msg.Total)
	}

	assert.Equal(t, "AAPL", msgs[0].Ticker)
	require.NotNil(t, msgs[0].Score)
	assert.Equal(t, 15, *msgs[0].Score)

	assert.Equal(t, "ZZZZ", msgs[1].Ticker)
	assert.Nil(t, msgs[1].Score)
	assert.Contains(t, msgs[1].Error, "data unavailable")

	final := msgs[3]
	assert.Equal(t, "result", final.Type)
	require.NotNil(t, final.Report)
	assert.Equal(t, 3, final.Report.Total)
	assert.Equal(t, 1, final.Report.Failed)
}

func TestStreamBatch_UnknownUniverse(t *testing.T) {
	h, _ := newTestHandler()
	conn := dialStream(t, h, "?universe=watchlist")

	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "watchlist")
}

func TestStreamBatch_RejectsBadQuery(t *testing.T) {
	h, _ := newTestHandler()
	rec := httptest.NewRecorder()

	h.StreamBatch(rec, httptest.NewRequest(http.MethodGet, "/ws/batch?thesis=nope", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
