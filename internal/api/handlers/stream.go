package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/conviction-radar/internal/brain"
	"github.com/wonny/conviction-radar/internal/contracts"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait = 10 * time.Second

	// clients only send close frames
	maxClientMessage = 512
)

// StreamMessage is one websocket frame of a streamed batch
type StreamMessage struct {
	Type   string                 `json:"type"` // progress, result, error
	Done   int                    `json:"done,omitempty"`
	Total  int                    `json:"total,omitempty"`
	Ticker string                 `json:"ticker,omitempty"`
	Score  *int                   `json:"score,omitempty"`
	Error  string                 `json:"error,omitempty"`
	Report *contracts.BatchReport `json:"report,omitempty"`
}

// StreamBatch runs a batch and streams progress over a websocket
// GET /ws/batch?tickers=AAPL,MSFT&universe=default&thesis=false
func (h *ScoreHandler) StreamBatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := BatchRequest{
		Tickers:  splitTickers(q.Get("tickers")),
		Universe: q.Get("universe"),
	}
	if v := q.Get("thesis"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "thesis must be a boolean")
			return
		}
		req.Thesis = &parsed
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	header := http.Header{}
	h.warnThesis(header, req.Thesis != nil && *req.Thesis)

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	// 클라이언트 종료 → 배치 취소
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readUntilClosed(conn, cancel)

	send := func(msg StreamMessage) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.WithError(err).Debug("Websocket write failed")
		}
	}

	// progress 콜백은 orchestrator에서 직렬화됨 → 단일 writer 보장
	cfg := brain.RunConfig{
		Thesis: req.Thesis,
		Progress: func(done, total int, entry contracts.BatchEntry) {
			msg := StreamMessage{Type: "progress", Done: done, Total: total, Ticker: entry.Symbol}
			if entry.Failed() {
				msg.Error = entry.ErrorMessage()
			} else {
				score := entry.Result.Score
				msg.Score = &score
			}
			send(msg)
		},
	}

	report, err := h.run(ctx, req, cfg)
	if ctx.Err() != nil && r.Context().Err() == nil {
		h.logger.WithField("tickers", len(req.Tickers)).Info("Websocket client left, batch cancelled")
		return
	}
	if err != nil {
		send(StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	send(StreamMessage{Type: "result", Report: report})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(writeWait))
}

// readUntilClosed drains client frames (this also answers pings and close
// frames) and calls cancel once the connection is gone.
// gorilla allows one reader goroutine; this is it.
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxClientMessage)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
