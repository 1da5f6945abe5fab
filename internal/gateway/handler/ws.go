package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"askdata/internal/gateway/middleware"
	"askdata/internal/llm"
	"askdata/internal/pipeline"
	"askdata/internal/session"
	"askdata/internal/types"
)

const (
	analyzeWSWriteWait = 10 * time.Second
	analyzeWSPongWait  = 60 * time.Second
	analyzeWSPingEvery = (analyzeWSPongWait * 9) / 10
)

var analyzeWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type analyzeWSOutbound struct {
	Type     string             `json:"type"`
	Stage    pipeline.Stage     `json:"stage,omitempty"`
	Intent   types.Intent       `json:"intent,omitempty"`
	RunID    string             `json:"runId,omitempty"`
	Response *pipeline.Response `json:"response,omitempty"`
	Code     string             `json:"code,omitempty"`
	Message  string             `json:"message,omitempty"`
}

// HandleAnalyzeWS serves GET /ws/analyze. The client sends one ChatRequest
// frame; the server answers with stage frames and a final result or error
// frame, then closes.
func (h *Handler) HandleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := analyzeWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(analyzeWSPongWait)); err != nil {
		h.log.Warn().Err(err).Msg("analyze ws set read deadline failed")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(analyzeWSPongWait))
	})

	writeCh := make(chan analyzeWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(analyzeWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out, ok := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(analyzeWSWriteWait)); err != nil {
					return
				}
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(analyzeWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	var in ChatRequest
	if err := conn.ReadJSON(&in); err != nil {
		pushAnalyzeWS(writeCh, analyzeWSOutbound{Type: "error", Code: "invalid_argument", Message: "invalid request frame"})
		close(writeCh)
		<-writerDone
		return
	}

	// Keep reading so pongs and client closes are observed during the run.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	runID, res, err := h.analyze(ctx, middleware.SessionID(r), in, func(ev pipeline.Event) {
		pushAnalyzeWS(writeCh, analyzeWSOutbound{Type: "stage", Stage: ev.Stage, Intent: ev.Intent})
	})
	if err != nil {
		code, msg := wsError(err)
		pushAnalyzeWS(writeCh, analyzeWSOutbound{Type: "error", Code: code, Message: msg})
	} else {
		pushAnalyzeWS(writeCh, analyzeWSOutbound{Type: "result", RunID: runID, Intent: res.Intent, Response: &res.Response})
	}
	close(writeCh)
	<-writerDone
}

func wsError(err error) (string, string) {
	switch {
	case errors.Is(err, errMissingMessage):
		return "invalid_argument", "Message is required"
	case errors.Is(err, session.ErrLimitReached):
		return "resource_exhausted", "Request limit reached for this session."
	}
	ge := llm.AsGenerationError(err)
	return string(ge.Kind), ge.UserMessage()
}

// pushAnalyzeWS never blocks; when the buffer is full the oldest frame is
// dropped.
func pushAnalyzeWS(writeCh chan analyzeWSOutbound, out analyzeWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
