package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
)

const (
	wsReadBufferSize  = 4096
	wsWriteBufferSize = 4096
	wsWriteWait       = 10 * time.Second
)

// wsFrame is one server-to-client message on the live channel.
type wsFrame struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsReadBufferSize,
	WriteBufferSize: wsWriteBufferSize,
	// Origins are enforced by the CORS layer for plain requests; the live
	// channel serves local desktop clients.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsListener forwards stream events as JSON frames.
type wsListener struct {
	ctx    context.Context
	conn   *websocket.Conn
	cancel context.CancelFunc
}

func (l *wsListener) OnChunk(event domain.StreamChunkEvent) {
	l.send(domain.EventTranslationChunk, event)
}

func (l *wsListener) OnComplete(event domain.StreamCompleteEvent) {
	l.send(domain.EventTranslationComplete, event)
}

func (l *wsListener) send(event string, payload interface{}) {
	_ = l.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := l.conn.WriteJSON(wsFrame{Event: event, Payload: payload}); err != nil {
		observability.FromContext(l.ctx).Warn("websocket write failed", observability.Error(err))
		l.cancel()
	}
}

// HandleWebSocket serves streaming translations over a websocket. Each text
// message is a translation request; requests on one connection run in order.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", observability.Error(err))
		return
	}
	defer conn.Close()

	logger.Info("websocket connected")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				logger.Debug("websocket read ended", observability.Error(err))
			}
			logger.Info("websocket disconnected")
			return
		}

		var req domain.TranslationRequest
		if err := json.Unmarshal(message, &req); err != nil {
			frame := wsFrame{Event: eventError, Payload: errorResponse{
				Error: "invalid request body: " + err.Error(),
				Code:  codeInvalidRequest,
			}}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
			continue
		}

		if !h.serveWebSocketRequest(r.Context(), conn, &req) {
			return
		}
	}
}

// serveWebSocketRequest runs one streaming translation and reports whether
// the connection is still usable.
func (h *Handler) serveWebSocketRequest(parent context.Context, conn *websocket.Conn, req *domain.TranslationRequest) bool {
	ctx, cancel := context.WithCancel(observability.WithRequestID(parent, observability.GenerateRequestID()))
	defer cancel()

	listener := &wsListener{ctx: ctx, conn: conn, cancel: cancel}

	if err := h.service.TranslateStream(ctx, req, listener); err != nil {
		if ctx.Err() != nil {
			return false
		}
		observability.FromContext(ctx).Error("websocket stream failed", observability.Error(err))
		_, body := classifyError(err)
		listener.send(eventError, body)
	}

	return ctx.Err() == nil
}
