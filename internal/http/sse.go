package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
)

const eventError = "error"

// sseListener writes stream events as server-sent events.
type sseListener struct {
	w       http.ResponseWriter
	flusher http.Flusher
	cancel  context.CancelFunc
	ctx     context.Context
}

func (l *sseListener) OnChunk(event domain.StreamChunkEvent) {
	l.write(domain.EventTranslationChunk, event)
}

func (l *sseListener) OnComplete(event domain.StreamCompleteEvent) {
	l.write(domain.EventTranslationComplete, event)
}

// write cancels the translation when the client has gone away.
func (l *sseListener) write(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		observability.FromContext(l.ctx).Error("failed to encode stream event", observability.Error(err))
		return
	}

	if _, err := fmt.Fprintf(l.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		observability.FromContext(l.ctx).Warn("client went away", observability.Error(err))
		l.cancel()
		return
	}
	l.flusher.Flush()
}

func (h *Handler) handleStream(ctx context.Context, w http.ResponseWriter, req *domain.TranslationRequest) {
	logger := observability.FromContext(ctx)
	logger.Info("stream request started")

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming not supported")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming not supported", Code: codeInternal})
		return
	}

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listener := &sseListener{w: w, flusher: flusher, cancel: cancel, ctx: ctx}

	if err := h.service.TranslateStream(ctx, req, listener); err != nil {
		logger.Error("stream failed", observability.Error(err))
		_, body := classifyError(err)
		listener.write(eventError, body)
		return
	}

	logger.Info("stream completed")
}
