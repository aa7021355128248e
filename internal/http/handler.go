package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
)

// maxBodyBytes caps request bodies; selections beyond this are not translation input.
const maxBodyBytes = 1 << 20

// Service is the engine surface the handlers drive.
type Service interface {
	Translate(ctx context.Context, req *domain.TranslationRequest) (*domain.TranslationResult, error)
	TranslateStream(ctx context.Context, req *domain.TranslationRequest, listener domain.StreamListener) error
	Summarize(ctx context.Context, req *domain.SummarizeRequest) (*domain.SummarizeResult, error)
	Reply(ctx context.Context, req *domain.ReplyRequest) (*domain.ReplyResult, error)
	CheckStatus(ctx context.Context, providerName, endpoint string) domain.ProviderStatus
	Preload(ctx context.Context, providerName, endpoint, model string) error
	ListModels(ctx context.Context, providerName, endpoint string) ([]domain.ModelInfo, error)
}

// Handler handles HTTP requests.
type Handler struct {
	service Service
	metrics *observability.Metrics
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(service Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
	}
}

// translateRequest adds the transport choice to a translation request.
type translateRequest struct {
	domain.TranslationRequest
	Stream bool `json:"stream,omitempty"`
}

type preloadRequest struct {
	Provider string `json:"provider,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	Model    string `json:"model,omitempty"`
}

type detectRequest struct {
	Text string `json:"text"`
}

// HandleTranslate translates text, as JSON or as an SSE stream.
func (h *Handler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := observability.WithModel(r.Context(), req.Model)
	logger := observability.FromContext(ctx)
	logger.Info("translate request received",
		observability.Int("text_length", len([]rune(req.Text))),
		observability.Bool("stream", req.Stream),
	)

	if req.Stream {
		h.handleStream(ctx, w, &req.TranslationRequest)
		return
	}

	result, err := h.service.Translate(ctx, &req.TranslationRequest)
	if err != nil {
		logger.Error("translation failed", observability.Error(err))
		writeError(w, err)
		return
	}

	logger.Info("translation succeeded", observability.Uint64("duration_ms", result.DurationMs))
	writeJSON(w, http.StatusOK, result)
}

// HandleSummarize summarizes text in its own language.
func (h *Handler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	var req domain.SummarizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := observability.WithModel(r.Context(), req.Model)
	result, err := h.service.Summarize(ctx, &req)
	if err != nil {
		observability.FromContext(ctx).Error("summarize failed", observability.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleReply drafts a business reply.
func (h *Handler) HandleReply(w http.ResponseWriter, r *http.Request) {
	var req domain.ReplyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := observability.WithModel(r.Context(), req.Model)
	result, err := h.service.Reply(ctx, &req)
	if err != nil {
		observability.FromContext(ctx).Error("reply failed", observability.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleDetect reports the detected language of text without calling a model.
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, domain.DetectLanguage(req.Text))
}

// HandleStatus runs a fresh health check against the runtime.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := h.service.CheckStatus(r.Context(), query.Get("provider"), query.Get("endpoint"))
	writeJSON(w, http.StatusOK, status)
}

// HandlePreload warms up a model.
func (h *Handler) HandlePreload(w http.ResponseWriter, r *http.Request) {
	var req preloadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.Preload(r.Context(), req.Provider, req.Endpoint, req.Model); err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Code: "preload_failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

// HandleModels lists the models installed in the runtime.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	models, err := h.service.ListModels(r.Context(), query.Get("provider"), query.Get("endpoint"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]domain.ModelInfo{"models": models})
}

// HandleMetrics writes a JSON snapshot of the process metrics.
func (h *Handler) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if h.metrics == nil {
		fmt.Fprint(w, "{}")
		return
	}
	h.metrics.WriteJSON(w)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidRequest.Error()+": ")
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("invalid request body: %s", msg),
			Code:  codeInvalidRequest,
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Already written status, can't change it, just log.
		observability.FromContext(context.Background()).Warn("failed to encode response", observability.Error(err))
	}
}
