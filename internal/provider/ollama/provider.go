// Package ollama talks to a local Ollama runtime over its native /api routes.
// Chat and preload go through resty on the shared pooled client; health checks
// and model listing use the runtime's own API client.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/ollama/ollama/api"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
	"github.com/davidbz/transly/internal/transport"
)

const (
	providerName = "ollama"
	chatPath     = "/api/chat"

	preloadPrompt     = "hi"
	preloadTimedOut   = "Preload timed out."
	statusTimedOut    = "Connection timed out."
	maxErrorBodyBytes = 4096
)

// Provider implements the domain.Provider interface for Ollama.
type Provider struct {
	http   *resty.Client
	health *http.Client
	name   string
}

// NewProvider creates a new Ollama provider on the process-wide clients.
func NewProvider() *Provider {
	return &Provider{
		http:   resty.NewWithClient(transport.Shared()),
		health: transport.Health(),
		name:   providerName,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Chat sends a non-streaming request and returns the whole answer.
func (p *Provider) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", domain.ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, transport.RequestTimeout)
	defer cancel()

	logger := observability.FromContext(ctx)
	logger.Debug("calling Ollama chat API", observability.String("endpoint", req.Endpoint))

	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(newChatRequest(req, false)).
		Post(chatURL(req.Endpoint))
	if err != nil {
		logger.Error("Ollama chat request failed", observability.Error(err))
		return nil, transport.Classify(err)
	}

	if resp.IsError() {
		return nil, domain.NewStatusError(resp.StatusCode(), errorBody(resp.Body()))
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, domain.NewAPIError(fmt.Sprintf("failed to parse response: %v", err))
	}
	if out.Error != "" {
		return nil, domain.NewAPIError(out.Error)
	}
	if out.Message == nil {
		return nil, domain.NewAPIError("response has no message")
	}

	logger.Debug("Ollama chat request succeeded", observability.Int("content_bytes", len(out.Message.Content)))

	return &domain.ChatResponse{Content: out.Message.Content}, nil
}

// Preload sends a one-word request so the runtime loads model and keeps it
// resident. Errors are display strings.
func (p *Provider) Preload(ctx context.Context, endpoint, model string) error {
	ctx, cancel := context.WithTimeout(ctx, transport.RequestTimeout)
	defer cancel()

	body := chatRequest{
		Model:     model,
		Messages:  []domain.ChatMessage{{Role: "user", Content: preloadPrompt}},
		Stream:    false,
		KeepAlive: domain.DefaultKeepAlive,
	}

	resp, err := p.http.R().SetContext(ctx).SetBody(body).Post(chatURL(endpoint))
	if err != nil {
		switch {
		case transport.IsTimeout(err):
			return errors.New(preloadTimedOut)
		case transport.IsRefused(err):
			return errors.New(transport.MessageNotRunning)
		default:
			return errors.New(err.Error())
		}
	}

	if resp.IsError() {
		return fmt.Errorf("preload failed: %s", resp.Status())
	}

	return nil
}

// Status probes GET /api/tags with the short-deadline client.
func (p *Provider) Status(ctx context.Context, endpoint string) domain.ProviderStatus {
	if _, err := p.list(ctx, endpoint); err != nil {
		// The runtime answered 2xx; only the tag listing was unreadable.
		if isDecodeError(err) {
			return domain.Available()
		}
		observability.FromContext(ctx).Debug("Ollama status check failed", observability.Error(err))
		return domain.Unavailable(statusReason(err))
	}
	return domain.Available()
}

// ListModels returns the models installed in the runtime.
func (p *Provider) ListModels(ctx context.Context, endpoint string) ([]domain.ModelInfo, error) {
	resp, err := p.list(ctx, endpoint)
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return nil, domain.NewStatusError(statusErr.StatusCode, statusErr.ErrorMessage)
		}
		return nil, transport.Classify(err)
	}

	models := make([]domain.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, domain.ModelInfo{Name: m.Name, Size: m.Size})
	}
	return models, nil
}

func (p *Provider) list(ctx context.Context, endpoint string) (*api.ListResponse, error) {
	base, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint %q: %w", domain.ErrInvalidRequest, endpoint, err)
	}
	return api.NewClient(base, p.health).List(ctx)
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func statusReason(err error) string {
	var statusErr api.StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("HTTP error: %d", statusErr.StatusCode)
	case transport.IsTimeout(err):
		return statusTimedOut
	case transport.IsRefused(err):
		return transport.MessageNotRunning
	default:
		return err.Error()
	}
}

func chatURL(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + chatPath
}

func errorBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}

	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		return wire.Error
	}
	return strings.TrimSpace(string(body))
}
