// Package openai adapts OpenAI-compatible chat servers to domain.Provider
// using the official SDK. One SDK client is kept per endpoint, all of them
// riding on the shared pooled HTTP client.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
	"github.com/davidbz/transly/internal/transport"
)

const (
	providerName      = "openai"
	preloadPrompt     = "hi"
	preloadTimedOut   = "Preload timed out."
	statusTimedOut    = "Connection timed out."
	preloadMaxTokens  = 1
	repeatPenaltyJSON = "repeat_penalty"
)

// Provider implements the domain.Provider interface for OpenAI-compatible servers.
type Provider struct {
	config Config
	name   string

	mu      sync.RWMutex
	clients map[string]openai.Client
}

// NewProvider creates a new OpenAI-compatible provider.
func NewProvider(config Config) *Provider {
	return &Provider{
		config:  config,
		name:    providerName,
		clients: make(map[string]openai.Client),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// client returns the SDK client for endpoint, creating it on first use.
func (p *Provider) client(endpoint string) openai.Client {
	base := strings.TrimRight(endpoint, "/")

	p.mu.RLock()
	c, ok := p.clients[base]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[base]; ok {
		return c
	}

	c = openai.NewClient(
		option.WithBaseURL(base+"/"),
		option.WithAPIKey(p.config.APIKey),
		option.WithHTTPClient(transport.Shared()),
		option.WithMaxRetries(p.config.MaxRetries),
	)
	p.clients[base] = c
	return c
}

// Chat sends a non-streaming completion request.
func (p *Provider) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", domain.ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, transport.RequestTimeout)
	defer cancel()

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI-compatible API", observability.String("endpoint", req.Endpoint))

	client := p.client(req.Endpoint)
	resp, err := client.Chat.Completions.New(ctx, toSDKParams(req), requestOptions(req)...)
	if err != nil {
		logger.Error("OpenAI-compatible API call failed", observability.Error(err))
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 {
		return nil, domain.NewAPIError("response has no choices")
	}

	logger.Debug("OpenAI-compatible API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return &domain.ChatResponse{Content: resp.Choices[0].Message.Content}, nil
}

// ChatStream sends a streaming completion request and converts SDK chunks
// into fragments. A chunk with a finish reason is the done fragment.
func (p *Provider) ChatStream(ctx context.Context, req *domain.ChatRequest) (<-chan domain.StreamFragment, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", domain.ErrInvalidRequest)
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI-compatible streaming API", observability.String("endpoint", req.Endpoint))

	client := p.client(req.Endpoint)
	stream := client.Chat.Completions.NewStreaming(ctx, toSDKParams(req), requestOptions(req)...)

	fragments := make(chan domain.StreamFragment)

	go func() {
		defer close(fragments)
		defer stream.Close()
		defer logger.Debug("OpenAI-compatible stream completed")

		send := func(fragment domain.StreamFragment) bool {
			select {
			case fragments <- fragment:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}

			choice := chunk.Choices[0]
			done := choice.FinishReason != ""

			// Role-only deltas open the stream without text.
			if choice.Delta.Content == "" && !done {
				continue
			}

			if !send(domain.StreamFragment{Content: choice.Delta.Content, HasContent: true, Done: done}) || done {
				return
			}
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logger.Warn("OpenAI-compatible stream failed", observability.Error(err))
			send(domain.StreamFragment{Err: classify(err)})
		}
	}()

	return fragments, nil
}

// Preload sends a one-token completion so the server loads model.
// Errors are display strings.
func (p *Provider) Preload(ctx context.Context, endpoint, model string) error {
	ctx, cancel := context.WithTimeout(ctx, transport.RequestTimeout)
	defer cancel()

	client := p.client(endpoint)
	_, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(model),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage(preloadPrompt)},
		MaxTokens: openai.Int(preloadMaxTokens),
	})
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	switch {
	case errors.As(err, &apiErr):
		return fmt.Errorf("preload failed: %d", apiErr.StatusCode)
	case transport.IsTimeout(err):
		return errors.New(preloadTimedOut)
	case transport.IsRefused(err):
		return errors.New(transport.MessageNotRunning)
	default:
		return errors.New(err.Error())
	}
}

// Status lists models with the health deadline.
func (p *Provider) Status(ctx context.Context, endpoint string) domain.ProviderStatus {
	ctx, cancel := context.WithTimeout(ctx, transport.HealthTimeout)
	defer cancel()

	client := p.client(endpoint)
	if _, err := client.Models.List(ctx); err != nil {
		observability.FromContext(ctx).Debug("OpenAI-compatible status check failed", observability.Error(err))

		var apiErr *openai.Error
		switch {
		case errors.As(err, &apiErr):
			return domain.Unavailable(fmt.Sprintf("HTTP error: %d", apiErr.StatusCode))
		case transport.IsTimeout(err):
			return domain.Unavailable(statusTimedOut)
		case transport.IsRefused(err):
			return domain.Unavailable(transport.MessageNotRunning)
		default:
			return domain.Unavailable(err.Error())
		}
	}

	return domain.Available()
}

// ListModels returns the models the server advertises. Sizes are unknown.
func (p *Provider) ListModels(ctx context.Context, endpoint string) ([]domain.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, transport.HealthTimeout)
	defer cancel()

	client := p.client(endpoint)
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, classify(err)
	}

	models := make([]domain.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, domain.ModelInfo{Name: m.ID})
	}
	return models, nil
}

// toSDKParams converts a domain request to SDK ChatCompletionNewParams.
func toSDKParams(req *domain.ChatRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, len(req.Messages))
	for i, msg := range req.Messages {
		switch msg.Role {
		case "system":
			messages[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			messages[i] = openai.AssistantMessage(msg.Content)
		default:
			messages[i] = openai.UserMessage(msg.Content)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Params.Temperature),
	}

	if req.Params.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Params.MaxOutputTokens))
	}
	if req.Params.TopP != nil {
		params.TopP = openai.Float(*req.Params.TopP)
	}

	return params
}

// requestOptions carries sampling options the OpenAI schema has no field for.
// Compatible local servers honor them; others ignore unknown keys.
func requestOptions(req *domain.ChatRequest) []option.RequestOption {
	return []option.RequestOption{
		option.WithJSONSet(repeatPenaltyJSON, req.Params.RepeatPenalty),
	}
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return domain.NewStatusError(apiErr.StatusCode, apiErr.Message)
	}
	return transport.Classify(err)
}
