// Package echo provides an offline provider that answers with the text it
// was asked to process. It needs no runtime and is deterministic, which
// makes it useful for wiring checks and UI development.
package echo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
)

const (
	providerName = "echo"
	modelName    = "echo"
	chunkDelay   = 10 * time.Millisecond
)

// Provider implements the domain.Provider interface without network calls.
type Provider struct {
	name       string
	chunkDelay time.Duration
}

// NewProvider creates a new echo provider.
func NewProvider() *Provider {
	return &Provider{
		name:       providerName,
		chunkDelay: chunkDelay,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Chat returns the payload of the last user message.
func (p *Provider) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", domain.ErrInvalidRequest)
	}

	content := echoContent(req.Messages)
	observability.FromContext(ctx).Debug("echoing request",
		observability.Int("words", len(strings.Fields(content))))

	return &domain.ChatResponse{Content: content}, nil
}

// ChatStream streams the payload word by word, then a done fragment.
func (p *Provider) ChatStream(ctx context.Context, req *domain.ChatRequest) (<-chan domain.StreamFragment, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", domain.ErrInvalidRequest)
	}

	words := strings.Fields(echoContent(req.Messages))
	fragments := make(chan domain.StreamFragment)

	go func() {
		defer close(fragments)

		for i, word := range words {
			delta := word
			if i < len(words)-1 {
				delta += " "
			}

			select {
			case <-ctx.Done():
				return
			case fragments <- domain.StreamFragment{Content: delta, HasContent: true}:
				time.Sleep(p.chunkDelay)
			}
		}

		select {
		case fragments <- domain.StreamFragment{HasContent: true, Done: true}:
		case <-ctx.Done():
		}
	}()

	return fragments, nil
}

// Status is always available.
func (p *Provider) Status(_ context.Context, _ string) domain.ProviderStatus {
	return domain.Available()
}

// Preload has nothing to load.
func (p *Provider) Preload(_ context.Context, _, _ string) error {
	return nil
}

// ListModels returns the single echo model.
func (p *Provider) ListModels(_ context.Context, _ string) ([]domain.ModelInfo, error) {
	return []domain.ModelInfo{{Name: modelName}}, nil
}

// echoContent drops the instruction line of the last user message and
// returns the rest.
func echoContent(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "user" {
			continue
		}
		_, payload, found := strings.Cut(messages[i].Content, "\n")
		if !found {
			return strings.TrimSpace(messages[i].Content)
		}
		return strings.TrimSpace(payload)
	}
	return ""
}
