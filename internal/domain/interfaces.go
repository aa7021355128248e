package domain

import (
	"context"
	"time"
)

// Provider is a chat-completion backend.
type Provider interface {
	// Chat sends a request and returns the whole answer.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ChatStream sends a request and returns decoded fragments in order.
	// The channel is closed after a Done fragment, an error fragment, or
	// the end of the body. Cancelling ctx aborts the connection.
	ChatStream(ctx context.Context, req *ChatRequest) (<-chan StreamFragment, error)

	// Status runs a health check against endpoint.
	Status(ctx context.Context, endpoint string) ProviderStatus

	// Preload loads model into memory. Errors are display strings.
	Preload(ctx context.Context, endpoint, model string) error

	// ListModels returns the models installed at endpoint.
	ListModels(ctx context.Context, endpoint string) ([]ModelInfo, error)

	// Name returns the provider identifier.
	Name() string
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// List returns all available providers.
	List(ctx context.Context) ([]string, error)
}

// Router determines which provider serves a request.
type Router interface {
	// Route selects a provider name based on request criteria.
	Route(ctx context.Context, req *RouteRequest) (string, error)
}

// RouteRequest contains criteria for provider selection.
type RouteRequest struct {
	Provider string
	Endpoint string
}

// StreamListener receives the events of one streaming translation.
// Calls happen on the goroutine running TranslateStream.
type StreamListener interface {
	OnChunk(event StreamChunkEvent)
	OnComplete(event StreamCompleteEvent)
}

// ListenerFuncs adapts two functions to StreamListener.
type ListenerFuncs struct {
	Chunk    func(StreamChunkEvent)
	Complete func(StreamCompleteEvent)
}

// OnChunk implements StreamListener.
func (l ListenerFuncs) OnChunk(event StreamChunkEvent) {
	if l.Chunk != nil {
		l.Chunk(event)
	}
}

// OnComplete implements StreamListener.
func (l ListenerFuncs) OnComplete(event StreamCompleteEvent) {
	if l.Complete != nil {
		l.Complete(event)
	}
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

// ResultCache stores finished translations.
type ResultCache interface {
	// Get returns ErrCacheMiss when key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
