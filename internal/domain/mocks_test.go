package domain_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/davidbz/transly/internal/domain"
)

// mockRegistry is a mock implementation of ProviderRegistry for testing.
type mockRegistry struct {
	providers map[string]domain.Provider
	getError  error
}

func newMockRegistry(providers ...domain.Provider) *mockRegistry {
	m := &mockRegistry{providers: make(map[string]domain.Provider)}
	for _, p := range providers {
		m.providers[p.Name()] = p
	}
	return m
}

func (m *mockRegistry) Register(_ context.Context, provider domain.Provider) error {
	m.providers[provider.Name()] = provider
	return nil
}

func (m *mockRegistry) Get(_ context.Context, providerName string) (domain.Provider, error) {
	if m.getError != nil {
		return nil, m.getError
	}

	provider, exists := m.providers[providerName]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", providerName)
	}
	return provider, nil
}

func (m *mockRegistry) List(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names, nil
}

// mockRouter routes to the explicit provider, else to name.
type mockRouter struct {
	name string
	err  error
}

func (m *mockRouter) Route(_ context.Context, req *domain.RouteRequest) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if req.Provider != "" {
		return req.Provider, nil
	}
	return m.name, nil
}

// mockProvider is a mock implementation of Provider for testing.
type mockProvider struct {
	name       string
	chatFunc   func(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error)
	streamFunc func(ctx context.Context, req *domain.ChatRequest) (<-chan domain.StreamFragment, error)
	status     domain.ProviderStatus
	preloadErr error
	models     []domain.ModelInfo

	mu           sync.Mutex
	requests     []*domain.ChatRequest
	preloadCalls int
}

func (m *mockProvider) record(req *domain.ChatRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
}

func (m *mockProvider) lastRequest() *domain.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockProvider) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	m.record(req)
	if m.chatFunc != nil {
		return m.chatFunc(ctx, req)
	}
	return &domain.ChatResponse{Content: "test response"}, nil
}

func (m *mockProvider) ChatStream(
	ctx context.Context,
	req *domain.ChatRequest,
) (<-chan domain.StreamFragment, error) {
	m.record(req)
	if m.streamFunc != nil {
		return m.streamFunc(ctx, req)
	}
	return fragmentsOf(
		domain.StreamFragment{Content: "test", HasContent: true},
		domain.StreamFragment{Content: "", HasContent: true, Done: true},
	), nil
}

func (m *mockProvider) Status(_ context.Context, _ string) domain.ProviderStatus {
	return m.status
}

func (m *mockProvider) Preload(_ context.Context, _, _ string) error {
	m.mu.Lock()
	m.preloadCalls++
	m.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	return m.preloadErr
}

func (m *mockProvider) ListModels(_ context.Context, _ string) ([]domain.ModelInfo, error) {
	return m.models, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func fragmentsOf(fragments ...domain.StreamFragment) <-chan domain.StreamFragment {
	ch := make(chan domain.StreamFragment, len(fragments))
	for _, f := range fragments {
		ch <- f
	}
	close(ch)
	return ch
}

// recordingListener captures stream events in arrival order.
type recordingListener struct {
	order     []string
	chunks    []domain.StreamChunkEvent
	completes []domain.StreamCompleteEvent
}

func (l *recordingListener) OnChunk(event domain.StreamChunkEvent) {
	l.order = append(l.order, "chunk")
	l.chunks = append(l.chunks, event)
}

func (l *recordingListener) OnComplete(event domain.StreamCompleteEvent) {
	l.order = append(l.order, "complete")
	l.completes = append(l.completes, event)
}

// memoryCache is an in-memory ResultCache.
type memoryCache struct {
	entries map[string]string
	getErr  error
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	value, ok := c.entries[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.sets++
	c.entries[key] = value
	return nil
}

// recordingPublisher captures published event types.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	data   []map[string]interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, data map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	p.data = append(p.data, data)
}

func testSettings() domain.Settings {
	return domain.Settings{
		Endpoint:  "http://localhost:11434",
		Model:     "qwen2.5:3b",
		ReplyMode: domain.ReplyModeBilingual,
		CacheTTL:  time.Hour,
	}
}

func newTestService(provider *mockProvider) *domain.TranslationService {
	return domain.NewTranslationService(
		newMockRegistry(provider),
		&mockRouter{name: provider.name},
		nil,
		nil,
		testSettings(),
	)
}
