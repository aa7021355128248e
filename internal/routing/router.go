package routing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/davidbz/transly/internal/domain"
)

// OpenAICompatibleProvider serves endpoints whose path ends in /v1.
const OpenAICompatibleProvider = "openai"

const openAIPathSuffix = "/v1"

// SimpleRouter picks a provider by explicit name, then by endpoint shape,
// then falls back to the configured default.
type SimpleRouter struct {
	registry        domain.ProviderRegistry
	defaultProvider string
}

// NewRouter creates a new router.
func NewRouter(registry domain.ProviderRegistry, defaultProvider string) *SimpleRouter {
	return &SimpleRouter{
		registry:        registry,
		defaultProvider: defaultProvider,
	}
}

// Route selects a provider for the request.
func (r *SimpleRouter) Route(ctx context.Context, req *domain.RouteRequest) (string, error) {
	if req == nil {
		return "", errors.New("route request cannot be nil")
	}

	providerNames, err := r.registry.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list providers: %w", err)
	}

	if len(providerNames) == 0 {
		return "", errors.New("no providers available")
	}

	if req.Provider != "" {
		if !slices.Contains(providerNames, req.Provider) {
			return "", fmt.Errorf("provider %s is not registered", req.Provider)
		}
		return req.Provider, nil
	}

	if isOpenAICompatible(req.Endpoint) && slices.Contains(providerNames, OpenAICompatibleProvider) {
		return OpenAICompatibleProvider, nil
	}

	if slices.Contains(providerNames, r.defaultProvider) {
		return r.defaultProvider, nil
	}

	return "", fmt.Errorf("no provider found for endpoint: %s", req.Endpoint)
}

func isOpenAICompatible(endpoint string) bool {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.TrimRight(u.Path, "/"), openAIPathSuffix)
}
