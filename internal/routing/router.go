// Package routing decides which provider serves a translation.
package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidbz/sgrep/internal/domain"
)

// SimpleRouter routes by explicit provider name, then by model.
type SimpleRouter struct {
	registry domain.ProviderRegistry
}

// NewRouter creates a new router.
func NewRouter(registry domain.ProviderRegistry) *SimpleRouter {
	return &SimpleRouter{
		registry: registry,
	}
}

// Route returns the provider name for req. An explicit provider must be
// registered and, when a model is given, must support it. Providers that
// advertise no models accept any model. Without a provider the model decides.
func (r *SimpleRouter) Route(ctx context.Context, req *domain.RouteRequest) (string, error) {
	if req == nil {
		return "", errors.New("route request cannot be nil")
	}

	if req.Provider != "" {
		provider, err := r.registry.Get(ctx, req.Provider)
		if err != nil {
			return "", fmt.Errorf("unknown provider %q: %w", req.Provider, err)
		}
		if req.Model != "" && len(provider.SupportedModels(ctx)) > 0 && !provider.IsModelSupported(ctx, req.Model) {
			return "", fmt.Errorf("provider %s does not support model %q", provider.Name(), req.Model)
		}
		return provider.Name(), nil
	}

	if req.Model == "" {
		return "", errors.New("model name is required")
	}

	providerNames, err := r.registry.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list providers: %w", err)
	}

	if len(providerNames) == 0 {
		return "", errors.New("no providers available")
	}

	provider, err := r.registry.GetByModel(ctx, req.Model)
	if err != nil {
		return "", err
	}

	return provider.Name(), nil
}
