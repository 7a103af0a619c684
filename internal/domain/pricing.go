package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const tokensPerMillion = 1_000_000.0

// PricingConfig contains model pricing information.
type PricingConfig struct {
	InputCostPer1M  float64 // USD per 1M input tokens
	OutputCostPer1M float64 // USD per 1M output tokens
}

// CostCalculator estimates the cost of a translation call.
type CostCalculator interface {
	// Estimate returns the cost in USD and whether pricing for the model is known.
	Estimate(ctx context.Context, model string, usage Usage) (float64, bool)
}

// PricingRegistry maintains pricing information for models.
type PricingRegistry interface {
	// GetPricing returns pricing config for a model.
	GetPricing(ctx context.Context, model string) (PricingConfig, error)

	// RegisterPricing adds pricing for a model.
	RegisterPricing(ctx context.Context, model string, config PricingConfig) error
}

// InMemoryPricingRegistry stores pricing configs in memory.
type InMemoryPricingRegistry struct {
	mu      sync.RWMutex
	pricing map[string]PricingConfig
}

// NewInMemoryPricingRegistry creates a new in-memory pricing registry.
func NewInMemoryPricingRegistry() *InMemoryPricingRegistry {
	return &InMemoryPricingRegistry{
		mu:      sync.RWMutex{},
		pricing: make(map[string]PricingConfig),
	}
}

// GetPricing retrieves pricing for a model.
func (r *InMemoryPricingRegistry) GetPricing(_ context.Context, model string) (PricingConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	config, exists := r.pricing[model]
	if !exists {
		return PricingConfig{}, fmt.Errorf("pricing not found for model: %s", model)
	}

	return config, nil
}

// RegisterPricing adds pricing for a model.
func (r *InMemoryPricingRegistry) RegisterPricing(_ context.Context, model string, config PricingConfig) error {
	if model == "" {
		return errors.New("model cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pricing[model] = config
	return nil
}

// TokenCostCalculator prices usage by input and output token counts.
type TokenCostCalculator struct {
	pricingRegistry PricingRegistry
}

// NewTokenCostCalculator creates a new cost calculator.
func NewTokenCostCalculator(registry PricingRegistry) *TokenCostCalculator {
	return &TokenCostCalculator{
		pricingRegistry: registry,
	}
}

// Estimate computes the cost of usage for model. Unknown or empty models are
// not an error for the caller; they simply have no estimate.
func (c *TokenCostCalculator) Estimate(ctx context.Context, model string, usage Usage) (float64, bool) {
	if model == "" {
		return 0, false
	}

	pricing, err := c.pricingRegistry.GetPricing(ctx, model)
	if err != nil {
		return 0, false
	}

	inputCost := float64(usage.PromptTokens) / tokensPerMillion * pricing.InputCostPer1M
	outputCost := float64(usage.CompletionTokens) / tokensPerMillion * pricing.OutputCostPer1M

	return inputCost + outputCost, true
}
