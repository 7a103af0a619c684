package anthropic

import (
	"context"
	"fmt"

	"github.com/davidbz/sgrep/internal/domain"
)

// RegisterPricing registers Anthropic model pricing (USD per 1M tokens) with the registry.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry) error {
	models := map[string]domain.PricingConfig{
		"claude-3-5-haiku-latest":  {InputCostPer1M: 0.8, OutputCostPer1M: 4},
		"claude-haiku-4-5":         {InputCostPer1M: 1, OutputCostPer1M: 5},
		"claude-sonnet-4-5":        {InputCostPer1M: 3, OutputCostPer1M: 15},
		"claude-3-7-sonnet-latest": {InputCostPer1M: 3, OutputCostPer1M: 15},
	}

	for model, config := range models {
		if err := registry.RegisterPricing(ctx, model, config); err != nil {
			return fmt.Errorf("failed to register pricing for model %s: %w", model, err)
		}
	}

	return nil
}

// SupportedModels returns the models routed to Anthropic by default.
func SupportedModels() []string {
	return []string{
		"claude-3-5-haiku-latest",
		"claude-haiku-4-5",
		"claude-sonnet-4-5",
		"claude-3-7-sonnet-latest",
	}
}
