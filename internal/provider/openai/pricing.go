package openai

import (
	"context"
	"fmt"

	"github.com/davidbz/sgrep/internal/domain"
)

// RegisterPricing registers OpenAI model pricing (USD per 1M tokens) with the registry.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry) error {
	models := map[string]domain.PricingConfig{
		"gpt-3.5-turbo": {InputCostPer1M: 0.5, OutputCostPer1M: 1.5},
		"gpt-4":         {InputCostPer1M: 30, OutputCostPer1M: 60},
		"gpt-4-turbo":   {InputCostPer1M: 10, OutputCostPer1M: 30},
		"gpt-4o":        {InputCostPer1M: 2.5, OutputCostPer1M: 10},
		"gpt-4o-mini":   {InputCostPer1M: 0.15, OutputCostPer1M: 0.6},
		"gpt-4.1-mini":  {InputCostPer1M: 0.4, OutputCostPer1M: 1.6},
	}

	for model, config := range models {
		if err := registry.RegisterPricing(ctx, model, config); err != nil {
			return fmt.Errorf("failed to register pricing for model %s: %w", model, err)
		}
	}

	return nil
}

// SupportedModels returns the models routed to OpenAI by default.
func SupportedModels() []string {
	return []string{
		"gpt-3.5-turbo",
		"gpt-4",
		"gpt-4-turbo",
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4.1-mini",
	}
}
