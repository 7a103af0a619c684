package static

import (
	"context"
	"fmt"

	"github.com/davidbz/sgrep/internal/domain"
)

// RegisterPricing registers the static model at zero cost.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry) error {
	if err := registry.RegisterPricing(ctx, modelName, domain.PricingConfig{}); err != nil {
		return fmt.Errorf("failed to register static pricing: %w", err)
	}
	return nil
}
