package main

import (
	"context"
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/sgrep/internal/config"
	"github.com/davidbz/sgrep/internal/credential"
	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/observability"
	"github.com/davidbz/sgrep/internal/pattern"
	"github.com/davidbz/sgrep/internal/provider/anthropic"
	"github.com/davidbz/sgrep/internal/provider/ollama"
	"github.com/davidbz/sgrep/internal/provider/openai"
	"github.com/davidbz/sgrep/internal/provider/registry"
	"github.com/davidbz/sgrep/internal/provider/static"
	"github.com/davidbz/sgrep/internal/routing"
)

// buildContainer wires every component for one run from an already loaded
// and flag-adjusted configuration.
func buildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	provides := []struct {
		name string
		fn   interface{}
	}{
		// Configuration
		{"config", func() *config.Config { return cfg }},
		{"config dependencies", config.ParseDependenciesConfig},

		// Observability
		{"logger", observability.InitLogger},
		{"event bus", func(logger *zap.Logger) domain.EventPublisher {
			return observability.NewEventBus(logger)
		}},

		// Providers
		{"registry", func() domain.ProviderRegistry { return registry.NewRegistry() }},
		{"OpenAI provider", func(c *openai.Config) (*openai.Provider, error) { return openai.NewProvider(*c) }},
		{"Anthropic provider", func(c *anthropic.Config) (*anthropic.Provider, error) { return anthropic.NewProvider(*c) }},
		{"Ollama provider", func(c *ollama.Config) (*ollama.Provider, error) { return ollama.NewProvider(*c) }},
		{"static provider", func(c *static.Config) *static.Provider { return static.NewProvider(*c) }},
		{"router", func(reg domain.ProviderRegistry) domain.Router { return routing.NewRouter(reg) }},

		// Pricing
		{"pricing registry", func() domain.PricingRegistry { return domain.NewInMemoryPricingRegistry() }},
		{"cost calculator", func(reg domain.PricingRegistry) domain.CostCalculator {
			return domain.NewTokenCostCalculator(reg)
		}},

		// Credentials
		{"credential store", newCredentialStore},
		{"credential chain", func(cfg *config.Config, store *credential.FileStore) domain.CredentialProvider {
			return credential.NewChain(credential.NewEnvSource(map[string]string{
				"openai":    cfg.OpenAI.APIKey,
				"anthropic": cfg.Anthropic.APIKey,
			}), store)
		}},

		// Pattern compiler
		{"pattern compiler", func(c *pattern.Config) (domain.PatternCompiler, error) {
			return pattern.NewCompiler(*c)
		}},

		// Domain Services
		{"translation settings", func(c *config.TranslatorConfig) domain.TranslationSettings {
			return domain.TranslationSettings{
				Provider:    c.Provider,
				Model:       c.EffectiveModel(),
				Temperature: c.Temperature,
			}
		}},
		{"translation service", domain.NewTranslationService},
	}

	for _, p := range provides {
		if err := container.Provide(p.fn); err != nil {
			return nil, fmt.Errorf("failed to provide %s: %w", p.name, err)
		}
	}

	// Register providers and their pricing (invoked for side effects)
	if err := container.Invoke(func(
		reg domain.ProviderRegistry,
		pricing domain.PricingRegistry,
		openaiProvider *openai.Provider,
		anthropicProvider *anthropic.Provider,
		ollamaProvider *ollama.Provider,
		staticProvider *static.Provider,
	) error {
		ctx := context.Background()

		for _, provider := range []domain.Provider{openaiProvider, anthropicProvider, ollamaProvider, staticProvider} {
			if err := reg.Register(ctx, provider); err != nil {
				return fmt.Errorf("failed to register %s provider: %w", provider.Name(), err)
			}
		}

		for _, register := range []func(context.Context, domain.PricingRegistry) error{
			openai.RegisterPricing,
			anthropic.RegisterPricing,
			static.RegisterPricing,
		} {
			if err := register(ctx, pricing); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to register providers: %w", dig.RootCause(err))
	}

	return container, nil
}

func newCredentialStore(cfg *credential.Config) *credential.FileStore {
	if cfg.File == "" {
		return credential.NewDefaultFileStore()
	}
	return credential.NewFileStore(cfg.File)
}
