package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidbz/sgrep/internal/observability"
)

// TranslationSettings selects the backend and sampling for translation calls.
type TranslationSettings struct {
	Provider    string
	Model       string
	Temperature float64
}

// TranslationService runs the translate-and-compile pipeline:
// route, credential, prompt, remote call, extraction, compilation.
type TranslationService struct {
	registry       ProviderRegistry
	router         Router
	credentials    CredentialProvider
	compiler       PatternCompiler
	costCalculator CostCalculator
	events         EventPublisher
	settings       TranslationSettings
}

// NewTranslationService creates a new translation service (DI constructor).
func NewTranslationService(
	registry ProviderRegistry,
	router Router,
	credentials CredentialProvider,
	compiler PatternCompiler,
	costCalculator CostCalculator,
	events EventPublisher,
	settings TranslationSettings,
) *TranslationService {
	return &TranslationService{
		registry:       registry,
		router:         router,
		credentials:    credentials,
		compiler:       compiler,
		costCalculator: costCalculator,
		events:         events,
		settings:       settings,
	}
}

// Translate turns an utterance into a compiled pattern. Every stage runs once;
// the first failure is returned and nothing is retried.
func (s *TranslationService) Translate(ctx context.Context, utterance string) (*Translation, error) {
	providerName, err := s.router.Route(ctx, &RouteRequest{
		Provider: s.settings.Provider,
		Model:    s.settings.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("provider routing failed: %w", err)
	}

	provider, err := s.registry.Get(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("provider not found: %w", err)
	}

	model, err := s.resolveModel(ctx, provider)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithProvider(ctx, providerName)
	ctx = observability.WithModel(ctx, model)
	logger := observability.FromContext(ctx)

	token, err := s.resolveToken(ctx, provider)
	if err != nil {
		return nil, err
	}

	req := NewTranslationRequest(model, utterance)
	req.Temperature = s.settings.Temperature

	logger.Debug("requesting translation", observability.Int("utterance_length", len(utterance)))

	resp, err := provider.Translate(ctx, token, req)
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return nil, err
		}
		return nil, &TransportError{Provider: providerName, Err: err}
	}
	if resp != nil && resp.Provider == "" {
		resp.Provider = providerName
	}

	candidate, err := ExtractPattern(resp)
	if err != nil {
		logger.Warn("translation returned no usable content", observability.Error(err))
		return nil, err
	}

	usage := resp.Usage
	if s.costCalculator != nil {
		if cost, known := s.costCalculator.Estimate(ctx, resp.Model, usage); known {
			usage.Cost = cost
		}
	}

	s.publish(ctx, "translation.completed", map[string]interface{}{
		"provider":          providerName,
		"model":             resp.Model,
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"cost_usd":          usage.Cost,
	})

	matcher, err := s.compiler.Compile(ctx, candidate)
	if err != nil {
		logger.Warn("translated pattern failed to compile", observability.Error(err))
		return nil, err
	}

	s.publish(ctx, "pattern.compiled", map[string]interface{}{
		"pattern": matcher.String(),
	})

	return &Translation{
		Candidate: candidate,
		Pattern:   matcher,
		Provider:  providerName,
		Model:     model,
		Usage:     usage,
	}, nil
}

// resolveModel falls back to the provider's first advertised model when no
// model is configured.
func (s *TranslationService) resolveModel(ctx context.Context, provider Provider) (string, error) {
	if s.settings.Model != "" {
		return s.settings.Model, nil
	}

	models := provider.SupportedModels(ctx)
	if len(models) == 0 {
		return "", fmt.Errorf("no model configured for provider %s: set --model or SGREP_MODEL", provider.Name())
	}

	return models[0], nil
}

// resolveToken enforces the credential precondition before any remote call.
func (s *TranslationService) resolveToken(ctx context.Context, provider Provider) (Token, error) {
	if !provider.RequiresToken() {
		return "", nil
	}

	if s.credentials == nil {
		return "", &MissingCredentialError{Provider: provider.Name()}
	}

	token, ok, err := s.credentials.Lookup(ctx, provider.Name())
	if err != nil {
		return "", &MissingCredentialError{Provider: provider.Name(), Err: err}
	}
	if !ok || token == "" {
		return "", &MissingCredentialError{Provider: provider.Name()}
	}

	return token, nil
}

func (s *TranslationService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, eventType, data)
}
