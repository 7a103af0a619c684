// Package static provides an offline provider that answers every translation
// with a configured reply. It makes no network calls, which makes runs
// deterministic for scripting and tests.
package static

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/observability"
)

const (
	providerName = "static"
	modelName    = "static"
)

// Provider implements the domain.Provider interface with a fixed reply.
type Provider struct {
	name            string
	response        string
	supportedModels map[string]bool
}

// NewProvider creates a new static provider.
func NewProvider(config Config) *Provider {
	return &Provider{
		name:     providerName,
		response: config.Response,
		supportedModels: map[string]bool{
			modelName: true,
		},
	}
}

// Translate returns the configured reply. The utterance is only counted, never
// echoed. An empty reply yields a completion with no content.
func (p *Provider) Translate(
	ctx context.Context,
	_ domain.Token,
	req *domain.TranslationRequest,
) (*domain.TranslationResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Provider: p.name, Err: err}
	}

	promptTokens := 0
	for _, msg := range req.Messages {
		promptTokens += countTokens(msg.Content)
	}
	completionTokens := countTokens(p.response)

	observability.FromContext(ctx).Debug("static translation",
		observability.Int("prompt_tokens", promptTokens),
		observability.Int("completion_tokens", completionTokens),
	)

	choice := domain.Choice{}
	if p.response != "" {
		choice = domain.TextChoice(p.response)
	}

	return &domain.TranslationResponse{
		ID:       fmt.Sprintf("static-%d", time.Now().UnixNano()),
		Model:    modelName,
		Provider: p.name,
		Choices:  []domain.Choice{choice},
		Usage: domain.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		FinishTime: time.Now(),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// RequiresToken reports that no credential is needed.
func (p *Provider) RequiresToken() bool {
	return false
}

// IsModelSupported checks if the provider supports the given model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return p.supportedModels[model]
}

// SupportedModels returns a list of all models this provider supports.
func (p *Provider) SupportedModels(_ context.Context) []string {
	models := make([]string, 0, len(p.supportedModels))
	for model := range p.supportedModels {
		models = append(models, model)
	}
	return models
}

// countTokens performs simple word-based token counting.
func countTokens(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Fields(content))
}
