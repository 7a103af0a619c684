// Package openai provides a translation client for the OpenAI chat completions
// API using the official SDK. It converts between domain types and SDK types
// and never interprets the returned content.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/observability"
)

const providerName = "openai"

// Provider implements the domain.Provider interface for OpenAI.
type Provider struct {
	baseOpts        []option.RequestOption
	name            string
	supportedModels map[string]bool
}

// NewProvider creates a new OpenAI provider. The API key is supplied per call.
func NewProvider(config Config) (*Provider, error) {
	if config.Timeout < 0 {
		return nil, errors.New("OpenAI timeout cannot be negative")
	}

	// Retries are off unless explicitly configured: one translation, one call.
	opts := []option.RequestOption{
		option.WithMaxRetries(config.MaxRetries),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	models := make(map[string]bool)
	for _, model := range SupportedModels() {
		models[model] = true
	}

	return &Provider{
		baseOpts:        opts,
		name:            providerName,
		supportedModels: models,
	}, nil
}

// Translate sends one chat completion request and returns the choices as received.
func (p *Provider) Translate(
	ctx context.Context,
	token domain.Token,
	req *domain.TranslationRequest,
) (*domain.TranslationResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if token == "" {
		return nil, &domain.MissingCredentialError{Provider: p.name}
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API")

	opts := append([]option.RequestOption{option.WithAPIKey(string(token))}, p.baseOpts...)
	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, p.toSDKParams(req))
	if err != nil {
		logger.Debug("OpenAI API call failed", observability.Error(err))
		return nil, &domain.TransportError{Provider: p.name, Err: fmt.Errorf("OpenAI API call failed: %w", err)}
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return p.toDomainResponse(resp), nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// RequiresToken reports that OpenAI calls need an API key.
func (p *Provider) RequiresToken() bool {
	return true
}

// IsModelSupported checks if the provider supports the given model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return p.supportedModels[model]
}

// SupportedModels returns a list of all models this provider supports.
func (p *Provider) SupportedModels(_ context.Context) []string {
	return SupportedModels()
}

// toSDKParams converts domain request to SDK ChatCompletionNewParams.
func (p *Provider) toSDKParams(req *domain.TranslationRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, len(req.Messages))
	for i, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleSystem:
			messages[i] = openai.SystemMessage(msg.Content)
		default:
			messages[i] = openai.UserMessage(msg.Content)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	return params
}

// toDomainResponse converts SDK response to domain response. An empty content
// string is reported as absent content.
func (p *Provider) toDomainResponse(resp *openai.ChatCompletion) *domain.TranslationResponse {
	choices := make([]domain.Choice, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		if choice.Message.Content == "" {
			choices = append(choices, domain.Choice{})
			continue
		}
		choices = append(choices, domain.TextChoice(choice.Message.Content))
	}

	return &domain.TranslationResponse{
		ID:       resp.ID,
		Model:    string(resp.Model),
		Provider: p.name,
		Choices:  choices,
		Usage: domain.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		FinishTime: time.Now(),
	}
}
