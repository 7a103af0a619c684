// Package anthropic provides a translation client for the Anthropic messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/observability"
)

const providerName = "anthropic"

// Provider implements the domain.Provider interface for Anthropic.
type Provider struct {
	baseOpts        []option.RequestOption
	maxTokens       int64
	name            string
	supportedModels map[string]bool
}

// NewProvider creates a new Anthropic provider. The API key is supplied per call.
func NewProvider(config Config) (*Provider, error) {
	if config.MaxTokens <= 0 {
		return nil, errors.New("Anthropic max tokens must be positive")
	}

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
		maxTokens:       int64(config.MaxTokens),
		name:            providerName,
		supportedModels: models,
	}, nil
}

// Translate sends one messages request. System messages become the system
// prompt; each text block of the reply becomes one choice.
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
	logger.Debug("calling Anthropic API")

	opts := append([]option.RequestOption{option.WithAPIKey(string(token))}, p.baseOpts...)
	client := anthropic.NewClient(opts...)

	resp, err := client.Messages.New(ctx, p.toSDKParams(req))
	if err != nil {
		logger.Debug("Anthropic API call failed", observability.Error(err))
		return nil, &domain.TransportError{Provider: p.name, Err: fmt.Errorf("Anthropic API call failed: %w", err)}
	}

	logger.Debug("Anthropic API call succeeded",
		observability.Int64("input_tokens", resp.Usage.InputTokens),
		observability.Int64("output_tokens", resp.Usage.OutputTokens),
	)

	return p.toDomainResponse(resp), nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// RequiresToken reports that Anthropic calls need an API key.
func (p *Provider) RequiresToken() bool {
	return true
}

// IsModelSupported checks if the provider supports the given model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return p.supportedModels[model] || strings.HasPrefix(model, "claude-")
}

// SupportedModels returns a list of all models this provider supports.
func (p *Provider) SupportedModels(_ context.Context) []string {
	return SupportedModels()
}

func (p *Provider) toSDKParams(req *domain.TranslationRequest) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: p.maxTokens,
		System:    system,
		Messages:  messages,
	}

	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	return params
}

func (p *Provider) toDomainResponse(resp *anthropic.Message) *domain.TranslationResponse {
	var choices []domain.Choice
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		if block.Text == "" {
			choices = append(choices, domain.Choice{})
			continue
		}
		choices = append(choices, domain.TextChoice(block.Text))
	}

	input := int(resp.Usage.InputTokens)
	output := int(resp.Usage.OutputTokens)

	return &domain.TranslationResponse{
		ID:       resp.ID,
		Model:    string(resp.Model),
		Provider: p.name,
		Choices:  choices,
		Usage: domain.Usage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
		FinishTime: time.Now(),
	}
}
