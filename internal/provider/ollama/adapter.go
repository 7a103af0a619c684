// Package ollama talks to a local Ollama server over its chat endpoint.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/observability"
)

const (
	providerName = "ollama"
	chatPath     = "/api/chat"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	CreatedAt       string      `json:"created_at"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// Provider implements the domain.Provider interface for Ollama.
type Provider struct {
	client *resty.Client
	name   string
}

// NewProvider creates a new Ollama provider.
func NewProvider(config Config) (*Provider, error) {
	if config.BaseURL == "" {
		return nil, errors.New("Ollama base URL is required")
	}

	if config.Timeout < 0 {
		return nil, errors.New("Ollama timeout cannot be negative")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if config.Timeout > 0 {
		client.SetTimeout(time.Duration(config.Timeout) * time.Second)
	}

	return &Provider{
		client: client,
		name:   providerName,
	}, nil
}

// Translate sends one non-streaming chat request. The token is ignored.
func (p *Provider) Translate(
	ctx context.Context,
	_ domain.Token,
	req *domain.TranslationRequest,
) (*domain.TranslationResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Ollama API", observability.String("base_url", p.client.BaseURL))

	body := chatRequest{
		Model:    req.Model,
		Messages: make([]chatMessage, 0, len(req.Messages)),
		Stream:   false,
		Options:  map[string]interface{}{"temperature": req.Temperature},
	}
	for _, msg := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	var result chatResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(chatPath)
	if err != nil {
		return nil, &domain.TransportError{Provider: p.name, Err: fmt.Errorf("Ollama API call failed: %w", err)}
	}

	if resp.IsError() {
		return nil, &domain.TransportError{
			Provider: p.name,
			Err:      fmt.Errorf("Ollama API returned %s: %s", resp.Status(), strings.TrimSpace(resp.String())),
		}
	}

	logger.Debug("Ollama API call succeeded",
		observability.Int("prompt_eval_count", result.PromptEvalCount),
		observability.Int("eval_count", result.EvalCount),
	)

	choice := domain.Choice{}
	if result.Message.Content != "" {
		choice = domain.TextChoice(result.Message.Content)
	}

	model := result.Model
	if model == "" {
		model = req.Model
	}

	return &domain.TranslationResponse{
		ID:       fmt.Sprintf("ollama-%d", time.Now().UnixNano()),
		Model:    model,
		Provider: p.name,
		Choices:  []domain.Choice{choice},
		Usage: domain.Usage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
			TotalTokens:      result.PromptEvalCount + result.EvalCount,
		},
		FinishTime: time.Now(),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// RequiresToken reports that a local server needs no credential.
func (p *Provider) RequiresToken() bool {
	return false
}

// IsModelSupported always reports false. Ollama is reached only by explicit
// provider selection, so it never claims a model from the hosted providers.
func (p *Provider) IsModelSupported(_ context.Context, _ string) bool {
	return false
}

// SupportedModels returns nothing; local model names are not known up front.
func (p *Provider) SupportedModels(_ context.Context) []string {
	return nil
}
