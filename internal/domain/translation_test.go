package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/observability"
	"github.com/davidbz/sgrep/internal/pattern"
	"github.com/davidbz/sgrep/internal/provider/registry"
	"github.com/davidbz/sgrep/internal/routing"
)

// scriptedProvider returns a fixed response or error and records calls.
type scriptedProvider struct {
	name          string
	requiresToken bool
	models        []string
	resp          *domain.TranslationResponse
	err           error

	calls     int
	lastToken domain.Token
	lastReq   *domain.TranslationRequest
}

func (p *scriptedProvider) Translate(
	_ context.Context,
	token domain.Token,
	req *domain.TranslationRequest,
) (*domain.TranslationResponse, error) {
	p.calls++
	p.lastToken = token
	p.lastReq = req
	return p.resp, p.err
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) RequiresToken() bool { return p.requiresToken }

func (p *scriptedProvider) IsModelSupported(_ context.Context, model string) bool {
	for _, known := range p.SupportedModels(context.Background()) {
		if known == model {
			return true
		}
	}
	return false
}

// SupportedModels defaults to test-model; an empty non-nil list advertises none.
func (p *scriptedProvider) SupportedModels(_ context.Context) []string {
	if p.models == nil {
		return []string{"test-model"}
	}
	return p.models
}

type mapCredentials map[string]domain.Token

func (m mapCredentials) Lookup(_ context.Context, provider string) (domain.Token, bool, error) {
	token, ok := m[provider]
	return token, ok, nil
}

type brokenCredentials struct{}

func (brokenCredentials) Lookup(context.Context, string) (domain.Token, bool, error) {
	return "", false, errors.New("credentials file is unreadable")
}

type recordedEvent struct {
	eventType string
	data      map[string]interface{}
}

type recordingPublisher struct {
	events []recordedEvent
}

func (r *recordingPublisher) Publish(_ context.Context, eventType string, data map[string]interface{}) {
	r.events = append(r.events, recordedEvent{eventType: eventType, data: data})
}

func textResponse(content string) *domain.TranslationResponse {
	return &domain.TranslationResponse{
		Model:   "test-model",
		Choices: []domain.Choice{domain.TextChoice(content)},
		Usage:   domain.Usage{PromptTokens: 1_000, CompletionTokens: 100, TotalTokens: 1_100},
	}
}

type fixture struct {
	provider *scriptedProvider
	events   *recordingPublisher
	service  *domain.TranslationService
}

func newFixture(t *testing.T, provider *scriptedProvider, credentials domain.CredentialProvider) *fixture {
	t.Helper()
	return newFixtureWithSettings(t, provider, credentials, domain.TranslationSettings{Model: "test-model"})
}

func newFixtureWithSettings(
	t *testing.T,
	provider *scriptedProvider,
	credentials domain.CredentialProvider,
	settings domain.TranslationSettings,
) *fixture {
	t.Helper()
	ctx := context.Background()

	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(ctx, provider))

	compiler, err := pattern.NewCompiler(pattern.Config{Dialect: pattern.DialectRE2})
	require.NoError(t, err)

	pricing := domain.NewInMemoryPricingRegistry()
	require.NoError(t, pricing.RegisterPricing(ctx, "test-model", domain.PricingConfig{
		InputCostPer1M:  1,
		OutputCostPer1M: 10,
	}))

	events := &recordingPublisher{}
	service := domain.NewTranslationService(
		reg,
		routing.NewRouter(reg),
		credentials,
		compiler,
		domain.NewTokenCostCalculator(pricing),
		events,
		settings,
	)

	return &fixture{provider: provider, events: events, service: service}
}

func TestTranslationService_Translate(t *testing.T) {
	ctx := context.Background()
	creds := mapCredentials{"remote": "sk-test"}

	t.Run("should translate an IPv4 request into a working pattern", func(t *testing.T) {
		provider := &scriptedProvider{
			name:          "remote",
			requiresToken: true,
			resp:          textResponse(`\b\d{1,3}(\.\d{1,3}){3}\b`),
		}
		f := newFixture(t, provider, creds)

		translation, err := f.service.Translate(ctx, "lines containing an IPv4 address")

		require.NoError(t, err)
		require.Equal(t, 1, provider.calls)
		require.Equal(t, domain.Token("sk-test"), provider.lastToken)
		require.Equal(t, "lines containing an IPv4 address", provider.lastReq.Messages[1].Content)
		require.Equal(t, "remote", translation.Provider)
		require.Equal(t, "test-model", translation.Model)
		require.Equal(t, domain.CandidatePattern(`\b\d{1,3}(\.\d{1,3}){3}\b`), translation.Candidate)
		require.InDelta(t, 0.002, translation.Usage.Cost, 0.0000001)

		matched, err := translation.Pattern.Match("no ip here")
		require.NoError(t, err)
		require.False(t, matched)

		matched, err = translation.Pattern.Match("server 10.0.0.1 up")
		require.NoError(t, err)
		require.True(t, matched)

		require.Len(t, f.events.events, 2)
		require.Equal(t, "translation.completed", f.events.events[0].eventType)
		require.Equal(t, "pattern.compiled", f.events.events[1].eventType)
	})

	t.Run("should fail with empty translation on absent content", func(t *testing.T) {
		provider := &scriptedProvider{
			name:          "remote",
			requiresToken: true,
			resp:          &domain.TranslationResponse{Choices: []domain.Choice{{}}},
		}
		f := newFixture(t, provider, creds)

		translation, err := f.service.Translate(ctx, "anything")

		require.Nil(t, translation)
		require.ErrorIs(t, err, domain.ErrEmptyTranslation)
		require.Contains(t, err.Error(), "remote returned no pattern")
		require.Empty(t, f.events.events)
	})

	t.Run("should fail with compile error on invalid pattern", func(t *testing.T) {
		provider := &scriptedProvider{name: "remote", requiresToken: true, resp: textResponse("[unterminated")}
		f := newFixture(t, provider, creds)

		translation, err := f.service.Translate(ctx, "brackets")

		require.Nil(t, translation)
		require.ErrorIs(t, err, domain.ErrPatternCompile)
		require.NotErrorIs(t, err, domain.ErrEmptyTranslation)

		var compileErr *domain.PatternCompileError
		require.ErrorAs(t, err, &compileErr)
		require.Equal(t, "[unterminated", compileErr.Pattern)
		require.NotEmpty(t, compileErr.Diagnostic)
	})

	t.Run("should fail before any call when credential is absent", func(t *testing.T) {
		provider := &scriptedProvider{name: "remote", requiresToken: true, resp: textResponse("x")}
		f := newFixture(t, provider, mapCredentials{})

		translation, err := f.service.Translate(ctx, "anything")

		require.Nil(t, translation)
		require.ErrorIs(t, err, domain.ErrMissingCredential)
		require.Zero(t, provider.calls)
	})

	t.Run("should fail before any call without a credential source", func(t *testing.T) {
		provider := &scriptedProvider{name: "remote", requiresToken: true, resp: textResponse("x")}
		f := newFixture(t, provider, nil)

		_, err := f.service.Translate(ctx, "anything")

		require.ErrorIs(t, err, domain.ErrMissingCredential)
		require.Zero(t, provider.calls)
	})

	t.Run("should report unreadable credentials as missing", func(t *testing.T) {
		provider := &scriptedProvider{name: "remote", requiresToken: true, resp: textResponse("x")}
		f := newFixture(t, provider, brokenCredentials{})

		_, err := f.service.Translate(ctx, "anything")

		require.ErrorIs(t, err, domain.ErrMissingCredential)
		require.Contains(t, err.Error(), "unreadable")
		require.Zero(t, provider.calls)
	})

	t.Run("should skip lookup for providers without tokens", func(t *testing.T) {
		provider := &scriptedProvider{name: "local", resp: textResponse("^b")}
		f := newFixture(t, provider, brokenCredentials{})

		translation, err := f.service.Translate(ctx, "lines starting with b")

		require.NoError(t, err)
		require.Equal(t, domain.Token(""), provider.lastToken)
		require.Equal(t, "^b", translation.Pattern.String())
	})

	t.Run("should wrap provider failures as transport errors", func(t *testing.T) {
		cause := errors.New("connection refused")
		provider := &scriptedProvider{name: "remote", requiresToken: true, err: cause}
		f := newFixture(t, provider, creds)

		_, err := f.service.Translate(ctx, "anything")

		require.ErrorIs(t, err, domain.ErrTransportFailure)
		require.ErrorIs(t, err, cause)
		require.Contains(t, err.Error(), "translation request to remote failed")
		require.Equal(t, 1, provider.calls)
	})

	t.Run("should pass transport errors through unchanged", func(t *testing.T) {
		original := &domain.TransportError{Provider: "remote", Err: errors.New("HTTP 503")}
		provider := &scriptedProvider{name: "remote", requiresToken: true, err: original}
		f := newFixture(t, provider, creds)

		_, err := f.service.Translate(ctx, "anything")

		var transportErr *domain.TransportError
		require.ErrorAs(t, err, &transportErr)
		require.Same(t, original, transportErr)
	})

	t.Run("should use the provider's first model when none is configured", func(t *testing.T) {
		provider := &scriptedProvider{
			name:          "remote",
			requiresToken: true,
			models:        []string{"remote-small", "remote-large"},
			resp:          textResponse("^a"),
		}
		f := newFixtureWithSettings(t, provider, creds, domain.TranslationSettings{Provider: "remote"})

		translation, err := f.service.Translate(ctx, "a lines")

		require.NoError(t, err)
		require.Equal(t, "remote-small", provider.lastReq.Model)
		require.Equal(t, "remote-small", translation.Model)
	})

	t.Run("should require a model for a provider that advertises none", func(t *testing.T) {
		provider := &scriptedProvider{name: "local", models: []string{}, resp: textResponse("^a")}
		f := newFixtureWithSettings(t, provider, creds, domain.TranslationSettings{Provider: "local"})

		_, err := f.service.Translate(ctx, "a lines")

		require.Error(t, err)
		require.Contains(t, err.Error(), "no model configured for provider local")
		require.Zero(t, provider.calls)
	})

	t.Run("should reject an explicit provider with an unsupported model", func(t *testing.T) {
		provider := &scriptedProvider{name: "remote", requiresToken: true, resp: textResponse("^a")}
		f := newFixtureWithSettings(t, provider, creds,
			domain.TranslationSettings{Provider: "remote", Model: "other-model"})

		_, err := f.service.Translate(ctx, "a lines")

		require.Error(t, err)
		require.Contains(t, err.Error(), "does not support model")
		require.Zero(t, provider.calls)
	})

	t.Run("should fail routing for an unknown model", func(t *testing.T) {
		provider := &scriptedProvider{name: "remote", requiresToken: true, resp: textResponse("x")}
		f := newFixture(t, provider, creds)
		service := domain.NewTranslationService(
			registry.NewRegistry(), routing.NewRouter(registry.NewRegistry()), creds, nil, nil, nil,
			domain.TranslationSettings{Model: "unknown"},
		)

		_, err := service.Translate(ctx, "anything")

		require.Error(t, err)
		require.Contains(t, err.Error(), "provider routing failed")
		require.Zero(t, f.provider.calls)
	})
}

func TestTranslationService_TokenNeverLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	provider := &scriptedProvider{name: "remote", requiresToken: true, resp: textResponse("^a")}
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(context.Background(), provider))
	compiler, err := pattern.NewCompiler(pattern.Config{})
	require.NoError(t, err)

	service := domain.NewTranslationService(
		reg, routing.NewRouter(reg), mapCredentials{"remote": "sk-secret"}, compiler, nil,
		observability.NewEventBus(zap.New(core)),
		domain.TranslationSettings{Model: "test-model"},
	)

	_, err = service.Translate(context.Background(), "a lines")
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		for key, value := range entry.ContextMap() {
			require.NotContains(t, key, "sk-secret")
			require.NotContains(t, fmt.Sprint(value), "sk-secret")
		}
	}
}
