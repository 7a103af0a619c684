package domain

import "context"

// Provider is a translation client for one language-model backend.
type Provider interface {
	// Translate performs exactly one remote call. It never retries and never
	// inspects the returned content.
	Translate(ctx context.Context, token Token, req *TranslationRequest) (*TranslationResponse, error)

	// Name returns the provider identifier.
	Name() string

	// RequiresToken reports whether Translate needs a credential.
	RequiresToken() bool

	// IsModelSupported checks if the provider supports the given model.
	IsModelSupported(ctx context.Context, model string) bool

	// SupportedModels returns the models this provider is known to serve.
	SupportedModels(ctx context.Context) []string
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// List returns all available providers.
	List(ctx context.Context) ([]string, error)

	// GetByModel retrieves a provider that supports the given model.
	GetByModel(ctx context.Context, model string) (Provider, error)
}

// Router determines which provider to use for a request.
type Router interface {
	// Route selects a provider based on request criteria.
	Route(ctx context.Context, req *RouteRequest) (string, error)
}

// RouteRequest contains criteria for provider selection.
type RouteRequest struct {
	Provider string
	Model    string
}

// CredentialProvider looks up tokens. ok is false when no token exists; err is
// reserved for sources that exist but cannot be read.
type CredentialProvider interface {
	Lookup(ctx context.Context, provider string) (token Token, ok bool, err error)
}

// PatternCompiler turns untrusted candidate text into a matcher.
type PatternCompiler interface {
	// Compile returns a fully built matcher or a *PatternCompileError.
	Compile(ctx context.Context, candidate CandidatePattern) (Matcher, error)
}

// Matcher is an immutable compiled pattern, safe for concurrent use.
type Matcher interface {
	// Match reports whether the pattern matches anywhere in line.
	Match(line string) (bool, error)

	// Spans returns every non-overlapping match in line.
	Spans(line string) ([]Span, error)

	// String returns the source text the matcher was compiled from.
	String() string
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
