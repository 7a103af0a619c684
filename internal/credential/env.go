// Package credential resolves provider tokens from the environment and from
// a YAML store under the user's home directory.
package credential

import (
	"context"

	"github.com/davidbz/sgrep/internal/domain"
)

// EnvSource serves tokens already read from environment configuration.
type EnvSource struct {
	tokens map[string]domain.Token
}

// NewEnvSource builds a source from provider name to raw token. Empty tokens
// are treated as absent.
func NewEnvSource(tokens map[string]string) *EnvSource {
	source := &EnvSource{tokens: make(map[string]domain.Token, len(tokens))}
	for provider, token := range tokens {
		if token != "" {
			source.tokens[provider] = domain.Token(token)
		}
	}
	return source
}

// Lookup returns the token configured for provider.
func (s *EnvSource) Lookup(_ context.Context, provider string) (domain.Token, bool, error) {
	token, ok := s.tokens[provider]
	return token, ok, nil
}
