package credential

import (
	"context"

	"github.com/davidbz/sgrep/internal/domain"
)

// Chain asks each source in order and returns the first token found.
type Chain struct {
	sources []domain.CredentialProvider
}

// NewChain creates a chain; nil sources are skipped.
func NewChain(sources ...domain.CredentialProvider) *Chain {
	chain := &Chain{}
	for _, source := range sources {
		if source != nil {
			chain.sources = append(chain.sources, source)
		}
	}
	return chain
}

// Lookup stops at the first source that has a token or fails.
func (c *Chain) Lookup(ctx context.Context, provider string) (domain.Token, bool, error) {
	for _, source := range c.sources {
		token, ok, err := source.Lookup(ctx, provider)
		if err != nil {
			return "", false, err
		}
		if ok && token != "" {
			return token, true, nil
		}
	}
	return "", false, nil
}
