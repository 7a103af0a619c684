package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/sgrep/internal/domain"
)

func TestExtractPattern(t *testing.T) {
	t.Run("should return first choice text unchanged", func(t *testing.T) {
		texts := []string{`\b\d{1,3}(\.\d{1,3}){3}\b`, "  ^Error \n", "[unterminated", "ÜBER"}

		for _, text := range texts {
			resp := &domain.TranslationResponse{
				Provider: "openai",
				Choices:  []domain.Choice{domain.TextChoice(text), domain.TextChoice("ignored")},
			}

			candidate, err := domain.ExtractPattern(resp)

			require.NoError(t, err)
			require.Equal(t, domain.CandidatePattern(text), candidate)
		}
	})

	tests := []struct {
		name   string
		resp   *domain.TranslationResponse
		reason string
	}{
		{
			name:   "should fail on nil response",
			resp:   nil,
			reason: "no completions",
		},
		{
			name:   "should fail on zero choices",
			resp:   &domain.TranslationResponse{Provider: "openai"},
			reason: "no completions",
		},
		{
			name:   "should fail on absent content",
			resp:   &domain.TranslationResponse{Provider: "openai", Choices: []domain.Choice{{}}},
			reason: "no content",
		},
		{
			name:   "should fail on empty content",
			resp:   &domain.TranslationResponse{Provider: "openai", Choices: []domain.Choice{domain.TextChoice("")}},
			reason: "no content",
		},
		{
			name: "should not look past an empty first choice",
			resp: &domain.TranslationResponse{
				Provider: "openai",
				Choices:  []domain.Choice{{}, domain.TextChoice("later")},
			},
			reason: "no content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, err := domain.ExtractPattern(tt.resp)

			require.Empty(t, candidate)
			require.ErrorIs(t, err, domain.ErrEmptyTranslation)
			require.Contains(t, err.Error(), tt.reason)
		})
	}
}
