package domain

// ExtractPattern returns the first choice's text exactly as received.
func ExtractPattern(resp *TranslationResponse) (CandidatePattern, error) {
	provider := "provider"
	if resp != nil && resp.Provider != "" {
		provider = resp.Provider
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", &EmptyTranslationError{Provider: provider, Reason: "response contained no completions"}
	}

	content := resp.Choices[0].Message.Content
	if content == nil || *content == "" {
		return "", &EmptyTranslationError{Provider: provider, Reason: "first completion has no content"}
	}

	return CandidatePattern(*content), nil
}
