package domain

import "time"

// Role tags a message in a translation request.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Token is an opaque credential for a translation provider.
type Token string

// String redacts the token so it never reaches logs or error messages.
func (t Token) String() string {
	if t == "" {
		return ""
	}
	return "[redacted]"
}

// TranslationRequest is one natural-language to pattern translation call.
type TranslationRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TranslationResponse is the provider's answer. Only the first choice is consulted.
type TranslationResponse struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Provider   string    `json:"provider"`
	Choices    []Choice  `json:"choices"`
	Usage      Usage     `json:"usage"`
	FinishTime time.Time `json:"finish_time"`
}

// Choice is a single candidate completion.
type Choice struct {
	Message ChoiceMessage `json:"message"`
}

// ChoiceMessage carries optional completion text. A nil Content means the
// provider returned no text for this choice.
type ChoiceMessage struct {
	Content *string `json:"content,omitempty"`
}

// TextChoice builds a choice carrying content.
func TextChoice(content string) Choice {
	return Choice{Message: ChoiceMessage{Content: &content}}
}

// CandidatePattern is pattern text extracted from a response. It is untrusted
// until compiled.
type CandidatePattern string

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost,omitempty"`
}

// Translation is the outcome of a successful translate-and-compile run.
type Translation struct {
	Candidate CandidatePattern
	Pattern   Matcher
	Provider  string
	Model     string
	Usage     Usage
}

// Span is a matched region of a line, in rune offsets.
type Span struct {
	Start int
	End   int
}
