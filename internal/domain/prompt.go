package domain

// TranslationContext instructs the model to answer with a bare pattern.
const TranslationContext = `I am going to give you a text in natural language.
Your job is to write a regular expression that matches the search patterns described by the text.
The expression will be applied to each line of the input independently.

You must return the output in the format: <regex> NOTHING else.
You MUST NOT, under any circumstances, return an output that does not match the format above.
You also MUST NOT print anything besides the output, like an introduction to the response or any explanation.
For everything I say you MUST respond with the regex pattern only without any type of markdown formatting.
Just plain text.`

// NewTranslationRequest builds the two-message request for an utterance. The
// utterance is passed through verbatim, including when empty.
func NewTranslationRequest(model, utterance string) *TranslationRequest {
	return &TranslationRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: TranslationContext},
			{Role: RoleUser, Content: utterance},
		},
	}
}
