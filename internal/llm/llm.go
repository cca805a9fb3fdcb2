package llm

import "context"

// TokenUsage reports what a single model call consumed.
type TokenUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ContentResponse is the text output of a model call plus its usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator is an interface for a client that can interact with a
// large language model.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}
