package port

import "context"

// CompletionRequest carries the data for a single text-completion call.
type CompletionRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// CompletionResult is the completion text plus the provider-reported
// token accounting for the call.
type CompletionResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Completer abstracts an LLM text-completion provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}
