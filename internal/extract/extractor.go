package extract

import (
	"context"
	"errors"
	"log"
	"time"

	"billscan/internal/completion"
	"billscan/internal/domain"
	"billscan/internal/port"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 2 * time.Second
	defaultMaxTokens    = 2000
	defaultPromptBudget = 8000
)

// Extractor turns OCR text into candidate line items via a completion
// provider. It owns transport retry and the single repair attempt; it
// never owns request-scoped state, so one Extractor serves all requests.
type Extractor struct {
	completer    port.Completer
	maxAttempts  int
	baseDelay    time.Duration
	maxTokens    int
	promptBudget int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxAttempts sets the total transport attempts per completion call.
func WithMaxAttempts(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the initial retry backoff delay.
func WithBaseDelay(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.baseDelay = d
		}
	}
}

// WithMaxTokens caps the completion output length.
func WithMaxTokens(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithPromptBudget bounds how many characters of OCR text are embedded
// in the prompt.
func WithPromptBudget(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.promptBudget = n
		}
	}
}

// NewExtractor creates an Extractor around a completion provider.
func NewExtractor(completer port.Completer, opts ...Option) *Extractor {
	e := &Extractor{
		completer:    completer,
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		maxTokens:    defaultMaxTokens,
		promptBudget: defaultPromptBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractItems runs one structured-extraction attempt, with up to one
// repair retry, accumulating token counts into usage. An empty result is
// a valid outcome; transport exhaustion degrades to empty rather than
// erroring.
func (e *Extractor) ExtractItems(ctx context.Context, usage *domain.TokenUsage, text, pageLabel string) *domain.ExtractionResult {
	prompt := BuildExtractionPrompt(text, pageLabel, e.promptBudget)

	out, err := e.completeWithRetry(ctx, prompt)
	if err != nil {
		log.Printf("extract.Extractor: completion failed after retries: %v", err)
		return &domain.ExtractionResult{PageType: domain.PageTypeBillDetail}
	}
	usage.Add(out.InputTokens, out.OutputTokens)

	result := ParseCompletion(out.Text)
	if len(result.Items) > 0 {
		return result
	}

	// One repair attempt against the failed output; its tokens are
	// additive to the first attempt's.
	log.Printf("extract.Extractor: no items parsed, issuing repair attempt")
	repairPrompt := BuildRepairPrompt(text, out.Text, e.promptBudget)
	repairOut, err := e.completeWithRetry(ctx, repairPrompt)
	if err != nil {
		log.Printf("extract.Extractor: repair completion failed: %v", err)
		return result
	}
	usage.Add(repairOut.InputTokens, repairOut.OutputTokens)

	repaired := ParseCompletion(repairOut.Text)
	if len(repaired.Items) > 0 {
		return repaired
	}
	return result
}

// completeWithRetry invokes the completer with exponential backoff.
// Every provider error is transport-class at this layer; parse failures
// are handled by the caller.
func (e *Extractor) completeWithRetry(ctx context.Context, prompt string) (*port.CompletionResult, error) {
	req := port.CompletionRequest{
		System:    SystemPrompt,
		Prompt:    prompt,
		MaxTokens: e.maxTokens,
	}

	delay := e.baseDelay
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		out, err := e.completer.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == e.maxAttempts {
			break
		}

		wait := delay
		var rlErr *completion.RateLimitError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > wait {
			wait = rlErr.RetryAfter
		}
		log.Printf("extract.Extractor: attempt %d/%d failed (%v), retrying in %s", attempt, e.maxAttempts, err, wait)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}

	return nil, lastErr
}
