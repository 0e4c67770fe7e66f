package port

import "context"

// TextSource resolves a document reference to best-effort plain text.
// An empty string means the document carried no extractable text; that
// is a valid outcome, not an error.
type TextSource interface {
	Extract(ctx context.Context, documentURL string) (string, error)
}
