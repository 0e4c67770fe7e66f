package domain

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrDocumentFetch    = errors.New("failed to download document")
	ErrImageDecode      = errors.New("document is not a decodable image")
	ErrOCRUnavailable   = errors.New("ocr backend unavailable")
	ErrNoTextExtracted  = errors.New("no text could be extracted from document")
	ErrNoLineItems      = errors.New("no bill line items found in document")
	ErrLowQuality       = errors.New("extraction quality below threshold")
	ErrResponseContract = errors.New("response failed schema self-check")
)
