package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"billscan/internal/domain"
	"billscan/internal/service"
)

// RespondError writes the failure envelope for a pipeline error, mapping
// domain errors onto HTTP status codes. Unknown errors are logged with
// the request ID and masked behind a generic message.
func RespondError(c *gin.Context, err error) {
	status, message := MapDomainError(err)

	if status == http.StatusInternalServerError {
		requestID, _ := c.Get("request_id")
		log.Printf("handler: [%v] internal error: %v", requestID, err)
	}

	c.JSON(status, service.AssembleError(message))
}

// MapDomainError translates a pipeline error into a status code and a
// caller-safe message. Document and extraction problems are the
// caller's to fix (422); anything unrecognized is a server fault.
func MapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDocumentFetch):
		return http.StatusUnprocessableEntity, "document could not be fetched"
	case errors.Is(err, domain.ErrImageDecode):
		return http.StatusUnprocessableEntity, "document is not a readable image"
	case errors.Is(err, domain.ErrOCRUnavailable):
		return http.StatusUnprocessableEntity, "text extraction is unavailable for this document"
	case errors.Is(err, domain.ErrNoTextExtracted):
		return http.StatusUnprocessableEntity, "no text could be extracted from the document"
	case errors.Is(err, domain.ErrNoLineItems):
		return http.StatusUnprocessableEntity, "no bill line items were found in the document"
	case errors.Is(err, domain.ErrLowQuality):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
