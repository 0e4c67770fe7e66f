package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"billscan/internal/domain"
	"billscan/internal/service"
)

const maxDocumentURLLength = 2000

// ExtractRequest is the request body for bill data extraction. The
// claimed total is optional; when present it enables reconciliation
// against the sum of extracted item amounts.
type ExtractRequest struct {
	Document     string   `json:"document"`
	ClaimedTotal *float64 `json:"claimed_total"`
}

// ExtractHandler exposes the bill extraction pipeline over HTTP.
type ExtractHandler struct {
	service *service.BillExtractionService
}

// NewExtractHandler creates the extraction handler.
func NewExtractHandler(svc *service.BillExtractionService) *ExtractHandler {
	return &ExtractHandler{service: svc}
}

// ExtractBillData handles POST /extract-bill-data.
func (h *ExtractHandler) ExtractBillData(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: invalid JSON body", domain.ErrInvalidRequest))
		return
	}

	if err := validateDocumentURL(req.Document); err != nil {
		RespondError(c, err)
		return
	}

	resp, err := h.service.ExtractBillData(c.Request.Context(), &service.ExtractBillDataInput{
		DocumentURL:  req.Document,
		ClaimedTotal: req.ClaimedTotal,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func validateDocumentURL(raw string) error {
	url := strings.TrimSpace(raw)
	if url == "" {
		return fmt.Errorf("%w: document URL is required", domain.ErrInvalidRequest)
	}
	if len(url) > maxDocumentURLLength {
		return fmt.Errorf("%w: document URL exceeds %d characters", domain.ErrInvalidRequest, maxDocumentURLLength)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%w: document must be an http(s) URL", domain.ErrInvalidRequest)
	}
	return nil
}
