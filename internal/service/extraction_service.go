package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/extract"
	"billscan/internal/port"
	"billscan/internal/validate"
)

// ExtractBillDataInput is the DTO for one extraction request.
type ExtractBillDataInput struct {
	DocumentURL  string
	ClaimedTotal *float64 // optional; enables reconciliation when set
}

// BillExtractionService runs the full extraction pipeline: OCR text
// acquisition, structured extraction, validation, duplicate detection,
// optional reconciliation, and response assembly. The service holds only
// read-only collaborators; all per-request state (token counters,
// duplicate tracking) lives inside each ExtractBillData call.
type BillExtractionService struct {
	source    port.TextSource
	extractor *extract.Extractor
	cfg       config.PipelineConfig
}

// NewBillExtractionService creates the pipeline service.
func NewBillExtractionService(source port.TextSource, extractor *extract.Extractor, cfg config.PipelineConfig) *BillExtractionService {
	return &BillExtractionService{
		source:    source,
		extractor: extractor,
		cfg:       cfg,
	}
}

// ExtractBillData processes one document. On success it returns a
// self-checked response envelope; on failure it returns a domain error
// that the handler maps to a status code.
func (s *BillExtractionService) ExtractBillData(ctx context.Context, input *ExtractBillDataInput) (*domain.ExtractionResponse, error) {
	start := time.Now()

	// Step 1: OCR text acquisition
	text, err := s.source.Extract(ctx, input.DocumentURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrNoTextExtracted
	}
	log.Printf("service.BillExtractionService: ocr extracted %d chars", len(text))

	// Step 2: structured extraction (token usage is request-scoped)
	usage := &domain.TokenUsage{}
	result := s.extractor.ExtractItems(ctx, usage, text, "1")
	if len(result.Items) == 0 {
		return nil, domain.ErrNoLineItems
	}
	log.Printf("service.BillExtractionService: extracted %d candidate items, %d tokens", len(result.Items), usage.Total())

	// Step 3: per-item validation and the quality gate
	report := validate.AssessQuality(result.Items)
	log.Printf("service.BillExtractionService: quality %d/%d valid, score %.2f",
		report.ValidItems, report.TotalItems, report.QualityScore)
	for _, issue := range report.Issues {
		log.Printf("service.BillExtractionService: issue: %s", issue)
	}
	if report.QualityScore < s.cfg.QualityThreshold {
		return nil, fmt.Errorf("%w: quality score %.2f%%", domain.ErrLowQuality, report.QualityScore)
	}

	items := validate.FilterValid(result.Items)
	if len(items) == 0 {
		return nil, domain.ErrNoLineItems
	}

	// Step 4: duplicate detection — duplicates are kept but logged; the
	// quality score above already discounts them.
	if dupCount, _ := validate.CheckDuplicates(items); dupCount > 0 {
		log.Printf("service.BillExtractionService: found %d potential duplicate item groups", dupCount)
	}

	// Step 5: optional reconciliation against a claimed total. Never
	// gates the response; needs_review is surfaced in the logs.
	if input.ClaimedTotal != nil {
		recon := validate.ReconcileWithPolicy(items, *input.ClaimedTotal, s.cfg.ReconciliationPolicy)
		if recon.Status == domain.ReconciliationNeedsReview {
			log.Printf("service.BillExtractionService: reconciliation needs review: calculated %.2f vs claimed %.2f (%.2f%%)",
				recon.CalculatedTotal, recon.ClaimedTotal, recon.VariancePercentage)
		} else {
			log.Printf("service.BillExtractionService: reconciliation %s (variance %.2f)", recon.Status, recon.Variance)
		}
	}

	// Step 6: assemble and self-check
	pages := []domain.PageItems{{
		PageNo:    "1",
		PageType:  normalizePageType(result.PageType, text),
		BillItems: items,
	}}
	resp := AssembleSuccess(pages, usage, len(items))

	if !ValidateResponse(resp) {
		log.Printf("service.BillExtractionService: assembled response failed schema self-check")
		return nil, domain.ErrResponseContract
	}

	log.Printf("service.BillExtractionService: processed document in %s, %d items, %d tokens",
		time.Since(start).Round(time.Millisecond), len(items), usage.Total())
	return resp, nil
}

// normalizePageType maps the model-reported tag onto the known page
// classification set, falling back to a keyword scan of the OCR text for
// anything unrecognized.
func normalizePageType(pageType, ocrText string) string {
	switch pageType {
	case domain.PageTypeBillDetail, domain.PageTypeFinalBill, domain.PageTypePharmacy:
		return pageType
	}
	return ClassifyPageText(ocrText)
}

// ClassifyPageText guesses the page classification from OCR text
// keywords.
func ClassifyPageText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "pharmacy") || strings.Contains(lower, "medicine") || strings.Contains(lower, "drug"):
		return domain.PageTypePharmacy
	case strings.Contains(lower, "final"):
		return domain.PageTypeFinalBill
	default:
		return domain.PageTypeBillDetail
	}
}
