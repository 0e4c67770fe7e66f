package service

import (
	"billscan/internal/domain"
)

// AssembleSuccess packages validated pages and token accounting into the
// caller-facing success envelope. Input slices are copied, never
// retained or mutated.
func AssembleSuccess(pages []domain.PageItems, usage *domain.TokenUsage, totalItemCount int) *domain.ExtractionResponse {
	pagesCopy := make([]domain.PageItems, len(pages))
	for i, page := range pages {
		items := make([]domain.LineItem, len(page.BillItems))
		copy(items, page.BillItems)
		pagesCopy[i] = domain.PageItems{
			PageNo:    page.PageNo,
			PageType:  page.PageType,
			BillItems: items,
		}
	}

	return &domain.ExtractionResponse{
		IsSuccess: true,
		TokenUsage: &domain.ResponseTokenUsage{
			TotalTokens:  usage.Total(),
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
		},
		Data: &domain.ResponseData{
			PagewiseLineItems: pagesCopy,
			TotalItemCount:    totalItemCount,
		},
	}
}

// AssembleError packages a short human-readable failure message.
func AssembleError(message string) *domain.ExtractionResponse {
	return &domain.ExtractionResponse{
		IsSuccess: false,
		Message:   message,
	}
}

// ValidateResponse re-checks the full structural contract immediately
// before a response leaves the pipeline. A response failing this check
// must never reach the caller.
func ValidateResponse(resp *domain.ExtractionResponse) bool {
	if resp == nil {
		return false
	}

	if !resp.IsSuccess {
		return resp.Message != ""
	}

	if resp.TokenUsage == nil || resp.Data == nil {
		return false
	}
	u := resp.TokenUsage
	if u.TotalTokens < 0 || u.InputTokens < 0 || u.OutputTokens < 0 {
		return false
	}
	if u.TotalTokens != u.InputTokens+u.OutputTokens {
		return false
	}

	if resp.Data.TotalItemCount < 0 {
		return false
	}
	counted := 0
	for i := range resp.Data.PagewiseLineItems {
		page := &resp.Data.PagewiseLineItems[i]
		if page.PageNo == "" {
			return false
		}
		switch page.PageType {
		case domain.PageTypeBillDetail, domain.PageTypeFinalBill, domain.PageTypePharmacy:
		default:
			return false
		}
		for j := range page.BillItems {
			item := &page.BillItems[j]
			if item.Name == "" {
				return false
			}
			if item.Amount < 0 || item.Rate < 0 || item.Quantity < 0 {
				return false
			}
		}
		counted += len(page.BillItems)
	}

	return counted == resp.Data.TotalItemCount
}
