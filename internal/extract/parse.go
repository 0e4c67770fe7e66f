package extract

import (
	"encoding/json"
	"strings"

	"billscan/internal/domain"
)

// currencyNoise lists characters stripped before numeric coercion.
const currencyNoise = "₹$€£,"

// rawResult mirrors the JSON shape the model is asked to produce. Fields
// are loosely typed because models routinely emit numbers as strings.
type rawResult struct {
	PageType  string            `json:"page_type"`
	LineItems []json.RawMessage `json:"line_items"`
	Notes     string            `json:"extraction_notes"`
}

type rawItem struct {
	Name     json.RawMessage `json:"item_name"`
	Quantity json.RawMessage `json:"item_quantity"`
	Rate     json.RawMessage `json:"item_rate"`
	Amount   json.RawMessage `json:"item_amount"`
}

// ParseCompletion parses completion text into an ExtractionResult. It is
// deliberately forgiving: code fences are stripped, the last complete
// JSON object in the text wins, missing fields are backfilled, and any
// unparseable input yields an empty result rather than an error.
func ParseCompletion(text string) *domain.ExtractionResult {
	result := &domain.ExtractionResult{PageType: domain.PageTypeBillDetail}

	clean := StripCodeFences(text)
	clean = lastJSONObject(clean)
	if clean == "" {
		return result
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return result
	}

	if raw.PageType != "" {
		result.PageType = raw.PageType
	}
	result.Notes = raw.Notes

	for _, itemJSON := range raw.LineItems {
		var item rawItem
		if err := json.Unmarshal(itemJSON, &item); err != nil {
			continue
		}
		result.Items = append(result.Items, domain.CandidateItem{
			Name:     coerceString(item.Name),
			Quantity: CoerceNumber(item.Quantity),
			Rate:     CoerceNumber(item.Rate),
			Amount:   CoerceNumber(item.Amount),
		})
	}

	return result
}

// StripCodeFences removes markdown fence markup (```json ... ```)
// surrounding or embedded in model output.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// lastJSONObject returns the last balanced top-level {...} span in s, or
// "" when none exists. Models sometimes echo the prompt before the
// answer, so the last object is the one we want.
func lastJSONObject(s string) string {
	end := strings.LastIndexByte(s, '}')
	if end < 0 {
		return ""
	}
	depth := 0
	for i := end; i >= 0; i-- {
		switch s[i] {
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				candidate := s[i : end+1]
				if json.Valid([]byte(candidate)) {
					return candidate
				}
			}
		}
	}
	// Unbalanced: take the widest span and let json.Unmarshal decide.
	start := strings.IndexByte(s, '{')
	if start < 0 || start > end {
		return ""
	}
	return s[start : end+1]
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Non-string scalar (number, bool): keep its literal text so the
	// metadata validator can reject it downstream.
	return strings.Trim(string(raw), `"`)
}

// CoerceNumber reads a JSON value as a number, treating currency symbols,
// thousands separators, and surrounding whitespace as strippable noise.
// Returns nil when the value is absent or not coercible — never zero.
func CoerceNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return CoerceNumericString(s)
}

// CoerceNumericString coerces a textual amount like "₹1,000.50" to its
// numeric value. Returns nil when the text is not a number.
func CoerceNumericString(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.TrimPrefix(s, "Rs")
	for _, c := range currencyNoise {
		s = strings.ReplaceAll(s, string(c), "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var f float64
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return nil
	}
	return &f
}
