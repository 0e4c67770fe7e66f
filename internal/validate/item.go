package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"billscan/internal/domain"
)

// metadataPatterns catch values that are bill metadata rather than
// product names: dates, invoice/reference/bill/ID numbers, times, page
// markers, numeric ranges, and invoice-like prefix codes. Ordered; the
// first match wins.
var metadataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),             // dates: YYYY-MM-DD
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),             // dates: MM/DD/YYYY
	regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`), // other date shapes
	regexp.MustCompile(`^inv[^a-z]*\d+`),                 // invoice numbers
	regexp.MustCompile(`^ref[^a-z]*\d+`),                 // reference numbers
	regexp.MustCompile(`^bill[^a-z]*\d+`),                // bill numbers
	regexp.MustCompile(`^id[^a-z]*\d+`),                  // IDs
	regexp.MustCompile(`^\d{2}:\d{2}`),                   // times: HH:MM
	regexp.MustCompile(`^page\s*\d+`),                    // page markers
	regexp.MustCompile(`^\d+\s*[-/]\s*\d+$`),             // ranges like "1-5"
	regexp.MustCompile(`^[a-z]+-\d{6}`),                  // codes: PREFIX-XXXXXX
	regexp.MustCompile(`^\d{10,}$`),                      // long bare numbers
}

// digitsOnly matches text with no letters at all — numbers and
// punctuation can never be a product name.
var digitsOnly = regexp.MustCompile(`^[\d\-/:.]+$`)

// amountToleranceFloor is the absolute floor of the quantity*rate
// consistency check; above it the tolerance is 5% of the product.
const amountToleranceFloor = 0.01

// duplicatePenalty is the quality-score multiplier discount applied per
// duplicate group.
const duplicatePenalty = 0.1

// IsMetadataValue reports whether text looks like bill metadata (a date,
// ID, reference code, or page marker) rather than an item name.
func IsMetadataValue(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, p := range metadataPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return digitsOnly.MatchString(strings.TrimSpace(text))
}

// ValidateItem applies the per-item acceptance rules in order and returns
// whether the candidate is usable plus the first failure reason. The
// amount ≈ quantity × rate check is advisory only: a mismatch is
// reported through AssessQuality but does not reject the item, since
// discounts and taxes legitimately break exact equality.
func ValidateItem(c *domain.CandidateItem) (bool, string) {
	if c.Quantity == nil {
		return false, "missing required field: item_quantity"
	}
	if c.Rate == nil {
		return false, "missing required field: item_rate"
	}
	if c.Amount == nil {
		return false, "missing required field: item_amount"
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return false, "item_name cannot be empty"
	}
	if IsMetadataValue(name) {
		return false, fmt.Sprintf("item_name appears to be metadata (date/ID/reference), not a product: %q", name)
	}
	if *c.Quantity < 0 {
		return false, "item_quantity must be a non-negative number"
	}
	if *c.Rate < 0 {
		return false, "item_rate must be a non-negative number"
	}
	if *c.Amount < 0 {
		return false, "item_amount must be a non-negative number"
	}
	return true, ""
}

// amountConsistent checks amount ≈ quantity × rate within
// max(0.01, 5% of the product).
func amountConsistent(c *domain.CandidateItem) bool {
	calculated := *c.Quantity * *c.Rate
	tolerance := math.Max(amountToleranceFloor, calculated*0.05)
	return math.Abs(calculated-*c.Amount) <= tolerance
}

// AssessQuality validates every candidate, checks the full candidate
// set for duplicates, and produces the aggregate quality report that
// gates the pipeline. Zero candidates scores 0.
func AssessQuality(candidates []domain.CandidateItem) domain.QualityReport {
	report := domain.QualityReport{TotalItems: len(candidates)}

	all := make([]domain.LineItem, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		// Missing numerics coerce to 0 for the duplicate key.
		all[i] = c.Item()

		ok, reason := ValidateItem(c)
		if !ok {
			report.InvalidItems++
			report.Issues = append(report.Issues, fmt.Sprintf("Item %d: %s", i+1, reason))
			continue
		}
		report.ValidItems++
		if !amountConsistent(c) {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"Item %d: amount mismatch for %q: %.2f x %.2f != %.2f",
				i+1, c.Name, *c.Quantity, *c.Rate, *c.Amount,
			))
		}
	}

	dupCount, dupDetails := CheckDuplicates(all)
	if dupCount > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("Found %d potential duplicate items", dupCount))
		if len(dupDetails) > 3 {
			dupDetails = dupDetails[:3]
		}
		report.Issues = append(report.Issues, dupDetails...)
	}

	if report.TotalItems > 0 {
		score := float64(report.ValidItems) / float64(report.TotalItems)
		if dupCount > 0 {
			score *= 1 - float64(dupCount)*duplicatePenalty
		}
		report.QualityScore = math.Round(math.Max(0, score)*100*100) / 100
	}

	return report
}

// FilterValid returns the candidates that pass ValidateItem, converted
// to immutable line items in their original order.
func FilterValid(candidates []domain.CandidateItem) []domain.LineItem {
	var items []domain.LineItem
	for i := range candidates {
		if ok, _ := ValidateItem(&candidates[i]); ok {
			items = append(items, candidates[i].Item())
		}
	}
	return items
}
