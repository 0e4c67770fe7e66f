package validate

import (
	"fmt"
	"math"
	"strings"

	"billscan/internal/domain"
)

type duplicateKey struct {
	name     string
	amount   float64
	quantity float64
}

// CheckDuplicates finds line items that are exact or near-exact repeats.
// Items are keyed by (lower-cased trimmed name, amount rounded to 2
// decimals, quantity rounded to 2 decimals); the count is the number of
// distinct keys with more than one occurrence, not the number of extra
// occurrences. Duplicates are reported, never dropped here — the caller
// decides policy.
func CheckDuplicates(items []domain.LineItem) (int, []string) {
	seen := make(map[duplicateKey]int, len(items))
	var details []string

	for i := range items {
		item := &items[i]
		key := duplicateKey{
			name:     strings.ToLower(strings.TrimSpace(item.Name)),
			amount:   round2(item.Amount),
			quantity: round2(item.Quantity),
		}
		if seen[key] > 0 {
			details = append(details, fmt.Sprintf(
				"Item: %s | Amount: %.2f | Qty: %.2f",
				item.Name, item.Amount, item.Quantity,
			))
		}
		seen[key]++
	}

	count := 0
	for _, occurrences := range seen {
		if occurrences > 1 {
			count++
		}
	}
	return count, details
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
