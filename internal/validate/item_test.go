package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
)

func candidate(name string, qty, rate, amount float64) domain.CandidateItem {
	return domain.CandidateItem{Name: name, Quantity: &qty, Rate: &rate, Amount: &amount}
}

func TestIsMetadataValue(t *testing.T) {
	metadata := []string{
		"2024-01-15",
		"01/15/2024",
		"15-01-2024",
		"INV-2024-001",
		"Inv 12345",
		"REF-123456",
		"Bill# 4521",
		"ID: 98765",
		"14:30",
		"Page 2",
		"page 1 of 3",
		"1-5",
		"abc-123456",
		"9876543210",
		"123.45",
	}
	for _, v := range metadata {
		assert.True(t, IsMetadataValue(v), "expected metadata: %q", v)
	}

	names := []string{
		"Aspirin 500mg",
		"Consultation Fee",
		"X-Ray Chest PA",
		"Room Charges Day 2",
		"Injection B12",
	}
	for _, v := range names {
		assert.False(t, IsMetadataValue(v), "expected item name: %q", v)
	}
}

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name string
		item domain.CandidateItem
		ok   bool
	}{
		{"valid item", candidate("Aspirin", 2, 50, 100), true},
		{"empty name", candidate("   ", 1, 10, 10), false},
		{"metadata name", candidate("2024-01-15", 1, 10, 10), false},
		{"missing quantity", domain.CandidateItem{Name: "Aspirin", Rate: ptr(10), Amount: ptr(10)}, false},
		{"missing rate", domain.CandidateItem{Name: "Aspirin", Quantity: ptr(1), Amount: ptr(10)}, false},
		{"missing amount", domain.CandidateItem{Name: "Aspirin", Quantity: ptr(1), Rate: ptr(10)}, false},
		{"negative quantity", candidate("Aspirin", -1, 10, 10), false},
		{"negative rate", candidate("Aspirin", 1, -10, 10), false},
		{"negative amount", candidate("Aspirin", 1, 10, -10), false},
		{"zero values allowed", candidate("Free Sample", 0, 0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateItem(&tt.item)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestValidateItem_MissingFieldsReportedFirst(t *testing.T) {
	// Field presence is checked before the name rules: an item with both
	// an empty name and a missing quantity fails on the missing field.
	ok, reason := ValidateItem(&domain.CandidateItem{Name: "", Rate: ptr(10), Amount: ptr(10)})
	assert.False(t, ok)
	assert.Equal(t, "missing required field: item_quantity", reason)

	ok, reason = ValidateItem(&domain.CandidateItem{Name: "2024-01-15", Quantity: ptr(1), Rate: ptr(10)})
	assert.False(t, ok)
	assert.Equal(t, "missing required field: item_amount", reason)
}

func TestAssessQuality_Empty(t *testing.T) {
	report := AssessQuality(nil)
	assert.Equal(t, 0, report.TotalItems)
	assert.Equal(t, 0.0, report.QualityScore)
}

func TestAssessQuality_AllValid(t *testing.T) {
	report := AssessQuality([]domain.CandidateItem{
		candidate("Aspirin", 2, 50, 100),
		candidate("Consultation", 1, 500, 500),
	})

	assert.Equal(t, 2, report.TotalItems)
	assert.Equal(t, 2, report.ValidItems)
	assert.Equal(t, 0, report.InvalidItems)
	assert.Equal(t, 100.0, report.QualityScore)
	assert.Empty(t, report.Issues)
}

func TestAssessQuality_MixedValidity(t *testing.T) {
	report := AssessQuality([]domain.CandidateItem{
		candidate("Aspirin", 2, 50, 100),
		candidate("INV-2024-001", 1, 10, 10),
		candidate("X-Ray", 1, 250, 250),
		candidate("2024-01-15", 1, 5, 5),
	})

	assert.Equal(t, 2, report.ValidItems)
	assert.Equal(t, 2, report.InvalidItems)
	assert.Equal(t, 50.0, report.QualityScore)
	require.Len(t, report.Issues, 2)
	assert.Contains(t, report.Issues[0], "Item 2:")
	assert.Contains(t, report.Issues[1], "Item 4:")
}

func TestAssessQuality_AmountMismatchIsAdvisory(t *testing.T) {
	// 2 x 50 = 100 but amount says 130 — outside the 5% tolerance.
	report := AssessQuality([]domain.CandidateItem{
		candidate("Aspirin", 2, 50, 130),
	})

	assert.Equal(t, 1, report.ValidItems)
	assert.Equal(t, 100.0, report.QualityScore)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "amount mismatch")
}

func TestAssessQuality_AmountWithinTolerance(t *testing.T) {
	// 3 x 33.33 = 99.99 vs amount 100 — inside tolerance, no issue.
	report := AssessQuality([]domain.CandidateItem{
		candidate("Syringe", 3, 33.33, 100),
	})
	assert.Empty(t, report.Issues)
}

func TestAssessQuality_DuplicatePenalty(t *testing.T) {
	report := AssessQuality([]domain.CandidateItem{
		candidate("Aspirin", 2, 50, 100),
		candidate("Aspirin", 2, 50, 100),
	})

	assert.Equal(t, 2, report.ValidItems)
	// One duplicate group: 100% * (1 - 0.1) = 90.
	assert.Equal(t, 90.0, report.QualityScore)
	assert.Contains(t, report.Issues[0], "duplicate")
}

func TestAssessQuality_DuplicatesAmongInvalidItemsCount(t *testing.T) {
	// The duplicate check covers every extracted candidate: repeated
	// metadata rows still form a duplicate group and discount the score.
	report := AssessQuality([]domain.CandidateItem{
		candidate("Aspirin", 2, 50, 100),
		candidate("2024-01-15", 1, 1, 1),
		candidate("2024-01-15", 1, 1, 1),
	})

	assert.Equal(t, 1, report.ValidItems)
	assert.Equal(t, 2, report.InvalidItems)
	// 1/3 valid with one duplicate group: 33.33% * 0.9 = 30.
	assert.Equal(t, 30.0, report.QualityScore)
	assert.Contains(t, report.Issues[len(report.Issues)-2], "duplicate")
}

func TestAssessQuality_DuplicateKeyCoercesMissingNumerics(t *testing.T) {
	// Two copies of an item with no amount collide on the zero-coerced key.
	report := AssessQuality([]domain.CandidateItem{
		{Name: "Gauze", Quantity: ptr(1), Rate: ptr(10)},
		{Name: "Gauze", Quantity: ptr(1), Rate: ptr(10)},
	})

	assert.Equal(t, 2, report.InvalidItems)
	assert.Contains(t, report.Issues[2], "duplicate")
}

func TestAssessQuality_ScoreFlooredAtZero(t *testing.T) {
	var items []domain.CandidateItem
	// 11 distinct duplicate groups would push the multiplier negative.
	for i := 0; i < 11; i++ {
		name := string(rune('A'+i)) + " Tablet"
		items = append(items, candidate(name, 1, 10, 10), candidate(name, 1, 10, 10))
	}

	report := AssessQuality(items)
	assert.Equal(t, 0.0, report.QualityScore)
}

func TestFilterValid(t *testing.T) {
	items := FilterValid([]domain.CandidateItem{
		candidate("Aspirin", 2, 50, 100),
		candidate("Page 2", 1, 1, 1),
		candidate("X-Ray", 1, 250, 250),
	})

	require.Len(t, items, 2)
	assert.Equal(t, "Aspirin", items[0].Name)
	assert.Equal(t, "X-Ray", items[1].Name)
	assert.Equal(t, 100.0, items[0].Amount)
}

func ptr(f float64) *float64 { return &f }
