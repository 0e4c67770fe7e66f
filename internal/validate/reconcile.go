package validate

import (
	"math"

	"billscan/internal/config"
	"billscan/internal/domain"
)

// Reconcile compares the sum of extracted item amounts against a claimed
// bill total using the primary two-tier policy: perfect below an
// absolute epsilon, acceptable below 1% variance, needs_review beyond.
func Reconcile(items []domain.LineItem, claimedTotal float64) domain.ReconciliationReport {
	return ReconcileWithPolicy(items, claimedTotal, config.ReconciliationPolicyTwoTier)
}

// ReconcileWithPolicy reconciles under a named threshold policy. The
// three-tier variant inserts a "review" band below 5% variance before
// needs_review.
func ReconcileWithPolicy(items []domain.LineItem, claimedTotal float64, policy string) domain.ReconciliationReport {
	var calculated float64
	for i := range items {
		calculated += items[i].Amount
	}
	calculated = round2(calculated)

	variance := math.Abs(calculated - claimedTotal)
	var variancePct float64
	if claimedTotal > 0 {
		variancePct = variance / claimedTotal * 100
	}

	status := domain.ReconciliationNeedsReview
	switch {
	case variance < 0.01:
		status = domain.ReconciliationPerfect
	case variancePct < 1:
		status = domain.ReconciliationAcceptable
	case policy == config.ReconciliationPolicyThreeTier && variancePct < 5:
		status = domain.ReconciliationReview
	}

	return domain.ReconciliationReport{
		CalculatedTotal:    calculated,
		ClaimedTotal:       claimedTotal,
		Matches:            variance < 0.01,
		Variance:           round2(variance),
		VariancePercentage: round2(variancePct),
		Status:             status,
	}
}
