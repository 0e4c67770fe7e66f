package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"billscan/internal/config"
	"billscan/internal/domain"
)

func TestReconcile_Perfect(t *testing.T) {
	items := []domain.LineItem{
		item("Aspirin", 2, 50, 100),
		item("Consultation", 1, 450, 450),
	}

	report := Reconcile(items, 550)

	assert.Equal(t, 550.0, report.CalculatedTotal)
	assert.True(t, report.Matches)
	assert.Equal(t, domain.ReconciliationPerfect, report.Status)
	assert.Equal(t, 0.0, report.Variance)
}

func TestReconcile_AcceptableUnderOnePercent(t *testing.T) {
	items := []domain.LineItem{item("Room Charges", 1, 995, 995)}

	report := Reconcile(items, 1000)

	assert.False(t, report.Matches)
	assert.Equal(t, domain.ReconciliationAcceptable, report.Status)
	assert.Equal(t, 5.0, report.Variance)
	assert.Equal(t, 0.5, report.VariancePercentage)
}

func TestReconcile_NeedsReview(t *testing.T) {
	items := []domain.LineItem{item("Room Charges", 1, 550, 550)}

	report := Reconcile(items, 556)

	// 6/556 is about 1.08% variance — above the acceptable band.
	assert.Equal(t, domain.ReconciliationNeedsReview, report.Status)
}

func TestReconcile_LargeVariance(t *testing.T) {
	items := []domain.LineItem{item("Aspirin", 2, 50, 100)}

	report := Reconcile(items, 1000)

	assert.Equal(t, domain.ReconciliationNeedsReview, report.Status)
	assert.Equal(t, 900.0, report.Variance)
	assert.Equal(t, 90.0, report.VariancePercentage)
}

func TestReconcile_ZeroClaimedTotal(t *testing.T) {
	items := []domain.LineItem{item("Aspirin", 2, 50, 100)}

	report := Reconcile(items, 0)

	// A zero claimed total yields a zero variance percentage, which lands
	// in the acceptable band; the absolute variance still records the gap.
	assert.Equal(t, 0.0, report.VariancePercentage)
	assert.Equal(t, 100.0, report.Variance)
	assert.False(t, report.Matches)
	assert.Equal(t, domain.ReconciliationAcceptable, report.Status)
}

func TestReconcileWithPolicy_ThreeTierReviewBand(t *testing.T) {
	items := []domain.LineItem{item("Room Charges", 1, 970, 970)}

	// 3% variance: needs_review under two-tier, review under three-tier.
	twoTier := ReconcileWithPolicy(items, 1000, config.ReconciliationPolicyTwoTier)
	assert.Equal(t, domain.ReconciliationNeedsReview, twoTier.Status)

	threeTier := ReconcileWithPolicy(items, 1000, config.ReconciliationPolicyThreeTier)
	assert.Equal(t, domain.ReconciliationReview, threeTier.Status)
}

func TestReconcileWithPolicy_ThreeTierStillFlagsLargeVariance(t *testing.T) {
	items := []domain.LineItem{item("Room Charges", 1, 900, 900)}

	report := ReconcileWithPolicy(items, 1000, config.ReconciliationPolicyThreeTier)
	assert.Equal(t, domain.ReconciliationNeedsReview, report.Status)
}
