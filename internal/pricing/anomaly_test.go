package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCost(t *testing.T) {
	t.Parallel()
	th := DefaultAnomalyThresholds()

	tests := []struct {
		name    string
		cost    string
		sellEx  string
		sellInc string
		want    AnomalyRule
	}{
		{
			name: "cost exceeds sell",
			cost: "12.00", sellEx: "10.00", sellInc: "11.00",
			want: RuleCostExceedsSell,
		},
		{
			name: "margin below minimum",
			cost: "9.50", sellEx: "10.00", sellInc: "11.00",
			want: RuleLowMargin,
		},
		{
			// A $25 cost with a healthy-looking margin is still a case price:
			// the ceiling outranks the thin-margin heuristic.
			name: "cost above ceiling",
			cost: "25.00", sellEx: "30.00", sellInc: "33.00",
			want: RuleCostCeiling,
		},
		{
			name: "high cost with thin margin",
			cost: "16.00", sellEx: "25.00", sellInc: "27.50",
			want: RuleHighCostThin,
		},
		{
			name: "sell and cost both look like case prices",
			cost: "12.00", sellEx: "48.00", sellInc: "52.80",
			want: RuleCasePricePair,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			finding, flagged := EvaluateCost(dec(tt.cost), dec(tt.sellEx), dec(tt.sellInc), th)
			require.True(t, flagged)
			assert.Equal(t, tt.want, finding.Rule)
			assert.NotEmpty(t, finding.Reason)
		})
	}
}

func TestEvaluateCost_PlausiblePricing(t *testing.T) {
	t.Parallel()

	_, flagged := EvaluateCost(dec("5.00"), dec("8.25"), dec("9.08"), DefaultAnomalyThresholds())
	assert.False(t, flagged)
}

func TestEvaluateCost_SkipsUnpricedItems(t *testing.T) {
	t.Parallel()
	th := DefaultAnomalyThresholds()

	_, flagged := EvaluateCost(dec("0"), dec("10.00"), dec("11.00"), th)
	assert.False(t, flagged, "zero cost must be skipped, not flagged")

	_, flagged = EvaluateCost(dec("10.00"), dec("0"), dec("0"), th)
	assert.False(t, flagged, "zero sell must be skipped, not flagged")
}
