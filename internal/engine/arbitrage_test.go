package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

func yesOutcomes(prices ...float64) []domain.OutcomeToken {
	outcomes := make([]domain.OutcomeToken, len(prices))
	for i, p := range prices {
		outcomes[i] = domain.OutcomeToken{YesPrice: p, NoPrice: 1 - p}
	}
	return outcomes
}

func TestDetect(t *testing.T) {
	t.Run("balanced market", func(t *testing.T) {
		report := Detect(yesOutcomes(0.4, 0.35, 0.25))
		require.InDelta(t, 1.0, report.TotalYesSum, 1e-12)
		require.Equal(t, domain.OpportunityNone, report.Opportunity)
		require.Equal(t, 0.0, report.ProfitPotential)
	})

	t.Run("overpriced sum signals mint and sell", func(t *testing.T) {
		report := Detect(yesOutcomes(0.5, 0.4, 0.3))
		require.InDelta(t, 1.2, report.TotalYesSum, 1e-12)
		require.Equal(t, domain.OpportunityMintAndSell, report.Opportunity)
		require.InDelta(t, 0.2, report.ProfitPotential, 1e-12)
	})

	t.Run("underpriced sum signals buy and redeem", func(t *testing.T) {
		report := Detect(yesOutcomes(0.3, 0.3, 0.3))
		require.InDelta(t, 0.9, report.TotalYesSum, 1e-12)
		require.Equal(t, domain.OpportunityBuyAndRedeem, report.Opportunity)
		require.InDelta(t, 0.1, report.ProfitPotential, 1e-12)
	})

	t.Run("symmetry around the anchor", func(t *testing.T) {
		const x = 0.05
		over := Detect(yesOutcomes(0.5+x, 0.5))
		under := Detect(yesOutcomes(0.5-x, 0.5))
		require.InDelta(t, over.ProfitPotential, under.ProfitPotential, 1e-12)
	})

	t.Run("tolerance band boundaries", func(t *testing.T) {
		// 1.0009 is inside the band, 1.0011 just outside.
		inside := Detect(yesOutcomes(0.5, 0.5009))
		require.Equal(t, domain.OpportunityNone, inside.Opportunity)
		require.Equal(t, 0.0, inside.ProfitPotential)

		outside := Detect(yesOutcomes(0.5, 0.5011))
		require.Equal(t, domain.OpportunityMintAndSell, outside.Opportunity)
		require.InDelta(t, 0.0011, outside.ProfitPotential, 1e-9)

		low := Detect(yesOutcomes(0.5, 0.4989))
		require.Equal(t, domain.OpportunityBuyAndRedeem, low.Opportunity)
		require.InDelta(t, 0.0011, low.ProfitPotential, 1e-9)
	})

	t.Run("no outcomes means empty sum", func(t *testing.T) {
		report := Detect(nil)
		require.Equal(t, 0.0, report.TotalYesSum)
		require.Equal(t, domain.OpportunityBuyAndRedeem, report.Opportunity)
		require.Equal(t, 1.0, report.ProfitPotential)
	})
}
