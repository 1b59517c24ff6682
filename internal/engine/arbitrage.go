package engine

import "github.com/futarchyhq/futarchyd/internal/domain"

// Detect sums the YES prices across outcomes and reports whether the sum has
// drifted outside the balanced band [1-Tolerance, 1+Tolerance]. A sum above
// the band means a freshly minted full set sells for more than its 1 PT cost
// (mint_and_sell); a sum below means the full set can be bought for less
// than its 1 PT redemption value (buy_and_redeem). ProfitPotential is the
// per-unit edge before costs, zero when balanced.
func Detect(outcomes []domain.OutcomeToken) domain.ArbitrageReport {
	var sum float64
	for _, o := range outcomes {
		sum += o.YesPrice
	}

	report := domain.ArbitrageReport{
		TotalYesSum: sum,
		Opportunity: domain.OpportunityNone,
	}
	switch {
	case sum > FullSetCost+Tolerance:
		report.Opportunity = domain.OpportunityMintAndSell
		report.ProfitPotential = sum - FullSetCost
	case sum < FullSetCost-Tolerance:
		report.Opportunity = domain.OpportunityBuyAndRedeem
		report.ProfitPotential = FullSetCost - sum
	}
	return report
}
