package engine

import "github.com/futarchyhq/futarchyd/internal/domain"

// UpdateMarketState derives a fresh MarketState from the current outcome
// weight list: Normalize for prices, Detect for the arbitrage flag, and the
// fixed 1 PT full-set cost. The snapshot timestamp is a collaborator
// concern and is left zero here so the derivation stays deterministic.
func UpdateMarketState(inputs []domain.OutcomeInput, spread float64) (domain.MarketState, error) {
	outcomes, err := Normalize(inputs, spread)
	if err != nil {
		return domain.MarketState{}, err
	}

	report := Detect(outcomes)
	return domain.MarketState{
		Outcomes:               outcomes,
		TotalYesPriceSum:       report.TotalYesSum,
		IsArbitrageOpportunity: report.Opportunity != domain.OpportunityNone,
		FullSetCost:            FullSetCost,
	}, nil
}
