package engine

import (
	"fmt"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// Quote computes the cost, potential payout, and win/lose P&L for buying
// amount tokens of one side of an outcome. YES buys at the outcome's
// YesPrice, NO at its ActualNoPrice (the spread-adjusted tradable price).
// Each token redeems for exactly 1 PT if its side wins; the YES/NO asymmetry
// lives entirely in the purchase price. A price of exactly 0 yields a free
// position, which is a valid edge case, not an error.
//
// amount <= 0 fails with domain.ErrInvalidAmount; an unknown side fails with
// domain.ErrInvalidInput.
func Quote(amount float64, side domain.TokenSide, outcome domain.OutcomeToken) (domain.TradeQuote, error) {
	if amount <= 0 {
		return domain.TradeQuote{}, fmt.Errorf("engine: quote: amount %g must be positive: %w",
			amount, domain.ErrInvalidAmount)
	}

	var price float64
	switch side {
	case domain.TokenSideYes:
		price = outcome.YesPrice
	case domain.TokenSideNo:
		price = outcome.ActualNoPrice
	default:
		return domain.TradeQuote{}, fmt.Errorf("engine: quote: unknown token side %q: %w",
			side, domain.ErrInvalidInput)
	}

	cost := amount * price
	payout := amount * FullSetCost
	return domain.TradeQuote{
		Cost:            cost,
		PotentialPayout: payout,
		ProfitIfWin:     payout - cost,
		LossIfLose:      -cost,
	}, nil
}
