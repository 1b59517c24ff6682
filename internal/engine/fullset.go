package engine

import (
	"fmt"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// MintFullSet prices the minting of one complete set for a market with n
// outcomes: always exactly 1 PT in, one YES token per outcome out,
// regardless of n. A market needs at least two outcomes; n < 2 fails with
// domain.ErrInvalidMarket.
func MintFullSet(n int) (domain.MintResult, error) {
	if n < 2 {
		return domain.MintResult{}, fmt.Errorf("engine: mint full set: market needs >= 2 outcomes, got %d: %w",
			n, domain.ErrInvalidMarket)
	}
	return domain.MintResult{
		Cost:           FullSetCost,
		TokensReceived: n,
	}, nil
}

// RedeemFullSet checks whether the YES holdings contain at least one token
// of every outcome and, if so, yields the fixed 1 PT redemption. This is a
// precondition check, not a partial-redemption mechanism: any missing
// outcome fails the whole redemption with zero PT returned. An empty
// holdings vector never redeems.
func RedeemFullSet(yesTokenHoldings []float64) domain.RedeemResult {
	if len(yesTokenHoldings) == 0 {
		return domain.RedeemResult{}
	}
	for _, held := range yesTokenHoldings {
		if held < 1 {
			return domain.RedeemResult{}
		}
	}
	return domain.RedeemResult{
		PTReturned: FullSetCost,
		Success:    true,
	}
}
