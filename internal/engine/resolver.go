package engine

import (
	"fmt"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// Resolve computes per-token and total payouts for a user's holdings under
// binary per-outcome settlement: the winning outcome pays its YES holders 1
// PT per token, every other outcome pays its NO holders 1 PT per token, and
// everything else expires worthless. The function is deterministic and
// leaves holdings untouched, so redundant settlement attempts produce
// identical results; only the caller's effectful transfer needs dedup.
//
// Holdings arrays must be equally sized and non-empty, balances must be
// non-negative, and winnerIndex must be a valid outcome index; anything else
// fails with domain.ErrInvalidHoldings.
func Resolve(winnerIndex int, holdings domain.Holdings) (domain.Payout, error) {
	n := len(holdings.YesTokens)
	if n == 0 || len(holdings.NoTokens) != n {
		return domain.Payout{}, fmt.Errorf("engine: resolve: holdings arrays yes=%d no=%d must be equal and non-empty: %w",
			n, len(holdings.NoTokens), domain.ErrInvalidHoldings)
	}
	if winnerIndex < 0 || winnerIndex >= n {
		return domain.Payout{}, fmt.Errorf("engine: resolve: winner index %d outside [0,%d): %w",
			winnerIndex, n, domain.ErrInvalidHoldings)
	}
	for i := 0; i < n; i++ {
		if holdings.YesTokens[i] < 0 || holdings.NoTokens[i] < 0 {
			return domain.Payout{}, fmt.Errorf("engine: resolve: negative balance at outcome %d: %w",
				i, domain.ErrInvalidHoldings)
		}
	}

	yesPayouts := make([]float64, n)
	noPayouts := make([]float64, n)
	var total float64

	yesPayouts[winnerIndex] = holdings.YesTokens[winnerIndex] * FullSetCost
	total += yesPayouts[winnerIndex]

	for i := 0; i < n; i++ {
		if i == winnerIndex {
			continue
		}
		noPayouts[i] = holdings.NoTokens[i] * FullSetCost
		total += noPayouts[i]
	}

	return domain.Payout{
		TotalPayout:     total,
		YesTokenPayouts: yesPayouts,
		NoTokenPayouts:  noPayouts,
	}, nil
}
