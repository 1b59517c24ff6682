// Package engine implements the futarchy outcome-pricing and settlement
// core: probability normalization, full-set arbitrage detection, mint/redeem
// mechanics, trade cost quoting, and binary-outcome resolution. Every
// function is pure and synchronous over value inputs; concurrent callers
// need no coordination.
package engine

import (
	"fmt"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

const (
	// DefaultSpread is the NO-side spread applied when the caller does not
	// configure one: 1%, half of which lands on the tradable NO price.
	DefaultSpread = 0.01

	// Tolerance is the half-width of the balanced band around a YES-price
	// sum of 1.0. Deviations inside [1-Tolerance, 1+Tolerance] are noise,
	// not arbitrage.
	Tolerance = 0.001

	// FullSetCost is the fixed price of minting one complete set of YES
	// tokens, in PT. The full-set mechanism is what anchors the YES-price
	// sum near this value.
	FullSetCost = 1.0
)

// Normalize converts raw per-outcome weights into a consistent set of
// YES/NO prices. Each weight is divided by the weight sum, so the returned
// YES prices sum to exactly 1 by construction. The tradable NO price is the
// theoretical complement plus half the spread.
//
// An empty input list, a negative weight, an all-zero weight sum, or a
// spread outside [0,1] fails with domain.ErrInvalidInput.
func Normalize(inputs []domain.OutcomeInput, spread float64) ([]domain.OutcomeToken, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("engine: normalize: empty outcome list: %w", domain.ErrInvalidInput)
	}
	if spread < 0 || spread > 1 {
		return nil, fmt.Errorf("engine: normalize: spread %g outside [0,1]: %w", spread, domain.ErrInvalidInput)
	}

	var sum float64
	for _, in := range inputs {
		if in.Weight < 0 {
			return nil, fmt.Errorf("engine: normalize: negative weight %g for outcome %q: %w",
				in.Weight, in.ID, domain.ErrInvalidInput)
		}
		sum += in.Weight
	}
	if sum == 0 {
		return nil, fmt.Errorf("engine: normalize: all outcome weights are zero: %w", domain.ErrInvalidInput)
	}

	tokens := make([]domain.OutcomeToken, len(inputs))
	for i, in := range inputs {
		yes := in.Weight / sum
		tokens[i] = domain.OutcomeToken{
			ID:            in.ID,
			Name:          in.Name,
			YesPrice:      yes,
			NoPrice:       1 - yes,
			ActualNoPrice: (1 - yes) + spread/2,
		}
	}
	return tokens, nil
}
