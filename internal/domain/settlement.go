package domain

import "time"

// Holdings is a user's YES/NO token balances, one slot per outcome index.
// Quantities are non-negative; a zero balance is a valid holding.
type Holdings struct {
	YesTokens []float64 `json:"yes_tokens"`
	NoTokens  []float64 `json:"no_tokens"`
}

// Payout is the settlement result for one user's holdings: per-outcome YES
// and NO payouts plus their sum, all in PT. It is a pure function of the
// winner index and the holdings, so it is never stored as mutable state.
type Payout struct {
	TotalPayout     float64   `json:"total_payout"`
	YesTokenPayouts []float64 `json:"yes_token_payouts"`
	NoTokenPayouts  []float64 `json:"no_token_payouts"`
}

// Resolution records the terminal state of a market: the single winning
// outcome index, set exactly once.
type Resolution struct {
	MarketID    string    `json:"market_id"`
	WinnerIndex int       `json:"winner_index"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

// Settlement is one effectful payout of a user's holdings after resolution.
// The (MarketID, UserID) pair is unique: redundant settlement attempts are
// deduplicated by the store, not by the pricing core.
type Settlement struct {
	ID          string    `json:"id"`
	MarketID    string    `json:"market_id"`
	UserID      string    `json:"user_id"`
	WinnerIndex int       `json:"winner_index"`
	Payout      Payout    `json:"payout"`
	SettledAt   time.Time `json:"settled_at"`
}
