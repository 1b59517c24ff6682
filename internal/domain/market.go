package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusResolved MarketStatus = "resolved"
)

// OutcomeInput is one outcome as supplied by the price/volume oracle: a
// stable identifier, a display label, and a non-negative raw weight (for
// example observed trading interest). Weights carry no unit.
type OutcomeInput struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// OutcomeToken is one outcome's priced market state. YesPrice is the
// market-implied probability in [0,1] that the outcome wins. NoPrice is
// always the exact complement 1 - YesPrice and is never set independently.
// ActualNoPrice is the tradable NO price: NoPrice plus half the configured
// spread, so ActualNoPrice >= NoPrice always holds.
type OutcomeToken struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	YesPrice      float64 `json:"yes_price"`
	NoPrice       float64 `json:"no_price"`
	ActualNoPrice float64 `json:"actual_no_price"`
}

// MarketState is the aggregate snapshot of every outcome in one market.
// It is always derived fresh from the full outcome list, never patched.
type MarketState struct {
	Outcomes               []OutcomeToken `json:"outcomes"`
	TotalYesPriceSum       float64        `json:"total_yes_price_sum"`
	IsArbitrageOpportunity bool           `json:"is_arbitrage_opportunity"`
	FullSetCost            float64        `json:"full_set_cost"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

// Market couples a market's identity with its latest priced snapshot.
type Market struct {
	ID        string       `json:"id"`
	Question  string       `json:"question"`
	Status    MarketStatus `json:"status"`
	State     MarketState  `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Opportunity classifies the exploitable direction of a price-sum deviation.
type Opportunity string

const (
	OpportunityNone         Opportunity = "none"
	OpportunityMintAndSell  Opportunity = "mint_and_sell"
	OpportunityBuyAndRedeem Opportunity = "buy_and_redeem"
)

// ArbitrageReport describes whether the sum of YES prices has drifted far
// enough from 1.0 that a full-set round trip is profitable, and by how much
// per unit before costs.
type ArbitrageReport struct {
	TotalYesSum     float64     `json:"total_yes_sum"`
	Opportunity     Opportunity `json:"opportunity"`
	ProfitPotential float64     `json:"profit_potential"`
}

// TokenSide selects the YES or NO token of an outcome.
type TokenSide string

const (
	TokenSideYes TokenSide = "yes"
	TokenSideNo  TokenSide = "no"
)

// TradeQuote is the cost/payout breakdown for a prospective token purchase.
// All amounts are in PT, the platform settlement currency.
type TradeQuote struct {
	Cost            float64 `json:"cost"`
	PotentialPayout float64 `json:"potential_payout"`
	ProfitIfWin     float64 `json:"profit_if_win"`
	LossIfLose      float64 `json:"loss_if_lose"`
}

// MintResult is the outcome of minting one full set: the fixed 1 PT cost and
// one YES token per outcome.
type MintResult struct {
	Cost           float64 `json:"cost"`
	TokensReceived int     `json:"tokens_received"`
}

// RedeemResult is the outcome of attempting a full-set redemption. Success
// requires at least one YES token of every outcome; there is no partial
// redemption.
type RedeemResult struct {
	PTReturned float64 `json:"pt_returned"`
	Success    bool    `json:"success"`
}
