package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/futarchyhq/futarchyd/internal/domain"
	"github.com/futarchyhq/futarchyd/internal/engine"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func threeOutcomes() []domain.OutcomeInput {
	return []domain.OutcomeInput{
		{ID: "a", Name: "Proposal A", Weight: 40},
		{ID: "b", Name: "Proposal B", Weight: 35},
		{ID: "c", Name: "Proposal C", Weight: 25},
	}
}

func TestMarketServiceCreateMarket(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	bus := newMemBus()
	svc := NewMarketService(engine.DefaultSpread, cache, bus, testLogger())

	t.Run("derives state and propagates", func(t *testing.T) {
		market, err := svc.CreateMarket(ctx, "m1", "Which proposal wins?", threeOutcomes())
		require.NoError(t, err)
		require.Equal(t, "m1", market.ID)
		require.Equal(t, domain.MarketStatusActive, market.Status)
		require.Len(t, market.State.Outcomes, 3)
		require.InDelta(t, 0.4, market.State.Outcomes[0].YesPrice, 1e-9)
		require.InDelta(t, 1.0, market.State.TotalYesPriceSum, 1e-9)
		require.False(t, market.State.IsArbitrageOpportunity)
		require.False(t, market.State.UpdatedAt.IsZero())

		cached, err := cache.Get(ctx, "m1")
		require.NoError(t, err)
		require.InDelta(t, market.State.TotalYesPriceSum, cached.TotalYesPriceSum, 1e-9)
		require.Equal(t, 1, bus.count(StateChannel))
	})

	t.Run("generates uuid when id empty", func(t *testing.T) {
		market, err := svc.CreateMarket(ctx, "", "Generated?", threeOutcomes())
		require.NoError(t, err)
		require.NotEmpty(t, market.ID)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := svc.CreateMarket(ctx, "m1", "Again?", threeOutcomes())
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("fewer than two outcomes", func(t *testing.T) {
		_, err := svc.CreateMarket(ctx, "m2", "Solo?", []domain.OutcomeInput{{ID: "x", Weight: 1}})
		require.ErrorIs(t, err, domain.ErrInvalidMarket)
	})

	t.Run("bad weights surface engine error", func(t *testing.T) {
		_, err := svc.CreateMarket(ctx, "m3", "Zeroes?", []domain.OutcomeInput{
			{ID: "x", Weight: 0}, {ID: "y", Weight: 0},
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestMarketServiceApplyWeights(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	bus := newMemBus()
	svc := NewMarketService(engine.DefaultSpread, cache, bus, testLogger())

	_, err := svc.CreateMarket(ctx, "m1", "Which proposal wins?", threeOutcomes())
	require.NoError(t, err)

	t.Run("recomputes state on new weights", func(t *testing.T) {
		state, err := svc.ApplyWeights(ctx, "m1", []domain.OutcomeInput{
			{ID: "a", Name: "Proposal A", Weight: 60},
			{ID: "b", Name: "Proposal B", Weight: 30},
			{ID: "c", Name: "Proposal C", Weight: 10},
		})
		require.NoError(t, err)
		require.InDelta(t, 0.6, state.Outcomes[0].YesPrice, 1e-9)
		require.Equal(t, 2, bus.count(StateChannel))

		var event stateEvent
		require.NoError(t, json.Unmarshal(bus.published[StateChannel][1], &event))
		require.Equal(t, "m1", event.MarketID)
		require.InDelta(t, 0.6, event.State.Outcomes[0].YesPrice, 1e-9)
	})

	t.Run("outcome count change rejected", func(t *testing.T) {
		_, err := svc.ApplyWeights(ctx, "m1", []domain.OutcomeInput{
			{ID: "a", Weight: 1}, {ID: "b", Weight: 1},
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown market", func(t *testing.T) {
		_, err := svc.ApplyWeights(ctx, "missing", threeOutcomes())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("resolved market rejected", func(t *testing.T) {
		require.NoError(t, svc.MarkResolved(ctx, "m1"))
		_, err := svc.ApplyWeights(ctx, "m1", threeOutcomes())
		require.ErrorIs(t, err, domain.ErrInvalidMarket)
	})
}

func TestMarketServiceGetState(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	svc := NewMarketService(engine.DefaultSpread, cache, newMemBus(), testLogger())

	_, err := svc.CreateMarket(ctx, "m1", "Which proposal wins?", threeOutcomes())
	require.NoError(t, err)

	t.Run("memory hit", func(t *testing.T) {
		state, err := svc.GetState(ctx, "m1")
		require.NoError(t, err)
		require.Len(t, state.Outcomes, 3)
	})

	t.Run("cache fallback", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "external", domain.MarketState{TotalYesPriceSum: 1.2}))
		state, err := svc.GetState(ctx, "external")
		require.NoError(t, err)
		require.InDelta(t, 1.2, state.TotalYesPriceSum, 1e-9)
	})

	t.Run("unknown market", func(t *testing.T) {
		_, err := svc.GetState(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMarketServiceQuote(t *testing.T) {
	ctx := context.Background()
	svc := NewMarketService(engine.DefaultSpread, newMemCache(), newMemBus(), testLogger())

	_, err := svc.CreateMarket(ctx, "m1", "Which proposal wins?", threeOutcomes())
	require.NoError(t, err)

	t.Run("yes side", func(t *testing.T) {
		quote, err := svc.Quote(ctx, "m1", 0, domain.TokenSideYes, 100)
		require.NoError(t, err)
		require.InDelta(t, 40.0, quote.Cost, 1e-9)
		require.InDelta(t, 100.0, quote.PotentialPayout, 1e-9)
		require.InDelta(t, 60.0, quote.ProfitIfWin, 1e-9)
		require.InDelta(t, -40.0, quote.LossIfLose, 1e-9)
	})

	t.Run("no side uses spread-adjusted price", func(t *testing.T) {
		quote, err := svc.Quote(ctx, "m1", 0, domain.TokenSideNo, 100)
		require.NoError(t, err)
		require.InDelta(t, 60.5, quote.Cost, 1e-9)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := svc.Quote(ctx, "m1", 3, domain.TokenSideYes, 100)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := svc.Quote(ctx, "m1", 0, domain.TokenSideYes, 0)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestMarketServiceFullSet(t *testing.T) {
	ctx := context.Background()
	svc := NewMarketService(engine.DefaultSpread, newMemCache(), newMemBus(), testLogger())

	_, err := svc.CreateMarket(ctx, "m1", "Which proposal wins?", threeOutcomes())
	require.NoError(t, err)

	t.Run("mint quote", func(t *testing.T) {
		mint, err := svc.MintQuote(ctx, "m1")
		require.NoError(t, err)
		require.InDelta(t, 1.0, mint.Cost, 1e-9)
		require.Equal(t, 3, mint.TokensReceived)
	})

	t.Run("redeem full set", func(t *testing.T) {
		redeem, err := svc.CheckRedeem(ctx, "m1", []float64{1, 1.5, 2})
		require.NoError(t, err)
		require.True(t, redeem.Success)
		require.InDelta(t, 1.0, redeem.PTReturned, 1e-9)
	})

	t.Run("incomplete set", func(t *testing.T) {
		redeem, err := svc.CheckRedeem(ctx, "m1", []float64{1, 0.5, 2})
		require.NoError(t, err)
		require.False(t, redeem.Success)
		require.Zero(t, redeem.PTReturned)
	})

	t.Run("holdings length mismatch", func(t *testing.T) {
		_, err := svc.CheckRedeem(ctx, "m1", []float64{1, 1})
		require.ErrorIs(t, err, domain.ErrInvalidHoldings)
	})
}
