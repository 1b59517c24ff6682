package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

func TestMintFullSet(t *testing.T) {
	t.Run("cost is one PT regardless of outcome count", func(t *testing.T) {
		for _, n := range []int{2, 3, 10, 100} {
			result, err := MintFullSet(n)
			require.NoError(t, err)
			require.Equal(t, 1.0, result.Cost)
			require.Equal(t, n, result.TokensReceived)
		}
	})

	t.Run("fewer than two outcomes rejected", func(t *testing.T) {
		for _, n := range []int{1, 0, -3} {
			_, err := MintFullSet(n)
			require.ErrorIs(t, err, domain.ErrInvalidMarket)
		}
	})
}

func TestRedeemFullSet(t *testing.T) {
	t.Run("complete set redeems for one PT", func(t *testing.T) {
		result := RedeemFullSet([]float64{1, 1, 1})
		require.True(t, result.Success)
		require.Equal(t, 1.0, result.PTReturned)
	})

	t.Run("surplus tokens still redeem exactly one PT", func(t *testing.T) {
		result := RedeemFullSet([]float64{5, 1.5, 2})
		require.True(t, result.Success)
		require.Equal(t, 1.0, result.PTReturned)
	})

	t.Run("missing outcome fails the whole redemption", func(t *testing.T) {
		result := RedeemFullSet([]float64{1, 0, 1})
		require.False(t, result.Success)
		require.Equal(t, 0.0, result.PTReturned)
	})

	t.Run("fractional holding below one fails", func(t *testing.T) {
		result := RedeemFullSet([]float64{1, 0.99})
		require.False(t, result.Success)
		require.Equal(t, 0.0, result.PTReturned)
	})

	t.Run("empty holdings never redeem", func(t *testing.T) {
		result := RedeemFullSet(nil)
		require.False(t, result.Success)
		require.Equal(t, 0.0, result.PTReturned)
	})
}

func TestMintRedeemRoundTrip(t *testing.T) {
	mint, err := MintFullSet(4)
	require.NoError(t, err)

	held := make([]float64, mint.TokensReceived)
	for i := range held {
		held[i] = 1
	}
	redeem := RedeemFullSet(held)
	require.True(t, redeem.Success)
	require.Equal(t, mint.Cost, redeem.PTReturned)
}
