package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

func TestQuote(t *testing.T) {
	outcome := domain.OutcomeToken{
		ID:            "a",
		YesPrice:      0.4,
		NoPrice:       0.6,
		ActualNoPrice: 0.605,
	}

	t.Run("yes side buys at yes price", func(t *testing.T) {
		quote, err := Quote(10, domain.TokenSideYes, outcome)
		require.NoError(t, err)
		require.InDelta(t, 4.0, quote.Cost, 1e-12)
		require.Equal(t, 10.0, quote.PotentialPayout)
		require.InDelta(t, 6.0, quote.ProfitIfWin, 1e-12)
		require.InDelta(t, -4.0, quote.LossIfLose, 1e-12)
	})

	t.Run("no side buys at spread-adjusted price", func(t *testing.T) {
		quote, err := Quote(10, domain.TokenSideNo, outcome)
		require.NoError(t, err)
		require.InDelta(t, 6.05, quote.Cost, 1e-12)
		require.Equal(t, 10.0, quote.PotentialPayout)
		require.InDelta(t, 3.95, quote.ProfitIfWin, 1e-12)
		require.InDelta(t, -6.05, quote.LossIfLose, 1e-12)
	})

	t.Run("zero price is a free position, not an error", func(t *testing.T) {
		free := domain.OutcomeToken{YesPrice: 0, NoPrice: 1, ActualNoPrice: 1}
		quote, err := Quote(5, domain.TokenSideYes, free)
		require.NoError(t, err)
		require.Equal(t, 0.0, quote.Cost)
		require.Equal(t, quote.PotentialPayout, quote.ProfitIfWin)
		require.Equal(t, 0.0, quote.LossIfLose)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		for _, amount := range []float64{0, -1} {
			_, err := Quote(amount, domain.TokenSideYes, outcome)
			require.ErrorIs(t, err, domain.ErrInvalidAmount)
		}
	})

	t.Run("unknown side rejected", func(t *testing.T) {
		_, err := Quote(1, domain.TokenSide("maybe"), outcome)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
