package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

func TestNormalize(t *testing.T) {
	t.Run("weights become probabilities", func(t *testing.T) {
		tokens, err := Normalize([]domain.OutcomeInput{
			{ID: "a", Name: "Alpha", Weight: 40},
			{ID: "b", Name: "Beta", Weight: 35},
			{ID: "c", Name: "Gamma", Weight: 25},
		}, 0.01)
		require.NoError(t, err)
		require.Len(t, tokens, 3)

		require.InDelta(t, 0.40, tokens[0].YesPrice, 1e-12)
		require.InDelta(t, 0.35, tokens[1].YesPrice, 1e-12)
		require.InDelta(t, 0.25, tokens[2].YesPrice, 1e-12)

		// Tradable NO carries half the spread on top of the complement.
		require.InDelta(t, 0.60, tokens[0].NoPrice, 1e-12)
		require.InDelta(t, 0.605, tokens[0].ActualNoPrice, 1e-12)

		require.Equal(t, "a", tokens[0].ID)
		require.Equal(t, "Alpha", tokens[0].Name)
	})

	t.Run("yes prices sum to one", func(t *testing.T) {
		tokens, err := Normalize([]domain.OutcomeInput{
			{ID: "a", Weight: 13.7},
			{ID: "b", Weight: 0.002},
			{ID: "c", Weight: 91},
			{ID: "d", Weight: 4.25},
		}, 0.02)
		require.NoError(t, err)

		var sum float64
		for _, tok := range tokens {
			sum += tok.YesPrice
			require.InDelta(t, 1.0, tok.YesPrice+tok.NoPrice, 1e-12)
			require.GreaterOrEqual(t, tok.ActualNoPrice, tok.NoPrice)
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	})

	t.Run("zero weight outcome is priced at zero", func(t *testing.T) {
		tokens, err := Normalize([]domain.OutcomeInput{
			{ID: "a", Weight: 10},
			{ID: "b", Weight: 0},
		}, 0.01)
		require.NoError(t, err)
		require.Equal(t, 1.0, tokens[0].YesPrice)
		require.Equal(t, 0.0, tokens[1].YesPrice)
		require.Equal(t, 1.0, tokens[1].NoPrice)
	})

	t.Run("empty list rejected", func(t *testing.T) {
		_, err := Normalize(nil, 0.01)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("all-zero weights rejected", func(t *testing.T) {
		_, err := Normalize([]domain.OutcomeInput{
			{ID: "a", Weight: 0},
			{ID: "b", Weight: 0},
		}, 0.01)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		_, err := Normalize([]domain.OutcomeInput{
			{ID: "a", Weight: 5},
			{ID: "b", Weight: -1},
		}, 0.01)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("spread outside unit interval rejected", func(t *testing.T) {
		inputs := []domain.OutcomeInput{{ID: "a", Weight: 1}, {ID: "b", Weight: 1}}

		_, err := Normalize(inputs, -0.01)
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = Normalize(inputs, 1.5)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("zero spread keeps tradable NO at complement", func(t *testing.T) {
		tokens, err := Normalize([]domain.OutcomeInput{
			{ID: "a", Weight: 1},
			{ID: "b", Weight: 3},
		}, 0)
		require.NoError(t, err)
		for _, tok := range tokens {
			require.Equal(t, tok.NoPrice, tok.ActualNoPrice)
		}
	})
}
