package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundToStrike(t *testing.T) {
	assert.Equal(t, 150.0, RoundToStrike(150.55, 5))
	assert.Equal(t, 24550.0, RoundToStrike(24537, 50))
	assert.Equal(t, 102.5, RoundToStrike(101.3, 2.5))
}

func TestStrikeLadder(t *testing.T) {
	strikes, err := StrikeLadder(101.3, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{90, 95, 100, 105, 110}, strikes)

	strikes, err = StrikeLadder(7, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 10, 15, 20}, strikes)

	strikes, err = StrikeLadder(42, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{42}, strikes)
}

func TestStrikeLadder_Invalid(t *testing.T) {
	_, err := StrikeLadder(0, 5, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = StrikeLadder(100, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = StrikeLadder(100, 5, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
