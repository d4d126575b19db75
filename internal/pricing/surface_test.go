package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSurface_Shape(t *testing.T) {
	grid, err := GenerateSurface(400, 400, 0.4, Call, 0.05)
	require.NoError(t, err)

	require.Len(t, grid.StockPrices, SurfacePricePoints)
	require.Len(t, grid.Times, SurfaceTimePoints)
	require.Len(t, grid.Values, SurfaceTimePoints)
	for _, row := range grid.Values {
		require.Len(t, row, SurfacePricePoints)
	}

	assert.InDelta(t, 200, grid.StockPrices[0], 1e-9)
	assert.InDelta(t, 600, grid.StockPrices[SurfacePricePoints-1], 1e-9)
	assert.InDelta(t, 1.0/365, grid.Times[0], 1e-12)
	assert.InDelta(t, 1.0, grid.Times[SurfaceTimePoints-1], 1e-12)

	step := grid.StockPrices[1] - grid.StockPrices[0]
	for j := 1; j < SurfacePricePoints; j++ {
		assert.InDelta(t, step, grid.StockPrices[j]-grid.StockPrices[j-1], 1e-9)
	}

	assert.Equal(t, 400.0, grid.CurrentPrice)
	assert.Equal(t, 400.0, grid.Strike)
	assert.Equal(t, 0.4, grid.Volatility)
	assert.Equal(t, 0.05, grid.Rate)
	assert.Equal(t, Call, grid.Type)
}

func TestGenerateSurface_NearExpiryCall(t *testing.T) {
	grid, err := GenerateSurface(400, 400, 0.4, Call, 0.05)
	require.NoError(t, err)

	itm := grid.Values[0][SurfacePricePoints-1]
	otm := grid.Values[0][0]
	assert.Greater(t, itm, otm)
	assert.InDelta(t, 200.0547907677, itm, 1e-6)
	assert.InDelta(t, 0, otm, 1e-12)
}

func TestGenerateSurface_MatchesPointPricing(t *testing.T) {
	for _, optType := range []OptionType{Call, Put} {
		grid, err := GenerateSurface(150, 140, 0.3, optType, 0.02)
		require.NoError(t, err)

		for i, T := range grid.Times {
			for j, S := range grid.StockPrices {
				want, err := Price(OptionSpec{Spot: S, Strike: 140, Expiry: T, Volatility: 0.3, Rate: 0.02, Type: optType})
				require.NoError(t, err)
				require.Equal(t, math.Float64bits(want), math.Float64bits(grid.Values[i][j]), "cell (%d,%d)", i, j)
			}
		}
	}
}

func TestGenerateSurface_Deterministic(t *testing.T) {
	first, err := GenerateSurface(250, 260, 0.35, Put, 0.04)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := GenerateSurface(250, 260, 0.35, Put, 0.04)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerateSurface_Errors(t *testing.T) {
	_, err := GenerateSurface(400, 400, 0.4, "spread", 0.05)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = GenerateSurface(0, 400, 0.4, Call, 0.05)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = GenerateSurface(400, -1, 0.4, Call, 0.05)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = GenerateSurface(400, 400, 0, Call, 0.05)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestSurfaceGrid_JSON(t *testing.T) {
	grid, err := GenerateSurface(100, 100, 0.2, Put, 0.05)
	require.NoError(t, err)

	b, err := json.Marshal(grid)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	for _, key := range []string{"stock_prices", "times", "option_values", "current_price", "strike_price", "volatility", "rate", "option_type"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "put", decoded["option_type"])
	assert.Len(t, decoded["option_values"], SurfaceTimePoints)
}
