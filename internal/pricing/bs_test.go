package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallPutPrice_ReferenceCase(t *testing.T) {
	S, K, T, sigma, r := 100.0, 100.0, 30.0/365.0, 0.20, 0.05

	call, err := CallPrice(S, K, T, sigma, r)
	require.NoError(t, err)
	put, err := PutPrice(S, K, T, sigma, r)
	require.NoError(t, err)

	assert.InDelta(t, 2.49, call, 0.05)
	assert.InDelta(t, 2.08, put, 0.05)
	assert.InDelta(t, 2.4933768194, call, 1e-8)
	assert.InDelta(t, 2.0832611958, put, 1e-8)
}

func TestCallPutPrice_OneYear(t *testing.T) {
	call, err := CallPrice(100, 100, 1, 0.2, 0.05)
	require.NoError(t, err)
	put, err := PutPrice(100, 100, 1, 0.2, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 10.450583572185565, call, 1e-9)
	assert.InDelta(t, 5.573526022256971, put, 1e-9)
}

func TestPutCallParity(t *testing.T) {
	cases := []struct {
		name           string
		S, K, T, sigma float64
		r              float64
	}{
		{"atm short", 100, 100, 30.0 / 365, 0.2, 0.05},
		{"itm call long", 150, 100, 2, 0.35, 0.03},
		{"otm call", 80, 120, 0.5, 0.6, 0.01},
		{"negative rate", 100, 95, 1, 0.25, -0.01},
		{"deep otm", 10, 500, 0.1, 0.1, 0.05},
		{"high vol", 400, 400, 1, 1.5, 0.05},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call, err := CallPrice(tc.S, tc.K, tc.T, tc.sigma, tc.r)
			require.NoError(t, err)
			put, err := PutPrice(tc.S, tc.K, tc.T, tc.sigma, tc.r)
			require.NoError(t, err)

			lhs := call - put
			rhs := tc.S - tc.K*math.Exp(-tc.r*tc.T)
			tol := 1e-8 * math.Max(1, math.Max(math.Abs(lhs), math.Abs(rhs)))
			assert.InDelta(t, rhs, lhs, tol)

			residual, err := VerifyPutCallParity(tc.S, tc.K, tc.T, tc.sigma, tc.r)
			require.NoError(t, err)
			assert.InDelta(t, 0, residual, 1e-8*math.Max(tc.S, tc.K))
		})
	}
}

func TestPrice_ExpiredIsIntrinsic(t *testing.T) {
	for _, T := range []float64{0, -0.5, math.Inf(-1)} {
		for _, sigma := range []float64{0, 0.2, 3} {
			call, err := CallPrice(110, 100, T, sigma, 0.05)
			require.NoError(t, err)
			assert.Equal(t, 10.0, call)

			put, err := PutPrice(110, 100, T, sigma, 0.05)
			require.NoError(t, err)
			assert.Equal(t, 0.0, put)

			call, err = CallPrice(90, 100, T, sigma, 0.05)
			require.NoError(t, err)
			assert.Equal(t, 0.0, call)

			put, err = PutPrice(90, 100, T, sigma, 0.05)
			require.NoError(t, err)
			assert.Equal(t, 10.0, put)
		}
	}
}

func TestVerifyPutCallParity_Expired(t *testing.T) {
	residual, err := VerifyPutCallParity(120, 100, -1, 0.3, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 0.0, residual)
}

func TestCallPrice_ZeroVolatilityIsDegenerate(t *testing.T) {
	_, err := CallPrice(100, 100, 0.5, 0, 0.05)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	_, err = PutPrice(100, 100, 0.5, 0, 0.05)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestCallPrice_InvalidArguments(t *testing.T) {
	cases := []struct {
		name           string
		S, K, T, sigma float64
		r              float64
	}{
		{"zero spot", 0, 100, 1, 0.2, 0.05},
		{"negative spot", -5, 100, 1, 0.2, 0.05},
		{"zero strike", 100, 0, 1, 0.2, 0.05},
		{"negative vol", 100, 100, 1, -0.2, 0.05},
		{"nan time", 100, 100, math.NaN(), 0.2, 0.05},
		{"infinite rate", 100, 100, 1, 0.2, math.Inf(1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CallPrice(tc.S, tc.K, tc.T, tc.sigma, tc.r)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			_, err = PutPrice(tc.S, tc.K, tc.T, tc.sigma, tc.r)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestCallPrice_MonotoneInSpot(t *testing.T) {
	prev := -1.0
	for S := 50.0; S <= 150.0; S += 1 {
		call, err := CallPrice(S, 100, 0.5, 0.3, 0.05)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, call, prev-1e-12, "call decreased at S=%g", S)
		prev = call
	}
}

func TestPrice_DispatchesOnType(t *testing.T) {
	spec := OptionSpec{Spot: 100, Strike: 105, Expiry: 0.25, Volatility: 0.3, Rate: 0.02, Type: Call}

	call, err := Price(spec)
	require.NoError(t, err)
	want, _ := CallPrice(100, 105, 0.25, 0.3, 0.02)
	assert.Equal(t, want, call)

	spec.Type = Put
	put, err := Price(spec)
	require.NoError(t, err)
	want, _ = PutPrice(100, 105, 0.25, 0.3, 0.02)
	assert.Equal(t, want, put)

	spec.Type = "straddle"
	_, err = Price(spec)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPriceChain_KeepsOrderAndDuplicates(t *testing.T) {
	strikes := []float64{110, 90, 100, 90}

	quotes, err := PriceChain(100, strikes, 30.0/365, 0.25, Call, 0.05)
	require.NoError(t, err)
	require.Len(t, quotes, len(strikes))

	for i, q := range quotes {
		assert.Equal(t, strikes[i], q.Strike)
		want, err := CallPrice(100, strikes[i], 30.0/365, 0.25, 0.05)
		require.NoError(t, err)
		assert.Equal(t, want, q.Price)
	}
	assert.Equal(t, quotes[1], quotes[3])
	assert.Greater(t, quotes[1].Price, quotes[2].Price)
	assert.Greater(t, quotes[2].Price, quotes[0].Price)
}

func TestPriceChain_Put(t *testing.T) {
	quotes, err := PriceChain(100, []float64{95, 105}, 0.5, 0.2, Put, 0.05)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Less(t, quotes[0].Price, quotes[1].Price)
}

func TestPriceChain_Errors(t *testing.T) {
	_, err := PriceChain(100, nil, 0.5, 0.2, "binary", 0.05)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = PriceChain(100, []float64{100, -1}, 0.5, 0.2, Call, 0.05)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	quotes, err := PriceChain(100, []float64{}, 0.5, 0.2, Put, 0.05)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestParseOptionType(t *testing.T) {
	for in, want := range map[string]OptionType{"call": Call, "CALL": Call, " Put ": Put, "put": Put} {
		got, err := ParseOptionType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseOptionType("straddle")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ParseOptionType("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPrice_Idempotent(t *testing.T) {
	first, err := CallPrice(123.45, 118, 0.37, 0.41, 0.031)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := CallPrice(123.45, 118, 0.37, 0.41, 0.031)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(first), math.Float64bits(again))
	}
}
