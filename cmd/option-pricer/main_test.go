package main

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/testutil"
)

func run(t *testing.T, stub *testutil.StubProvider, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"RISK_FREE_RATE", "VOL_LOOKBACK_DAYS", "DATA_PROVIDER", "LOG_VERBOSITY"} {
		t.Setenv(k, "")
	}

	var out bytes.Buffer
	root := newRootCmd(&out, func(config.Config) (data.Provider, error) { return stub, nil })
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestGreeksCommand_JSON(t *testing.T) {
	out, err := run(t, nil, "greeks", "--spot", "100", "--strike", "100", "--days", "30", "--vol", "0.2", "--json")
	require.NoError(t, err)

	var g pricing.GreeksResult
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.InDelta(t, 2.4933768194, g.OptionPrice, 1e-8)
	assert.InDelta(t, 0.5399635457, g.Delta, 1e-8)
}

func TestGreeksCommand_Table(t *testing.T) {
	out, err := run(t, nil, "greeks", "--spot", "100", "--strike", "100", "--type", "PUT")
	require.NoError(t, err)
	assert.Contains(t, out, "PUT S=100.00")
	assert.Contains(t, out, "2.0833")
}

func TestPriceCommand_RateFlag(t *testing.T) {
	out, err := run(t, nil, "price", "--spot", "100", "--strike", "100", "--days", "365", "--vol", "0.2", "--rate", "0.05", "--json")
	require.NoError(t, err)

	var body struct {
		Price float64 `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.InDelta(t, 10.450583572185565, body.Price, 1e-9)
}

func TestChainCommand_CSV(t *testing.T) {
	out, err := run(t, nil, "chain", "--spot", "100", "--strikes", "110,90,100", "--csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "strike,price", lines[0])
	for i, want := range []float64{110, 90, 100} {
		strike, err := strconv.ParseFloat(strings.Split(lines[i+1], ",")[0], 64)
		require.NoError(t, err)
		assert.Equal(t, want, strike)
	}
}

func TestChainCommand_Ladder(t *testing.T) {
	out, err := run(t, nil, "chain", "--spot", "101.3", "--interval", "5", "--count", "2", "--type", "put", "--json")
	require.NoError(t, err)

	var quotes []pricing.ChainQuote
	require.NoError(t, json.Unmarshal([]byte(out), &quotes))
	require.Len(t, quotes, 5)
	assert.Equal(t, 90.0, quotes[0].Strike)
	assert.Equal(t, 110.0, quotes[4].Strike)
	assert.Less(t, quotes[0].Price, quotes[4].Price)
}

func TestParityCommand(t *testing.T) {
	out, err := run(t, nil, "parity", "--spot", "120", "--strike", "100", "--days", "90", "--vol", "0.35", "--json")
	require.NoError(t, err)

	var body map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.InDelta(t, 0, body["residual"], 1e-9)
}

func TestSurfaceCommand(t *testing.T) {
	out, err := run(t, nil, "surface", "--spot", "400", "--strike", "400", "--vol", "0.4")
	require.NoError(t, err)

	var grid pricing.SurfaceGrid
	require.NoError(t, json.Unmarshal([]byte(out), &grid))
	require.Len(t, grid.Values, pricing.SurfaceTimePoints)
	assert.InDelta(t, 200.0547907677, grid.Values[0][pricing.SurfacePricePoints-1], 1e-6)
}

func TestSurfaceCommand_Ticker(t *testing.T) {
	stub := &testutil.StubProvider{Spot: 400, Volatility: 0.4}
	out, err := run(t, stub, "surface", "--ticker", "spy", "--strike", "400")
	require.NoError(t, err)
	assert.Contains(t, out, `"ticker": "SPY"`)
	assert.Positive(t, stub.Calls())
}

func TestAnalyzeCommand(t *testing.T) {
	stub := &testutil.StubProvider{Spot: 100, Volatility: 0.2}
	out, err := run(t, stub, "analyze", "--ticker", "SPY", "--strike", "100", "--days", "30", "--market-price", "3", "--json")
	require.NoError(t, err)

	var res struct {
		Theoretical float64 `json:"theoretical_price"`
		Difference  float64 `json:"price_difference"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 2.4933768194, res.Theoretical, 1e-8)
	assert.InDelta(t, 0.5066231806, res.Difference, 1e-8)
}

func TestRiskCommand(t *testing.T) {
	stub := &testutil.StubProvider{Spot: 110, Volatility: 0.25}
	out, err := run(t, stub, "risk", "--ticker", "QQQ", "--strike", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "ITM")
}

func TestCommands_Errors(t *testing.T) {
	_, err := run(t, nil, "greeks", "--spot", "100", "--strike", "100", "--type", "swap")
	assert.ErrorIs(t, err, pricing.ErrInvalidArgument)

	_, err = run(t, nil, "price", "--spot", "100", "--strike", "100", "--vol", "0")
	assert.ErrorIs(t, err, pricing.ErrDegenerateInput)

	_, err = run(t, nil, "surface", "--strike", "100")
	assert.ErrorIs(t, err, pricing.ErrInvalidArgument)

	_, err = run(t, &testutil.StubProvider{Err: data.ErrNoData}, "risk", "--ticker", "QQQ", "--strike", "100")
	assert.ErrorIs(t, err, data.ErrNoData)

	_, err = run(t, nil, "price", "--strike", "100")
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := newProvider(config.Config{DataProvider: config.ProviderSynthetic})
	require.NoError(t, err)
	assert.Nil(t, p.Secondary())

	p, err = newProvider(config.Config{DataProvider: config.ProviderCSV, DataDir: t.TempDir(), PolygonAPIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, p.Secondary())

	p, err = newProvider(config.Config{DataProvider: config.ProviderMassive, MassiveAPIKey: "m", PolygonAPIKey: "p"})
	require.NoError(t, err)
	assert.NotNil(t, p.Secondary())

	_, err = newProvider(config.Config{DataProvider: "yahoo"})
	assert.Error(t, err)
}
