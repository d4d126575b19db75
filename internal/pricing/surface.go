package pricing

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Shape and bounds of the grid produced by GenerateSurface.
const (
	SurfacePricePoints = 50
	SurfaceTimePoints  = 30

	surfaceLowMoneyness  = 0.5
	surfaceHighMoneyness = 1.5
	surfaceMinTime       = 1.0 / DaysPerYear
	surfaceMaxTime       = 1.0
)

// SurfaceGrid is the option value over stock price (columns) and time to
// expiry (rows). Values[i][j] is the price at Times[i] and StockPrices[j].
// A grid is never modified after GenerateSurface returns it.
type SurfaceGrid struct {
	StockPrices  []float64   `json:"stock_prices"`
	Times        []float64   `json:"times"`
	Values       [][]float64 `json:"option_values"`
	CurrentPrice float64     `json:"current_price"`
	Strike       float64     `json:"strike_price"`
	Volatility   float64     `json:"volatility"`
	Rate         float64     `json:"rate"`
	Type         OptionType  `json:"option_type"`
}

// GenerateSurface prices the option on a 30x50 grid spanning 50%..150% of
// currentPrice and 1 day..1 year to expiry, holding strike, volatility and
// rate fixed.
//
// Cells are independent, so the flattened index space is cut into contiguous
// chunks that are priced concurrently, each cell writing only its own slot.
// The result does not depend on scheduling.
func GenerateSurface(currentPrice, strike, volatility float64, optType OptionType, rate float64) (*SurfaceGrid, error) {
	price, err := priceFunc(optType)
	if err != nil {
		return nil, err
	}
	if err := validateInputs(currentPrice, strike, surfaceMinTime, volatility, rate); err != nil {
		return nil, err
	}
	if volatility == 0 {
		return nil, fmt.Errorf("%w: surface requires positive volatility", ErrDegenerateInput)
	}

	stockPrices := floats.Span(make([]float64, SurfacePricePoints),
		surfaceLowMoneyness*currentPrice, surfaceHighMoneyness*currentPrice)
	times := floats.Span(make([]float64, SurfaceTimePoints), surfaceMinTime, surfaceMaxTime)

	rows, cols := len(times), len(stockPrices)
	cells := make([]float64, rows*cols)
	values := make([][]float64, rows)
	for i := range values {
		values[i] = cells[i*cols : (i+1)*cols : (i+1)*cols]
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(cells) + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < len(cells); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(cells))
		g.Go(func() error {
			for idx := lo; idx < hi; idx++ {
				row, col := idx/cols, idx%cols
				v, err := price(stockPrices[col], strike, times[row], volatility, rate)
				if err != nil {
					return fmt.Errorf("surface cell (%d,%d): %w", row, col, err)
				}
				cells[idx] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SurfaceGrid{
		StockPrices:  stockPrices,
		Times:        times,
		Values:       values,
		CurrentPrice: currentPrice,
		Strike:       strike,
		Volatility:   volatility,
		Rate:         rate,
		Type:         optType,
	}, nil
}
