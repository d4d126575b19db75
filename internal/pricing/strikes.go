package pricing

import (
	"fmt"
	"math"
)

// RoundToStrike rounds v to the nearest multiple of interval.
func RoundToStrike(v, interval float64) float64 {
	return math.Round(v/interval) * interval
}

// StrikeLadder lists strikes spaced by interval around spot rounded to the
// nearest listed strike: n below, the center, n above, ascending. Strikes
// that would be zero or negative are left out.
func StrikeLadder(spot, interval float64, n int) ([]float64, error) {
	if !(spot > 0) || !isFinite(spot) {
		return nil, fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidArgument, spot)
	}
	if !(interval > 0) || !isFinite(interval) {
		return nil, fmt.Errorf("%w: strike interval must be positive, got %v", ErrInvalidArgument, interval)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: strike count must not be negative, got %d", ErrInvalidArgument, n)
	}

	center := RoundToStrike(spot, interval)
	strikes := make([]float64, 0, 2*n+1)
	for i := -n; i <= n; i++ {
		k := center + float64(i)*interval
		if k <= 0 {
			continue
		}
		strikes = append(strikes, k)
	}
	return strikes, nil
}
