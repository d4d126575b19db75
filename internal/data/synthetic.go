package data

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"
)

const (
	// synthAnnualVol is the volatility of the generated random walk.
	synthAnnualVol = 0.25
	synthDrift     = 0.05
)

// synthEpoch is the first session of every generated path.
var synthEpoch = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

// synthDataProvider implements Provider generating synthetic data. Each
// ticker has one walk starting at synthEpoch and seeded from the ticker, so
// every window is a slice of the same path.
type synthDataProvider struct {
	quoteSource
}

// NewSyntheticProvider returns a provider that needs no network or files.
func NewSyntheticProvider() *synthDataProvider {
	s := &synthDataProvider{}
	s.quoteSource = quoteSource{name: "synthetic", bars: s.GetBars}
	return s
}

// GetBars returns one geometric Brownian motion bar per weekday in
// [fromDate, toDate]. Dates before synthEpoch have no bars.
func (s *synthDataProvider) GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	from := fromDate.UTC().Truncate(24 * time.Hour)

	h := fnv.New64a()
	h.Write([]byte(ticker))
	tickerSeed := h.Sum64()
	rng := rand.New(rand.NewSource(int64(tickerSeed)))

	dt := 1.0 / TradingDaysPerYear
	drift := (synthDrift - 0.5*synthAnnualVol*synthAnnualVol) * dt
	diffusion := synthAnnualVol * math.Sqrt(dt)

	price := 50.0 + float64(tickerSeed%450)
	var out []Bar
	for cur := synthEpoch; !cur.After(toDate); cur = cur.AddDate(0, 0, 1) {
		if cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
			continue
		}
		open := price
		close := open * math.Exp(drift+diffusion*rng.NormFloat64())
		high := math.Max(open, close) * (1 + math.Abs(rng.NormFloat64())*0.002)
		low := math.Min(open, close) * (1 - math.Abs(rng.NormFloat64())*0.002)
		vol := float64(1000 + rng.Intn(5000))
		price = close

		if !cur.Before(from) {
			out = append(out, Bar{Date: cur, Open: open, High: high, Low: low, Close: close, Vol: vol})
		}
	}

	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}
