// Package data provides market data provider implementations.
//
// A Provider supplies daily bars for a ticker and derives from them the two
// inputs the pricer needs: the current spot price and the annualized
// historical volatility. Failures are returned to the caller, never replaced
// by defaults; a provider may delegate to a secondary provider when its own
// source fails.
package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/contactkeval/option-pricer/internal/logger"
)

var (
	// ErrNoData reports that the upstream source has no usable rows for a request.
	ErrNoData = errors.New("no market data")

	// ErrUpstream reports that the market data source itself failed.
	ErrUpstream = errors.New("market data source failed")

	// ErrInvalidArgument reports a malformed data request.
	ErrInvalidArgument = errors.New("invalid argument")
)

const (
	// TradingDaysPerYear annualizes daily volatility.
	TradingDaysPerYear = 252

	// spotWindow is how far back the latest close is searched for, which
	// covers weekends and market holidays.
	spotWindow = 7 * 24 * time.Hour

	// volPaddingDays widens the volatility window so that lookbackDays of
	// calendar time still yields enough trading sessions.
	volPaddingDays = 5
)

// Provider supplies market data.
type Provider interface {
	Secondary() Provider
	GetBars(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error)
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
	GetHistoricalVolatility(ctx context.Context, ticker string, lookbackDays int) (float64, error)
}

// Bar simplified OHLC
type Bar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
	Vol   float64
}

// HistoricalVolatility returns the annualized volatility of daily bars: the
// sample standard deviation of log close-to-close returns scaled by
// sqrt(252). It needs at least three bars with positive closes.
func HistoricalVolatility(bars []Bar) (float64, error) {
	if len(bars) < 3 {
		return 0, fmt.Errorf("%w: need at least 3 bars for volatility, got %d", ErrNoData, len(bars))
	}

	returns := make(stats.Float64Data, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Close, bars[i].Close
		if prev <= 0 || cur <= 0 {
			return 0, fmt.Errorf("%w: non-positive close on %s", ErrNoData, bars[i].Date.Format("2006-01-02"))
		}
		returns = append(returns, math.Log(cur/prev))
	}

	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, fmt.Errorf("volatility: %w", err)
	}
	return sd * math.Sqrt(TradingDaysPerYear), nil
}

// Upstream classifies err as a market data failure. Errors that already carry
// one of this package's classes are returned unchanged.
func Upstream(err error) error {
	if err == nil || errors.Is(err, ErrUpstream) || errors.Is(err, ErrNoData) || errors.Is(err, ErrInvalidArgument) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

type barsFunc func(ctx context.Context, ticker string, fromDate, toDate time.Time) ([]Bar, error)

// quoteSource turns a bar source into spot and volatility lookups and owns
// the fallback to a secondary provider. Concrete providers embed it.
type quoteSource struct {
	name      string
	bars      barsFunc
	secondary Provider
	now       func() time.Time
}

// Secondary returns the configured secondary Provider, if any.
func (q *quoteSource) Secondary() Provider {
	return q.secondary
}

// SetSecondary installs a fallback provider.
func (q *quoteSource) SetSecondary(p Provider) {
	q.secondary = p
}

func (q *quoteSource) clock() time.Time {
	if q.now != nil {
		return q.now()
	}
	return time.Now()
}

// GetCurrentPrice returns the close of the most recent daily bar.
func (q *quoteSource) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	price, err := q.currentPrice(ctx, ticker)
	if err != nil && q.secondary != nil {
		logger.Debugf("%s: current price for %s failed (%v), delegating to secondary provider", q.name, ticker, err)
		return q.secondary.GetCurrentPrice(ctx, ticker)
	}
	return price, err
}

func (q *quoteSource) currentPrice(ctx context.Context, ticker string) (float64, error) {
	to := q.clock()
	bars, err := q.bars(ctx, ticker, to.Add(-spotWindow), to)
	if err != nil {
		return 0, fmt.Errorf("%s: current price for %s: %w", q.name, ticker, Upstream(err))
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("%s: current price for %s: %w", q.name, ticker, ErrNoData)
	}

	sortBars(bars)
	last := bars[len(bars)-1]
	if last.Close <= 0 {
		return 0, fmt.Errorf("%s: current price for %s: %w: non-positive close", q.name, ticker, ErrNoData)
	}

	logger.Tracef("%s: %s last close %.4f on %s", q.name, ticker, last.Close, last.Date.Format("2006-01-02"))
	return last.Close, nil
}

// GetHistoricalVolatility returns the annualized volatility over the trailing
// lookbackDays (plus a few days of padding for non-trading days).
func (q *quoteSource) GetHistoricalVolatility(ctx context.Context, ticker string, lookbackDays int) (float64, error) {
	if lookbackDays < 2 {
		return 0, fmt.Errorf("%w: %s: lookback must be at least 2 days, got %d", ErrInvalidArgument, q.name, lookbackDays)
	}

	vol, err := q.historicalVolatility(ctx, ticker, lookbackDays)
	if err != nil && q.secondary != nil {
		logger.Debugf("%s: volatility for %s failed (%v), delegating to secondary provider", q.name, ticker, err)
		return q.secondary.GetHistoricalVolatility(ctx, ticker, lookbackDays)
	}
	return vol, err
}

func (q *quoteSource) historicalVolatility(ctx context.Context, ticker string, lookbackDays int) (float64, error) {
	to := q.clock()
	from := to.AddDate(0, 0, -(lookbackDays + volPaddingDays))

	bars, err := q.bars(ctx, ticker, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: volatility for %s: %w", q.name, ticker, Upstream(err))
	}

	sortBars(bars)
	vol, err := HistoricalVolatility(bars)
	if err != nil {
		return 0, fmt.Errorf("%s: volatility for %s: %w", q.name, ticker, err)
	}

	logger.Debugf("%s: %s volatility %.4f from %d bars", q.name, ticker, vol, len(bars))
	return vol, nil
}

func sortBars(bars []Bar) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
}

var (
	_ Provider = (*massiveDataProvider)(nil)
	_ Provider = (*polygonDataProvider)(nil)
	_ Provider = (*localFileDataProvider)(nil)
	_ Provider = (*synthDataProvider)(nil)
)
