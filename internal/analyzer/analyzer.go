// Package analyzer combines market data with the pricing core: it compares
// quoted option prices against Black-Scholes values, builds risk profiles and
// produces value surfaces for a ticker.
package analyzer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Options are the model parameters not supplied by market data.
type Options struct {
	RiskFreeRate    float64
	VolLookbackDays int
}

// Analyzer prices options for tickers using a market data provider.
type Analyzer struct {
	provider data.Provider
	opts     Options
}

// New returns an Analyzer backed by provider.
func New(provider data.Provider, opts Options) (*Analyzer, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: nil data provider", pricing.ErrInvalidArgument)
	}
	if math.IsNaN(opts.RiskFreeRate) || math.IsInf(opts.RiskFreeRate, 0) {
		return nil, fmt.Errorf("%w: risk-free rate must be finite", pricing.ErrInvalidArgument)
	}
	if opts.VolLookbackDays < 2 {
		return nil, fmt.Errorf("%w: volatility lookback must be at least 2 days, got %d",
			pricing.ErrInvalidArgument, opts.VolLookbackDays)
	}
	return &Analyzer{provider: provider, opts: opts}, nil
}

// Request describes a quoted option to compare against its model value.
type Request struct {
	Ticker           string             `json:"ticker"`
	Strike           float64            `json:"strike_price"`
	DaysToExpiration float64            `json:"days_to_expiration"`
	MarketPrice      float64            `json:"market_price"`
	Type             pricing.OptionType `json:"option_type"`
}

// Analysis is the result of AnalyzeOption.
type Analysis struct {
	Ticker           string             `json:"ticker"`
	Type             pricing.OptionType `json:"option_type"`
	Strike           float64            `json:"strike_price"`
	DaysToExpiration float64            `json:"days_to_expiration"`
	CurrentPrice     float64            `json:"current_price"`
	Volatility       float64            `json:"volatility"`
	RiskFreeRate     float64            `json:"risk_free_rate"`
	TheoreticalPrice float64            `json:"theoretical_price"`
	MarketPrice      float64            `json:"market_price"`
	Difference       float64            `json:"price_difference"`

	// PercentageDifference is nil when the theoretical price is zero.
	PercentageDifference *float64 `json:"percentage_difference"`

	Greeks pricing.GreeksResult `json:"greeks"`
}

// RiskProfile is the result of AnalyzeRisk.
type RiskProfile struct {
	Ticker           string               `json:"ticker"`
	Type             pricing.OptionType   `json:"option_type"`
	CurrentPrice     float64              `json:"current_price"`
	Strike           float64              `json:"strike_price"`
	DaysToExpiration float64              `json:"days_to_expiration"`
	TimeToExpiration float64              `json:"time_to_expiration"`
	Volatility       float64              `json:"volatility"`
	Moneyness        float64              `json:"moneyness"`
	Greeks           pricing.GreeksResult `json:"greeks"`
}

// Surface is a value surface generated from live market inputs.
type Surface struct {
	Ticker string `json:"ticker"`
	*pricing.SurfaceGrid
}

// AnalyzeOption fetches spot and historical volatility for req.Ticker and
// compares req.MarketPrice with the Black-Scholes value.
func (a *Analyzer) AnalyzeOption(ctx context.Context, req Request) (*Analysis, error) {
	ticker, err := normalizeTicker(req.Ticker)
	if err != nil {
		return nil, err
	}
	if req.MarketPrice < 0 || math.IsNaN(req.MarketPrice) || math.IsInf(req.MarketPrice, 0) {
		return nil, fmt.Errorf("%w: market price must be a non-negative number, got %v",
			pricing.ErrInvalidArgument, req.MarketPrice)
	}

	spec, err := a.marketSpec(ctx, ticker, req.Strike, req.DaysToExpiration, req.Type)
	if err != nil {
		return nil, err
	}

	greeks, err := pricing.AllGreeks(spec)
	if err != nil {
		return nil, err
	}

	res := &Analysis{
		Ticker:           ticker,
		Type:             spec.Type,
		Strike:           spec.Strike,
		DaysToExpiration: req.DaysToExpiration,
		CurrentPrice:     spec.Spot,
		Volatility:       spec.Volatility,
		RiskFreeRate:     spec.Rate,
		TheoreticalPrice: greeks.OptionPrice,
		MarketPrice:      req.MarketPrice,
		Difference:       req.MarketPrice - greeks.OptionPrice,
		Greeks:           greeks,
	}
	if greeks.OptionPrice != 0 {
		pct := res.Difference / greeks.OptionPrice * 100
		res.PercentageDifference = &pct
	}

	logger.Infof("analyzed %s %s K=%.2f: theoretical=%.4f market=%.4f diff=%.4f",
		ticker, spec.Type, spec.Strike, res.TheoreticalPrice, res.MarketPrice, res.Difference)
	return res, nil
}

// AnalyzeRisk returns the Greeks and moneyness of a position at current
// market inputs.
func (a *Analyzer) AnalyzeRisk(ctx context.Context, ticker string, strike, days float64, optType pricing.OptionType) (*RiskProfile, error) {
	ticker, err := normalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	spec, err := a.marketSpec(ctx, ticker, strike, days, optType)
	if err != nil {
		return nil, err
	}

	greeks, err := pricing.AllGreeks(spec)
	if err != nil {
		return nil, err
	}

	return &RiskProfile{
		Ticker:           ticker,
		Type:             spec.Type,
		CurrentPrice:     spec.Spot,
		Strike:           spec.Strike,
		DaysToExpiration: days,
		TimeToExpiration: spec.Expiry,
		Volatility:       spec.Volatility,
		Moneyness:        spec.Moneyness(),
		Greeks:           greeks,
	}, nil
}

// Surface generates the value surface around the current spot price.
func (a *Analyzer) Surface(ctx context.Context, ticker string, strike float64, optType pricing.OptionType) (*Surface, error) {
	ticker, err := normalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	if err := optType.Validate(); err != nil {
		return nil, err
	}

	spot, vol, err := a.marketInputs(ctx, ticker)
	if err != nil {
		return nil, err
	}

	grid, err := pricing.GenerateSurface(spot, strike, vol, optType, a.opts.RiskFreeRate)
	if err != nil {
		return nil, err
	}

	logger.Debugf("surface for %s %s K=%.2f at S=%.2f vol=%.4f", ticker, optType, strike, spot, vol)
	return &Surface{Ticker: ticker, SurfaceGrid: grid}, nil
}

// marketSpec checks the contract terms before any provider call and then
// combines them with current market inputs.
func (a *Analyzer) marketSpec(ctx context.Context, ticker string, strike, days float64, optType pricing.OptionType) (pricing.OptionSpec, error) {
	if err := optType.Validate(); err != nil {
		return pricing.OptionSpec{}, err
	}
	if !(strike > 0) || math.IsInf(strike, 0) {
		return pricing.OptionSpec{}, fmt.Errorf("%w: strike must be positive, got %v", pricing.ErrInvalidArgument, strike)
	}
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return pricing.OptionSpec{}, fmt.Errorf("%w: days to expiration must be finite", pricing.ErrInvalidArgument)
	}

	spot, vol, err := a.marketInputs(ctx, ticker)
	if err != nil {
		return pricing.OptionSpec{}, err
	}

	return pricing.OptionSpec{
		Spot:       spot,
		Strike:     strike,
		Expiry:     pricing.YearsFromDays(days),
		Volatility: vol,
		Rate:       a.opts.RiskFreeRate,
		Type:       optType,
	}, nil
}

func (a *Analyzer) marketInputs(ctx context.Context, ticker string) (spot, vol float64, err error) {
	spot, err = a.provider.GetCurrentPrice(ctx, ticker)
	if err != nil {
		return 0, 0, fmt.Errorf("current price for %s: %w", ticker, data.Upstream(err))
	}
	vol, err = a.provider.GetHistoricalVolatility(ctx, ticker, a.opts.VolLookbackDays)
	if err != nil {
		return 0, 0, fmt.Errorf("volatility for %s: %w", ticker, data.Upstream(err))
	}
	return spot, vol, nil
}

func normalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", fmt.Errorf("%w: ticker is required", pricing.ErrInvalidArgument)
	}
	return ticker, nil
}
