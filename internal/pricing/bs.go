package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChainQuote is one priced strike of an option chain.
type ChainQuote struct {
	Strike float64 `json:"strike" csv:"strike"`
	Price  float64 `json:"price" csv:"price"`
}

// CallPrice calculates the price of a European call using the Black-Scholes model.
//
// Parameters:
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//   - r: risk-free interest rate (annual)
//
// Returns:
//
//	The theoretical price. When T <= 0 the option is treated as exercised at the
//	boundary instant and its intrinsic value max(S-K, 0) is returned for any sigma.
//	When T > 0 and sigma is zero the price is undefined and ErrDegenerateInput
//	is returned.
func CallPrice(S, K, T, sigma, r float64) (float64, error) {
	if err := validateInputs(S, K, T, sigma, r); err != nil {
		return 0, err
	}
	if T <= 0 {
		return math.Max(S-K, 0), nil
	}

	d1, d2, err := d1d2(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}
	return S*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2), nil
}

// PutPrice calculates the price of a European put.
//
// For T > 0 the put is derived from CallPrice through put-call parity,
// P = C - S + K*e^(-rT), so calls and puts are always mutually consistent.
// For T <= 0 it returns the intrinsic value max(K-S, 0).
func PutPrice(S, K, T, sigma, r float64) (float64, error) {
	if err := validateInputs(S, K, T, sigma, r); err != nil {
		return 0, err
	}
	if T <= 0 {
		return math.Max(K-S, 0), nil
	}

	call, err := CallPrice(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}
	return call - S + K*math.Exp(-r*T), nil
}

// Price prices the option described by spec.
func Price(spec OptionSpec) (float64, error) {
	price, err := priceFunc(spec.Type)
	if err != nil {
		return 0, err
	}
	return price(spec.Spot, spec.Strike, spec.Expiry, spec.Volatility, spec.Rate)
}

// PriceChain prices one option per strike, keeping the order of strikes.
// Duplicate strikes produce duplicate quotes.
func PriceChain(S float64, strikes []float64, T, sigma float64, optType OptionType, r float64) ([]ChainQuote, error) {
	price, err := priceFunc(optType)
	if err != nil {
		return nil, err
	}

	quotes := make([]ChainQuote, 0, len(strikes))
	for _, K := range strikes {
		p, err := price(S, K, T, sigma, r)
		if err != nil {
			return nil, fmt.Errorf("strike %g: %w", K, err)
		}
		quotes = append(quotes, ChainQuote{Strike: K, Price: p})
	}
	return quotes, nil
}

// VerifyPutCallParity returns C - P - S + K*e^(-rT), which is zero up to
// floating-point error for every valid input. Expired options are discounted
// with T = 0.
func VerifyPutCallParity(S, K, T, sigma, r float64) (float64, error) {
	call, err := CallPrice(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}
	put, err := PutPrice(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}
	return call - put - S + K*math.Exp(-r*math.Max(T, 0)), nil
}

type priceFn func(S, K, T, sigma, r float64) (float64, error)

func priceFunc(optType OptionType) (priceFn, error) {
	switch optType {
	case Call:
		return CallPrice, nil
	case Put:
		return PutPrice, nil
	}
	return nil, optType.Validate()
}

// d1d2 is the single source of the standardized Black-Scholes variables for
// both prices and Greeks. Callers must have handled T <= 0.
func d1d2(S, K, T, sigma, r float64) (d1, d2 float64, err error) {
	volSqrtT := sigma * math.Sqrt(T)
	if volSqrtT == 0 {
		return 0, 0, fmt.Errorf("%w: sigma*sqrt(T) is zero (sigma=%g, T=%g)", ErrDegenerateInput, sigma, T)
	}

	d1 = (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / volSqrtT
	d2 = d1 - volSqrtT
	return d1, d2, nil
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
