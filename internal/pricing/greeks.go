package pricing

import "math"

// GreeksResult bundles the reference price of an option with its sensitivities.
type GreeksResult struct {
	OptionPrice float64 `json:"option_price"`
	Delta       float64 `json:"delta"`
	Gamma       float64 `json:"gamma"`
	Theta       float64 `json:"theta"` // per year
	Vega        float64 `json:"vega"`  // per 1 percentage point of volatility
	Rho         float64 `json:"rho"`   // per 1 percentage point of rate
}

// ThetaPerDay converts the annual theta into time decay per calendar day.
func (g GreeksResult) ThetaPerDay() float64 {
	return g.Theta / DaysPerYear
}

// AllGreeks prices the option and computes Delta, Gamma, Theta, Vega and Rho.
func AllGreeks(spec OptionSpec) (GreeksResult, error) {
	if err := spec.Validate(); err != nil {
		return GreeksResult{}, err
	}

	S, K, T, sigma, r := spec.Spot, spec.Strike, spec.Expiry, spec.Volatility, spec.Rate

	price, err := Price(spec)
	if err != nil {
		return GreeksResult{}, err
	}
	delta, err := Delta(spec.Type, S, K, T, sigma, r)
	if err != nil {
		return GreeksResult{}, err
	}
	gamma, err := Gamma(S, K, T, sigma, r)
	if err != nil {
		return GreeksResult{}, err
	}
	theta, err := Theta(spec.Type, S, K, T, sigma, r)
	if err != nil {
		return GreeksResult{}, err
	}
	vega, err := Vega(S, K, T, sigma, r)
	if err != nil {
		return GreeksResult{}, err
	}
	rho, err := Rho(spec.Type, S, K, T, sigma, r)
	if err != nil {
		return GreeksResult{}, err
	}

	return GreeksResult{
		OptionPrice: price,
		Delta:       delta,
		Gamma:       gamma,
		Theta:       theta,
		Vega:        vega,
		Rho:         rho,
	}, nil
}

// Delta is dV/dS. At or past expiry it is the step function of the payoff:
// 1 for an in-the-money call, -1 for an in-the-money put, 0 otherwise.
func Delta(optType OptionType, S, K, T, sigma, r float64) (float64, error) {
	if err := checkGreekInputs(optType, S, K, T, sigma, r); err != nil {
		return 0, err
	}
	if T <= 0 {
		switch {
		case optType == Call && S > K:
			return 1, nil
		case optType == Put && S < K:
			return -1, nil
		}
		return 0, nil
	}

	d1, _, err := d1d2(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}
	if optType == Call {
		return normCDF(d1), nil
	}
	return normCDF(d1) - 1, nil
}

// Gamma is d2V/dS2, identical for calls and puts. Zero at or past expiry.
func Gamma(S, K, T, sigma, r float64) (float64, error) {
	if err := validateInputs(S, K, T, sigma, r); err != nil {
		return 0, err
	}
	if T <= 0 {
		return 0, nil
	}

	d1, _, err := d1d2(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}
	return normPDF(d1) / (S * sigma * math.Sqrt(T)), nil
}

// Theta is the time decay per year; divide by 365 for a daily figure.
// Zero at or past expiry.
func Theta(optType OptionType, S, K, T, sigma, r float64) (float64, error) {
	if err := checkGreekInputs(optType, S, K, T, sigma, r); err != nil {
		return 0, err
	}
	if T <= 0 {
		return 0, nil
	}

	d1, d2, err := d1d2(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}

	decay := -S * normPDF(d1) * sigma / (2 * math.Sqrt(T))
	discounted := r * K * math.Exp(-r*T)
	if optType == Call {
		return decay - discounted*normCDF(d2), nil
	}
	return decay + discounted*normCDF(-d2), nil
}

// Vega is the price change for a one percentage point move in volatility.
// Identical for calls and puts. Zero at or past expiry.
func Vega(S, K, T, sigma, r float64) (float64, error) {
	if err := validateInputs(S, K, T, sigma, r); err != nil {
		return 0, err
	}
	if T <= 0 {
		return 0, nil
	}

	d1, _, err := d1d2(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}
	return S * normPDF(d1) * math.Sqrt(T) / 100, nil
}

// Rho is the price change for a one percentage point move in the risk-free
// rate. Zero at or past expiry.
func Rho(optType OptionType, S, K, T, sigma, r float64) (float64, error) {
	if err := checkGreekInputs(optType, S, K, T, sigma, r); err != nil {
		return 0, err
	}
	if T <= 0 {
		return 0, nil
	}

	_, d2, err := d1d2(S, K, T, sigma, r)
	if err != nil {
		return 0, err
	}

	discountedStrike := K * T * math.Exp(-r*T)
	if optType == Call {
		return discountedStrike * normCDF(d2) / 100, nil
	}
	return -discountedStrike * normCDF(-d2) / 100, nil
}

func checkGreekInputs(optType OptionType, S, K, T, sigma, r float64) error {
	if err := optType.Validate(); err != nil {
		return err
	}
	return validateInputs(S, K, T, sigma, r)
}
