// Package pricing implements closed-form Black-Scholes pricing for European
// options: call/put prices, put-call parity, option-chain pricing, the five
// first-order Greeks and the stock-price × time price surface.
//
// Every function is a pure function of its arguments. Nothing in this package
// performs I/O, logs, caches or holds mutable state, so all of it is safe for
// concurrent use.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidArgument reports an input outside the model's domain:
	// an unknown option type, a non-positive spot or strike, a negative
	// volatility or a non-finite number.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDegenerateInput reports inputs for which d1 is undefined because
	// sigma*sqrt(T) is zero while the option has not yet expired.
	ErrDegenerateInput = errors.New("degenerate input")
)

// OptionType is the kind of a European option.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// DaysPerYear converts calendar days to years of time to expiry.
const DaysPerYear = 365

// YearsFromDays returns days expressed as a fraction of a year.
func YearsFromDays(days float64) float64 {
	return days / DaysPerYear
}

// ParseOptionType converts a user supplied kind ("call", "PUT", " Call ")
// into an OptionType.
func ParseOptionType(s string) (OptionType, error) {
	optType := OptionType(strings.ToLower(strings.TrimSpace(s)))
	if err := optType.Validate(); err != nil {
		return "", err
	}
	return optType, nil
}

// Validate fails with ErrInvalidArgument unless the type is Call or Put.
func (t OptionType) Validate() error {
	switch t {
	case Call, Put:
		return nil
	}
	return fmt.Errorf("%w: option type must be %q or %q, got %q", ErrInvalidArgument, Call, Put, string(t))
}

func (t OptionType) String() string { return string(t) }

// OptionSpec holds the market inputs of a single option.
type OptionSpec struct {
	Spot       float64    `json:"spot"`       // S, current price of the underlying
	Strike     float64    `json:"strike"`     // K
	Expiry     float64    `json:"expiry"`     // T in years; <= 0 means expired
	Volatility float64    `json:"volatility"` // sigma, annualized
	Rate       float64    `json:"rate"`       // r, annual risk-free rate
	Type       OptionType `json:"type"`
}

// Moneyness returns S/K.
func (s OptionSpec) Moneyness() float64 {
	return s.Spot / s.Strike
}

// Validate checks the type and the numeric domain of the spec.
func (s OptionSpec) Validate() error {
	if err := s.Type.Validate(); err != nil {
		return err
	}
	return validateInputs(s.Spot, s.Strike, s.Expiry, s.Volatility, s.Rate)
}

func validateInputs(S, K, T, sigma, r float64) error {
	switch {
	case !isFinite(S) || S <= 0:
		return fmt.Errorf("%w: spot price must be positive, got %g", ErrInvalidArgument, S)
	case !isFinite(K) || K <= 0:
		return fmt.Errorf("%w: strike price must be positive, got %g", ErrInvalidArgument, K)
	case math.IsNaN(T) || math.IsInf(T, 1):
		return fmt.Errorf("%w: time to expiry must be finite, got %g", ErrInvalidArgument, T)
	case !isFinite(sigma) || sigma < 0:
		return fmt.Errorf("%w: volatility must be non-negative, got %g", ErrInvalidArgument, sigma)
	case !isFinite(r):
		return fmt.Errorf("%w: risk-free rate must be finite, got %g", ErrInvalidArgument, r)
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
