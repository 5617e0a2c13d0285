// Package pricing implements European option valuation under the
// Black–Scholes–Merton model with a continuous proportional dividend yield.
//
// The package is a pure computation library: every function is a
// deterministic function of its numeric inputs, holds no state, and is safe
// to call concurrently without locking.
//
// Argument conventions shared by the whole package:
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//   - q: continuous dividend yield (annual, 0 = no dividends)
//
// S, K, T and sigma must be strictly positive; r and q may be any real.
// Violations surface as errors wrapping ErrInvalidInput, never as NaN.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput reports a market or contract parameter outside the model's
// domain. Use errors.Is to test for it; the wrapped message names the
// violated constraint.
var ErrInvalidInput = errors.New("invalid input")

// OptionType is a closed two-value tag distinguishing calls from puts.
// Construct values only through the Call/Put constants or ParseOptionType;
// string-to-tag conversion fails at the boundary rather than deep inside a
// formula.
type OptionType int

const (
	Call OptionType = iota
	Put
)

// ParseOptionType converts a user-facing option-type string ("call" or
// "put", case-insensitive) into an OptionType. Any other value is rejected
// with an error wrapping ErrInvalidInput.
func ParseOptionType(s string) (OptionType, error) {
	switch s {
	case "call", "Call", "CALL", "c", "C":
		return Call, nil
	case "put", "Put", "PUT", "p", "P":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: option type must be \"call\" or \"put\", got %q", ErrInvalidInput, s)
}

func (o OptionType) String() string {
	if o == Call {
		return "call"
	}
	return "put"
}

// Greeks is an immutable record of the five first/second-order price
// sensitivities. Vega is per unit (1.0) change in sigma and Theta per unit
// (1.0) change in T, i.e. per year rather than per day.
type Greeks struct {
	Delta float64 `json:"delta" csv:"delta"`
	Gamma float64 `json:"gamma" csv:"gamma"`
	Vega  float64 `json:"vega" csv:"vega"`
	Theta float64 `json:"theta" csv:"theta"`
	Rho   float64 `json:"rho" csv:"rho"`
}

// d1d2 computes the Black–Scholes d1/d2 terms. It is the single validation
// gate for the package: pricing, Greeks and the implied-vol solver all pass
// through here, and no other entry point re-validates.
func d1d2(S, K, T, r, sigma, q float64) (d1, d2 float64, err error) {
	switch {
	case S <= 0:
		return 0, 0, fmt.Errorf("%w: spot S must be > 0, got %g", ErrInvalidInput, S)
	case K <= 0:
		return 0, 0, fmt.Errorf("%w: strike K must be > 0, got %g", ErrInvalidInput, K)
	case T <= 0:
		return 0, 0, fmt.Errorf("%w: time to expiry T must be > 0, got %g", ErrInvalidInput, T)
	case sigma <= 0:
		return 0, 0, fmt.Errorf("%w: volatility sigma must be > 0, got %g", ErrInvalidInput, sigma)
	}

	vsqrtT := sigma * math.Sqrt(T)
	d1 = (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / vsqrtT
	d2 = d1 - vsqrtT
	return d1, d2, nil
}

// Price calculates the price of a European option using the
// Black–Scholes–Merton model.
//
// Parameters:
//   - opt: Call or Put
//   - S, K, T, r, sigma, q: see the package comment
//
// Returns:
//
//	The theoretical price of the option, or an error wrapping ErrInvalidInput
//	when S, K, T or sigma is not strictly positive.
func Price(opt OptionType, S, K, T, r, sigma, q float64) (float64, error) {
	d1, d2, err := d1d2(S, K, T, r, sigma, q)
	if err != nil {
		return 0, err
	}

	discR := math.Exp(-r * T)
	discQ := math.Exp(-q * T)

	if opt == Call {
		return S*discQ*normCDF(d1) - K*discR*normCDF(d2), nil
	}
	return K*discR*normCDF(-d2) - S*discQ*normCDF(-d1), nil
}

// ComputeGreeks calculates the full Greeks record for a European option.
//
// Gamma and Vega are identical for calls and puts; Delta, Theta and Rho
// carry the option-type sign conventions. Validation is shared with Price,
// so both fail identically on out-of-domain inputs.
func ComputeGreeks(opt OptionType, S, K, T, r, sigma, q float64) (Greeks, error) {
	d1, d2, err := d1d2(S, K, T, r, sigma, q)
	if err != nil {
		return Greeks{}, err
	}

	discR := math.Exp(-r * T)
	discQ := math.Exp(-q * T)
	pdf := normPDF(d1)
	sqrtT := math.Sqrt(T)

	g := Greeks{
		Gamma: discQ * pdf / (S * sigma * sqrtT),
		Vega:  S * discQ * pdf * sqrtT, // per 1.0 change in sigma
	}

	if opt == Call {
		g.Delta = discQ * normCDF(d1)
		g.Theta = -S*discQ*pdf*sigma/(2*sqrtT) - r*K*discR*normCDF(d2) + q*S*discQ*normCDF(d1)
		g.Rho = K * T * discR * normCDF(d2)
		return g, nil
	}

	g.Delta = discQ * (normCDF(d1) - 1)
	g.Theta = -S*discQ*pdf*sigma/(2*sqrtT) + r*K*discR*normCDF(-d2) - q*S*discQ*normCDF(-d1)
	g.Rho = -K * T * discR * normCDF(-d2)
	return g, nil
}

// IntrinsicValue returns the expiry payoff of the option at spot S:
// max(S-K, 0) for a call, max(K-S, 0) for a put.
func IntrinsicValue(opt OptionType, S, K float64) float64 {
	if opt == Call {
		return math.Max(0, S-K)
	}
	return math.Max(0, K-S)
}

// StrikeForDelta inverts the Black–Scholes delta to find the strike whose
// option carries the target delta at the given market parameters.
//
// For a call, delta must lie in (0, e^{-qT}); for a put, in (-e^{-qT}, 0).
// Useful for delta-based strike selection (e.g. "sell the 30-delta call").
func StrikeForDelta(opt OptionType, S, T, r, q, sigma, delta float64) (float64, error) {
	switch {
	case S <= 0:
		return 0, fmt.Errorf("%w: spot S must be > 0, got %g", ErrInvalidInput, S)
	case T <= 0:
		return 0, fmt.Errorf("%w: time to expiry T must be > 0, got %g", ErrInvalidInput, T)
	case sigma <= 0:
		return 0, fmt.Errorf("%w: volatility sigma must be > 0, got %g", ErrInvalidInput, sigma)
	}

	discQ := math.Exp(-q * T)
	p := delta / discQ
	if opt == Put {
		p += 1
	}
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: delta %g unreachable for %s with q=%g T=%g", ErrInvalidInput, delta, opt, q, T)
	}

	// delta = discQ*Phi(d1), so d1 = NormInv(delta/discQ); solve
	// d1 = (ln(S/K) + (r-q+0.5*sigma^2)T) / (sigma*sqrt(T)) for K.
	d1 := NormInv(p)
	return S * math.Exp((r-q+0.5*sigma*sigma)*T - d1*sigma*math.Sqrt(T)), nil
}
