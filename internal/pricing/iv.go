package pricing

import "math"

// Solver defaults and bounds. The bisection budget is fixed: the bracket
// halves every step, so 200 steps narrow it far below any practical
// tolerance.
const (
	DefaultSeed    = 0.2  // initial Newton guess
	DefaultTol     = 1e-8 // absolute price-error tolerance
	DefaultMaxIter = 100  // Newton step budget

	sigmaMin    = 1e-6
	sigmaMax    = 5.0
	vegaFloor   = 1e-12
	bisectSteps = 200
)

// IVParams tunes the implied-volatility solver. The zero value of any field
// selects the corresponding default, so IVParams{Seed: 0.35} overrides only
// the initial guess.
type IVParams struct {
	Seed    float64 // initial Newton guess, default 0.2
	Tol     float64 // absolute price-error tolerance, default 1e-8
	MaxIter int     // Newton step budget, default 100
}

func (p IVParams) withDefaults() IVParams {
	if p.Seed == 0 {
		p.Seed = DefaultSeed
	}
	if p.Tol == 0 {
		p.Tol = DefaultTol
	}
	if p.MaxIter == 0 {
		p.MaxIter = DefaultMaxIter
	}
	return p
}

// ImpliedVol solves for the volatility that reproduces target, an observed
// market price, under the Black–Scholes–Merton model with default solver
// parameters. See ImpliedVolWith.
func ImpliedVol(opt OptionType, target, S, K, T, r, q float64) (float64, error) {
	return ImpliedVolWith(IVParams{}, opt, target, S, K, T, r, q)
}

// ImpliedVolWith inverts the pricing function: it finds sigma in
// [1e-6, 5.0] such that Price(opt, S, K, T, r, sigma, q) matches target.
//
// The solve runs in two phases. A Newton–Raphson phase iterates
// sigma -= (price-target)/vega from p.Seed; it converges quadratically near
// the root but can stall when vega goes flat at extreme moneyness or tiny
// expiry. If Newton exhausts its budget or hits a degenerate vega
// (< 1e-12), the solver silently falls back to bisection over the full
// bracket, which is slow but guaranteed by the monotonicity of price in
// sigma. Neither trigger is surfaced to the caller.
//
// If even the 200 bisection steps do not meet tolerance, the midpoint of the
// final bracket is returned as a best-effort estimate: the result is then
// accuracy-bounded by the bracket width rather than guaranteed within
// p.Tol. The only error returned is an invalid-input failure from the
// pricing gate.
func ImpliedVolWith(p IVParams, opt OptionType, target, S, K, T, r, q float64) (float64, error) {
	p = p.withDefaults()

	sigma := math.Max(sigmaMin, p.Seed)
	for i := 0; i < p.MaxIter; i++ {
		price, err := Price(opt, S, K, T, r, sigma, q)
		if err != nil {
			return 0, err
		}
		diff := price - target
		if math.Abs(diff) < p.Tol {
			return math.Max(1e-12, sigma), nil
		}

		g, err := ComputeGreeks(opt, S, K, T, r, sigma, q)
		if err != nil {
			return 0, err
		}
		if g.Vega < vegaFloor {
			break // flat sensitivity, Newton cannot make progress
		}

		sigma = sigma - diff/g.Vega
		if sigma < sigmaMin {
			sigma = sigmaMin
		} else if sigma > sigmaMax {
			sigma = sigmaMax
		}
	}

	// Bisection fallback. Price is monotonic increasing in sigma over the
	// bracket for both option types, so [sigmaMin, sigmaMax] brackets the
	// root whenever one exists.
	lo, hi := sigmaMin, sigmaMax
	for i := 0; i < bisectSteps; i++ {
		mid := 0.5 * (lo + hi)
		price, err := Price(opt, S, K, T, r, mid, q)
		if err != nil {
			return 0, err
		}
		if math.Abs(price-target) < p.Tol {
			return mid, nil
		}
		if price > target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
