// Package scan evaluates batches of option scenarios through the pricing
// core: theoretical prices, Greeks, and implied volatilities solved from
// observed market prices. It is the batch surface of the toolkit, the
// one-shot CLI flags being the interactive one.
package scan

import (
	"fmt"
	"time"

	"github.com/BenjaminHannan/Black-Scholes/internal/data"
	"github.com/BenjaminHannan/Black-Scholes/internal/logger"
	"github.com/BenjaminHannan/Black-Scholes/internal/pricing"
)

// Row is the evaluation result of one scenario.
type Row struct {
	Name       string  `json:"name" csv:"name"`
	OptionType string  `json:"option_type" csv:"option_type"`
	Spot       float64 `json:"spot" csv:"spot"`
	Strike     float64 `json:"strike" csv:"strike"`
	T          float64 `json:"years_to_expiry" csv:"years_to_expiry"`
	Rate       float64 `json:"rate" csv:"rate"`
	DivYield   float64 `json:"div_yield" csv:"div_yield"`
	Sigma      float64 `json:"sigma" csv:"sigma"` // vol the outputs are computed at
	Price      float64 `json:"price" csv:"price"`
	pricing.Greeks
	MarketPrice float64 `json:"market_price,omitempty" csv:"market_price"`
	ImpliedVol  float64 `json:"implied_vol,omitempty" csv:"implied_vol"`
}

// Result mirrors the report layout.
type Result struct {
	AsOf    string `json:"as_of"`
	Rows    []Row  `json:"rows"`
	Skipped int    `json:"skipped,omitempty"` // scenarios dropped due to errors
}

type Engine struct {
	cfg  *Config
	prov data.Provider
}

func NewEngine(cfg *Config, prov data.Provider) *Engine {
	return &Engine{cfg: cfg, prov: prov}
}

// Run evaluates every scenario in the config. Scenario-level failures are
// logged and counted, not fatal; only an unusable config errors out.
func (e *Engine) Run() (*Result, error) {
	cfg := e.cfg
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./out"
	}
	if cfg.Verbosity > 0 {
		logger.SetVerbosity(cfg.Verbosity)
	}

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if cfg.AsOf != "" {
		var err error
		asOf, err = time.Parse("2006-01-02", cfg.AsOf)
		if err != nil {
			return nil, fmt.Errorf("invalid as_of date %q: %w", cfg.AsOf, err)
		}
	}

	res := &Result{AsOf: asOf.Format("2006-01-02")}
	for i, sc := range cfg.Scenarios {
		row, err := e.evaluate(asOf, sc)
		if err != nil {
			logger.Errorf("scenario %d (%s): %v", i+1, sc.Name, err)
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, row)
		logger.Debugf("scenario %d (%s): price=%.6f iv=%.6f", i+1, sc.Name, row.Price, row.ImpliedVol)
	}
	logger.Infof("scan complete: %d rows, %d skipped", len(res.Rows), res.Skipped)
	return res, nil
}

// evaluate resolves a scenario's market floats and runs it through the core.
func (e *Engine) evaluate(asOf time.Time, sc Scenario) (Row, error) {
	opt, err := pricing.ParseOptionType(sc.OptionType)
	if err != nil {
		return Row{}, err
	}

	T := sc.YearsToExpiry
	var expiry time.Time
	if sc.Expiry != "" {
		expiry, err = time.Parse("2006-01-02", sc.Expiry)
		if err != nil {
			return Row{}, fmt.Errorf("invalid expiry %q: %w", sc.Expiry, err)
		}
		T = data.YearsToExpiry(asOf, expiry)
	}
	if T <= 0 {
		return Row{}, fmt.Errorf("scenario needs years_to_expiry or a future expiry date")
	}

	spot := sc.Spot
	if spot == 0 {
		if sc.Underlying == "" || e.prov == nil {
			return Row{}, fmt.Errorf("scenario needs a spot price or an underlying with a data provider")
		}
		spot, err = e.prov.GetSpot(sc.Underlying)
		if err != nil {
			return Row{}, fmt.Errorf("fetch spot for %s: %w", sc.Underlying, err)
		}
		logger.Tracef("fetched spot %s = %v", sc.Underlying, spot)
	}

	market := sc.MarketPrice
	if market == 0 && sc.Sigma == 0 {
		// Nothing to price at: pull a market quote and invert it.
		if sc.Underlying == "" || e.prov == nil || expiry.IsZero() {
			return Row{}, fmt.Errorf("scenario needs sigma, a market price, or an underlying with an expiry date")
		}
		market, err = e.prov.GetOptionQuote(sc.Underlying, sc.Strike, expiry, opt)
		if err != nil {
			return Row{}, fmt.Errorf("fetch quote for %s: %w", sc.Underlying, err)
		}
		logger.Tracef("fetched quote %s %v %s = %v", sc.Underlying, sc.Strike, opt, market)
	}

	row := Row{
		Name:        sc.Name,
		OptionType:  opt.String(),
		Spot:        spot,
		Strike:      sc.Strike,
		T:           T,
		Rate:        e.cfg.Rate,
		DivYield:    e.cfg.DivYield,
		Sigma:       sc.Sigma,
		MarketPrice: market,
	}

	if market > 0 {
		iv, err := pricing.ImpliedVolWith(pricing.IVParams{Seed: sc.Sigma}, opt, market, spot, sc.Strike, T, e.cfg.Rate, e.cfg.DivYield)
		if err != nil {
			return Row{}, err
		}
		row.ImpliedVol = iv
		if row.Sigma == 0 {
			row.Sigma = iv // report price and Greeks at the implied vol
		}
	}

	row.Price, err = pricing.Price(opt, spot, sc.Strike, T, e.cfg.Rate, row.Sigma, e.cfg.DivYield)
	if err != nil {
		return Row{}, err
	}
	row.Greeks, err = pricing.ComputeGreeks(opt, spot, sc.Strike, T, e.cfg.Rate, row.Sigma, e.cfg.DivYield)
	if err != nil {
		return Row{}, err
	}
	return row, nil
}
