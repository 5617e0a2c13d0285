// Package data provides market quote providers.
//
// A Provider supplies the observed market floats the pricing and
// implied-volatility front ends consume: a spot price for the underlying and
// a traded option price to invert. Providers chain through Secondary() so a
// live source can fall back to a local file or a synthetic model.
package data

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BenjaminHannan/Black-Scholes/internal/pricing"
)

// Provider supplies market data
type Provider interface {
	// Secondary returns the fallback provider consulted when this provider
	// cannot serve a request, or nil when there is none.
	Secondary() Provider

	// GetSpot returns the most recent spot price of the underlying.
	GetSpot(underlying string) (float64, error)

	// GetOptionQuote returns the most recent traded price of the contract
	// identified by underlying, strike, expiry and option type.
	GetOptionQuote(underlying string, strike float64, expiry time.Time, optType pricing.OptionType) (float64, error)
}

// YearsToExpiry converts a contract expiry into the time-to-expiry T (in
// years) the model expects, measured from asOf. Expired contracts yield a
// non-positive T, which the pricing gate rejects.
func YearsToExpiry(asOf, expiry time.Time) float64 {
	return expiry.Sub(asOf).Hours() / (24 * 365)
}

// --------------------------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------------------------

// OptionSymbolFromParts: improved OCC-like formatter (best-effort)
func OptionSymbolFromParts(underlying string, expiryDate time.Time, optionType pricing.OptionType, strike float64) string {
	// OCC: <root><YYMMDD><C|P><strike*1000 padded to 8 digits>
	expDt := expiryDate.UTC().Format("060102")
	optTag := "C"
	if optionType == pricing.Put {
		optTag = "P"
	}
	strikeInt := int(math.Round(strike * 1000))
	strFmt := fmt.Sprintf("%08d", strikeInt)
	return fmt.Sprintf("O:%s%s%s%s", strings.ToUpper(underlying), expDt, optTag, strFmt)
}
