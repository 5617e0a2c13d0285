package data

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/BenjaminHannan/Black-Scholes/internal/pricing"
)

// synthQuoteProvider implements Provider with deterministic model-generated
// quotes. Spots derive from a hash of the underlying symbol; option quotes
// are Black-Scholes prices at a fixed reference volatility, so implied vols
// solved from them recover that volatility. Useful for demos and as the
// terminal fallback in a provider chain.
type synthQuoteProvider struct {
	refVol    float64
	rate      float64
	div       float64
	now       func() time.Time
	secondary Provider
}

// NewSyntheticProvider builds a synthetic quote source generating prices at
// the given reference volatility.
func NewSyntheticProvider(refVol float64) Provider {
	return &synthQuoteProvider{
		refVol: refVol,
		rate:   0.02,
		now:    time.Now,
	}
}

func (synthQuoteProv *synthQuoteProvider) Secondary() Provider {
	return synthQuoteProv.secondary
}

func (synthQuoteProv *synthQuoteProvider) GetSpot(underlying string) (float64, error) {
	if synthQuoteProv.secondary != nil {
		return synthQuoteProv.secondary.GetSpot(underlying)
	}
	h := fnv.New32a()
	h.Write([]byte(underlying))
	// spot in [50, 450), stable per symbol
	return 50.0 + float64(h.Sum32()%400), nil
}

func (synthQuoteProv *synthQuoteProvider) GetOptionQuote(underlying string, strike float64, expiry time.Time, optType pricing.OptionType) (float64, error) {
	if synthQuoteProv.secondary != nil {
		return synthQuoteProv.secondary.GetOptionQuote(underlying, strike, expiry, optType)
	}

	spot, err := synthQuoteProv.GetSpot(underlying)
	if err != nil {
		return 0, err
	}
	T := YearsToExpiry(synthQuoteProv.now(), expiry)
	if T <= 0 {
		return 0, fmt.Errorf("contract expired %s ago", synthQuoteProv.now().Sub(expiry))
	}
	return pricing.Price(optType, spot, strike, T, synthQuoteProv.rate, synthQuoteProv.refVol, synthQuoteProv.div)
}
