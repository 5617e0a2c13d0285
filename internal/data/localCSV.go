package data

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/BenjaminHannan/Black-Scholes/internal/pricing"
)

// QuoteRow is one record of a local quote file. Expected CSV header:
//
//	underlying,spot,strike,expiry,type,price
//
// with expiry in YYYY-MM-DD and type "call" or "put".
type QuoteRow struct {
	Underlying string  `csv:"underlying"`
	Spot       float64 `csv:"spot"`
	Strike     float64 `csv:"strike"`
	Expiry     string  `csv:"expiry"`
	Type       string  `csv:"type"`
	Price      float64 `csv:"price"`
}

// localCSVQuoteProvider implements Provider from a quote file on disk.
// The whole file loads once at construction; lookups are linear scans,
// which is fine at the file sizes this serves.
type localCSVQuoteProvider struct {
	rows      []QuoteRow
	secondary Provider
}

// NewLocalCSVQuoteProvider loads quotes from path. secondary may be nil.
func NewLocalCSVQuoteProvider(path string, secondary Provider) (Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quote file: %w", err)
	}
	defer f.Close()

	var rows []QuoteRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse quote file %s: %w", path, err)
	}
	return &localCSVQuoteProvider{rows: rows, secondary: secondary}, nil
}

func (localCSVQuoteProv *localCSVQuoteProvider) Secondary() Provider {
	return localCSVQuoteProv.secondary
}

func (localCSVQuoteProv *localCSVQuoteProvider) GetSpot(underlying string) (float64, error) {
	for _, row := range localCSVQuoteProv.rows {
		if strings.EqualFold(row.Underlying, underlying) && row.Spot > 0 {
			return row.Spot, nil
		}
	}
	if localCSVQuoteProv.secondary != nil {
		return localCSVQuoteProv.secondary.GetSpot(underlying)
	}
	return 0, fmt.Errorf("no spot for %s in quote file", underlying)
}

func (localCSVQuoteProv *localCSVQuoteProvider) GetOptionQuote(underlying string, strike float64, expiry time.Time, optType pricing.OptionType) (float64, error) {
	want := expiry.Format("2006-01-02")
	for _, row := range localCSVQuoteProv.rows {
		if !strings.EqualFold(row.Underlying, underlying) {
			continue
		}
		if row.Expiry != want || math.Abs(row.Strike-strike) > 1e-9 {
			continue
		}
		rowType, err := pricing.ParseOptionType(row.Type)
		if err != nil || rowType != optType {
			continue
		}
		return row.Price, nil
	}
	if localCSVQuoteProv.secondary != nil {
		return localCSVQuoteProv.secondary.GetOptionQuote(underlying, strike, expiry, optType)
	}
	return 0, fmt.Errorf("no quote for %s %v %s %s in quote file",
		underlying, strike, want, optType)
}
