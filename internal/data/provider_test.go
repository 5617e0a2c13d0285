package data

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BenjaminHannan/Black-Scholes/internal/pricing"
)

func testExpiry() time.Time {
	return time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC)
}

func TestOptionSymbolFromParts(t *testing.T) {
	sym := OptionSymbolFromParts("aapl", testExpiry(), pricing.Call, 232.5)
	if sym != "O:AAPL261218C00232500" {
		t.Fatalf("unexpected OCC symbol: %s", sym)
	}

	sym = OptionSymbolFromParts("SPY", testExpiry(), pricing.Put, 450)
	if sym != "O:SPY261218P00450000" {
		t.Fatalf("unexpected OCC symbol: %s", sym)
	}
}

func TestYearsToExpiry(t *testing.T) {
	asOf := time.Date(2026, 6, 18, 0, 0, 0, 0, time.UTC)
	T := YearsToExpiry(asOf, testExpiry())
	if math.Abs(T-183.0/365.0) > 1e-9 {
		t.Fatalf("unexpected T: %v", T)
	}

	if T := YearsToExpiry(testExpiry(), asOf); T >= 0 {
		t.Fatalf("expired contract should give non-positive T, got %v", T)
	}
}

func TestSyntheticProviderQuotesAreInvertible(t *testing.T) {
	const refVol = 0.3
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	prov := &synthQuoteProvider{refVol: refVol, rate: 0.02, now: func() time.Time { return now }}

	spot, err := prov.GetSpot("ACME")
	if err != nil {
		t.Fatalf("spot err: %v", err)
	}
	if spot < 50 || spot >= 450 {
		t.Fatalf("spot out of range: %v", spot)
	}
	again, _ := prov.GetSpot("ACME")
	if spot != again {
		t.Fatalf("synthetic spot must be stable: %v vs %v", spot, again)
	}

	expiry := now.AddDate(0, 6, 0)
	quote, err := prov.GetOptionQuote("ACME", spot, expiry, pricing.Call)
	if err != nil {
		t.Fatalf("quote err: %v", err)
	}

	T := YearsToExpiry(now, expiry)
	iv, err := pricing.ImpliedVol(pricing.Call, quote, spot, spot, T, 0.02, 0)
	if err != nil {
		t.Fatalf("implied vol err: %v", err)
	}
	if math.Abs(iv-refVol) > 1e-4 {
		t.Fatalf("synthetic quote not invertible: iv=%v want=%v", iv, refVol)
	}
}

func TestSyntheticProviderRejectsExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	prov := &synthQuoteProvider{refVol: 0.2, rate: 0.02, now: func() time.Time { return now }}

	if _, err := prov.GetOptionQuote("ACME", 100, now.AddDate(0, 0, -1), pricing.Put); err == nil {
		t.Fatalf("expected error for expired contract")
	}
}

func TestLocalCSVQuoteProvider(t *testing.T) {
	csvBody := "underlying,spot,strike,expiry,type,price\n" +
		"AAPL,230.5,230,2026-12-18,call,12.35\n" +
		"AAPL,230.5,230,2026-12-18,put,10.10\n"
	path := filepath.Join(t.TempDir(), "quotes.csv")
	if err := os.WriteFile(path, []byte(csvBody), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	prov, err := NewLocalCSVQuoteProvider(path, nil)
	if err != nil {
		t.Fatalf("load provider: %v", err)
	}

	spot, err := prov.GetSpot("aapl")
	if err != nil || spot != 230.5 {
		t.Fatalf("spot: got=%v err=%v", spot, err)
	}

	px, err := prov.GetOptionQuote("AAPL", 230, testExpiry(), pricing.Put)
	if err != nil || px != 10.10 {
		t.Fatalf("quote: got=%v err=%v", px, err)
	}

	if _, err := prov.GetOptionQuote("AAPL", 250, testExpiry(), pricing.Call); err == nil {
		t.Fatalf("expected miss for unknown strike")
	}

	if _, err := NewLocalCSVQuoteProvider(filepath.Join(t.TempDir(), "missing.csv"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLocalCSVFallsBackToSecondary(t *testing.T) {
	csvBody := "underlying,spot,strike,expiry,type,price\n" +
		"AAPL,230.5,230,2026-12-18,call,12.35\n"
	path := filepath.Join(t.TempDir(), "quotes.csv")
	if err := os.WriteFile(path, []byte(csvBody), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	secondary := &synthQuoteProvider{refVol: 0.2, rate: 0.02, now: func() time.Time { return now }}
	prov, err := NewLocalCSVQuoteProvider(path, secondary)
	if err != nil {
		t.Fatalf("load provider: %v", err)
	}

	// MSFT is not in the file; the synthetic secondary must answer.
	if _, err := prov.GetSpot("MSFT"); err != nil {
		t.Fatalf("secondary spot: %v", err)
	}
	if _, err := prov.GetOptionQuote("MSFT", 400, testExpiry(), pricing.Call); err != nil {
		t.Fatalf("secondary quote: %v", err)
	}
}
