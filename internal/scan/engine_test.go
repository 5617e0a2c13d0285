package scan

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BenjaminHannan/Black-Scholes/internal/data"
	"github.com/BenjaminHannan/Black-Scholes/internal/pricing"
	"github.com/BenjaminHannan/Black-Scholes/internal/testutil"
)

// fixedProvider serves canned market data for engine tests.
type fixedProvider struct {
	spot  float64
	quote float64
}

func (f *fixedProvider) Secondary() data.Provider { return nil }

func (f *fixedProvider) GetSpot(string) (float64, error) { return f.spot, nil }

func (f *fixedProvider) GetOptionQuote(string, float64, time.Time, pricing.OptionType) (float64, error) {
	return f.quote, nil
}

func TestEngineTheoreticalScenario(t *testing.T) {
	cfg := &Config{
		Rate: 0.05,
		Scenarios: []Scenario{
			{Name: "atm call", OptionType: "call", Spot: 100, Strike: 100, YearsToExpiry: 1, Sigma: 0.2},
		},
	}
	res, err := NewEngine(cfg, nil).Run()
	if err != nil {
		t.Fatalf("run err: %v", err)
	}
	if len(res.Rows) != 1 || res.Skipped != 0 {
		t.Fatalf("unexpected result shape: %+v", res)
	}

	row := res.Rows[0]
	testutil.AssertClose(t, "price", row.Price, 10.4506, 1e-4)
	testutil.AssertClose(t, "delta", row.Delta, 0.6368, 1e-4)
	if row.ImpliedVol != 0 {
		t.Fatalf("no market price given, implied vol must stay zero: %v", row.ImpliedVol)
	}
}

func TestEngineImpliedVolScenario(t *testing.T) {
	target, err := pricing.Price(pricing.Put, 100, 110, 0.5, 0.03, 0.35, 0)
	if err != nil {
		t.Fatalf("price err: %v", err)
	}

	cfg := &Config{
		Rate: 0.03,
		Scenarios: []Scenario{
			{Name: "quoted put", OptionType: "put", Spot: 100, Strike: 110, YearsToExpiry: 0.5, MarketPrice: target},
		},
	}
	res, err := NewEngine(cfg, nil).Run()
	if err != nil {
		t.Fatalf("run err: %v", err)
	}
	row := res.Rows[0]
	testutil.AssertClose(t, "implied vol", row.ImpliedVol, 0.35, 1e-4)
	// Greeks reported at the implied vol must reprice to the market.
	testutil.AssertClose(t, "row price", row.Price, target, 1e-6)
	if row.Sigma != row.ImpliedVol {
		t.Fatalf("sigma should fall back to implied vol, got %v", row.Sigma)
	}
}

func TestEngineFetchesFromProvider(t *testing.T) {
	prov := &fixedProvider{spot: 200, quote: 15.25}
	cfg := &Config{
		AsOf: "2026-08-31",
		Rate: 0.04,
		Scenarios: []Scenario{
			{Name: "live", OptionType: "call", Underlying: "ACME", Strike: 210, Expiry: "2027-08-31"},
		},
	}
	res, err := NewEngine(cfg, prov).Run()
	if err != nil {
		t.Fatalf("run err: %v", err)
	}
	row := res.Rows[0]
	if row.Spot != 200 || row.MarketPrice != 15.25 {
		t.Fatalf("provider floats not used: %+v", row)
	}
	if row.ImpliedVol <= 0 {
		t.Fatalf("expected an implied vol from the fetched quote, got %v", row.ImpliedVol)
	}
	if math.Abs(row.T-1.0) > 1e-9 {
		t.Fatalf("T from expiry: got=%v", row.T)
	}
}

func TestEngineSkipsBrokenScenarios(t *testing.T) {
	cfg := &Config{
		Rate: 0.05,
		Scenarios: []Scenario{
			{Name: "bad type", OptionType: "swaption", Spot: 100, Strike: 100, YearsToExpiry: 1, Sigma: 0.2},
			{Name: "no expiry", OptionType: "call", Spot: 100, Strike: 100, Sigma: 0.2},
			{Name: "ok", OptionType: "put", Spot: 100, Strike: 100, YearsToExpiry: 1, Sigma: 0.2},
		},
	}
	res, err := NewEngine(cfg, nil).Run()
	if err != nil {
		t.Fatalf("run err: %v", err)
	}
	if len(res.Rows) != 1 || res.Skipped != 2 {
		t.Fatalf("expected 1 row and 2 skips, got %d rows %d skips", len(res.Rows), res.Skipped)
	}
}

func TestLoadConfig(t *testing.T) {
	body := `{
  "as_of": "2026-08-31",
  "rate": 0.05,
  "scenarios": [
    {"name": "atm", "option_type": "call", "spot": 100, "strike": 100, "years_to_expiry": 1, "sigma": 0.2}
  ]
}`
	path := filepath.Join(t.TempDir(), "scan.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if len(cfg.Scenarios) != 1 || cfg.Rate != 0.05 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigRejectsEmptyOrInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	if err := os.WriteFile(path, []byte(`{"rate": 0.05, "scenarios": []}`), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected validation error for empty scenarios")
	}

	if err := os.WriteFile(path, []byte(`{"rate": 0.05, "scenarios": [{"option_type": "call", "strike": -5}]}`), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected validation error for negative strike")
	}
}

func TestLoadScenariosCSV(t *testing.T) {
	body := "name,option_type,underlying,spot,strike,expiry,years_to_expiry,sigma,market_price\n" +
		"atm,call,,100,100,,1,0.2,0\n" +
		"quoted,put,,100,110,,0.5,0,7.5\n"
	path := filepath.Join(t.TempDir(), "scenarios.csv")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rows, err := LoadScenariosCSV(path)
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if len(rows) != 2 || rows[1].MarketPrice != 7.5 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
