package scan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
)

// Config drives a scan run.
type Config struct {
	AsOf      string     `json:"as_of,omitempty"`     // valuation date YYYY-MM-DD, default today
	Rate      float64    `json:"rate"`                // risk-free rate applied to every scenario
	DivYield  float64    `json:"div_yield,omitempty"` // continuous dividend yield, 0 = none
	Scenarios []Scenario `json:"scenarios" validate:"min=1,dive"`
	OutputDir string     `json:"output_dir,omitempty"` // report directory, default "./out"
	Verbosity int        `json:"verbosity,omitempty"`  // 0=errors,1=info,2=debug
}

// Scenario describes one contract to evaluate. Exactly how it is evaluated
// depends on which fields are set:
//
//   - Sigma > 0: theoretical price and Greeks at that volatility.
//   - MarketPrice > 0: implied volatility from that price (Sigma, when also
//     present, seeds the solver). Greeks are then reported at the implied vol.
//   - Underlying set and Spot or MarketPrice missing: the missing floats are
//     fetched from the run's data provider.
//
// Time to expiry comes from YearsToExpiry directly, or from Expiry
// (YYYY-MM-DD) relative to the config's as-of date.
type Scenario struct {
	Name          string  `json:"name,omitempty" csv:"name"`
	OptionType    string  `json:"option_type" csv:"option_type" validate:"required"`
	Underlying    string  `json:"underlying,omitempty" csv:"underlying"`
	Spot          float64 `json:"spot,omitempty" csv:"spot" validate:"gte=0"`
	Strike        float64 `json:"strike" csv:"strike" validate:"gt=0"`
	Expiry        string  `json:"expiry,omitempty" csv:"expiry"`
	YearsToExpiry float64 `json:"years_to_expiry,omitempty" csv:"years_to_expiry" validate:"gte=0"`
	Sigma         float64 `json:"sigma,omitempty" csv:"sigma" validate:"gte=0"`
	MarketPrice   float64 `json:"market_price,omitempty" csv:"market_price" validate:"gte=0"`
}

var validate = validator.New()

// LoadConfig reads and validates a JSON scan config.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config %s failed validation: %w", path, err)
	}
	return &cfg, nil
}

// LoadScenariosCSV reads scenario rows from a CSV file. Header columns match
// the csv tags on Scenario.
func LoadScenariosCSV(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenarios: %w", err)
	}
	defer f.Close()

	var rows []Scenario
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse scenarios %s: %w", path, err)
	}
	for i := range rows {
		if err := validate.Struct(&rows[i]); err != nil {
			return nil, fmt.Errorf("scenario %d failed validation: %w", i+1, err)
		}
	}
	return rows, nil
}
