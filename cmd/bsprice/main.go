package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/BenjaminHannan/Black-Scholes/internal/data"
	"github.com/BenjaminHannan/Black-Scholes/internal/logger"
	"github.com/BenjaminHannan/Black-Scholes/internal/pricing"
	"github.com/BenjaminHannan/Black-Scholes/internal/report"
	"github.com/BenjaminHannan/Black-Scholes/internal/scan"
)

func main() {
	spot := flag.Float64("spot", 0, "spot price S (fetched from the data provider when -underlying is set)")
	strike := flag.Float64("strike", 0, "strike price K")
	expiry := flag.Float64("expiry", 0, "time to expiry T in years")
	expiryDate := flag.String("expiry-date", "", "contract expiry YYYY-MM-DD (alternative to -expiry)")
	rate := flag.Float64("rate", 0, "risk-free rate r (decimal)")
	div := flag.Float64("div", 0, "continuous dividend yield q (decimal, 0 = none)")
	vol := flag.Float64("vol", 0, "volatility sigma (decimal)")
	optType := flag.String("type", "call", "option type: call or put")
	market := flag.Float64("market", 0, "observed market price; solves implied volatility")
	underlying := flag.String("underlying", "", "underlying ticker for live spot/quote lookup")
	quotes := flag.String("quotes", "", "local CSV quote file used ahead of live data")
	scanPath := flag.String("scan", "", "JSON scan config; runs batch mode")
	scenarios := flag.String("scenarios", "", "CSV scenario file appended to the scan config")
	rest := flag.Bool("rest", false, "run as REST server")
	port := flag.String("port", ":8080", "REST server listen address")
	verbosity := flag.Int("v", 1, "verbosity: 0=errors,1=info,2=debug,3=trace")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	// env file is optional, flags and real env take precedence
	if os.Getenv("POLYGON_API_KEY") == "" {
		_ = godotenv.Load()
	}

	prov := buildProvider(*quotes)

	switch {
	case *rest:
		runServer(*port)
	case *scanPath != "" || *scenarios != "":
		runScan(*scanPath, *scenarios, prov)
	default:
		runOnce(prov, *underlying, *optType, *spot, *strike, *expiry, *expiryDate, *rate, *div, *vol, *market)
	}
}

// buildProvider assembles the quote source chain: local CSV first when
// given, then Polygon when an API key is present, synthetic last.
func buildProvider(quotesPath string) data.Provider {
	prov := data.NewSyntheticProvider(0.2)
	if apiKey := os.Getenv("POLYGON_API_KEY"); apiKey != "" {
		prov = data.NewPolygonQuoteProvider(apiKey, prov)
	} else {
		logger.Infof("POLYGON_API_KEY not set, synthetic quotes enabled")
	}
	if quotesPath != "" {
		var err error
		prov, err = data.NewLocalCSVQuoteProvider(quotesPath, prov)
		if err != nil {
			logger.Errorf("loading quote file: %v", err)
			os.Exit(1)
		}
	}
	return prov
}

// runOnce prices a single contract and prints the results, mirroring the
// interactive front end: price and Greeks always, implied vol when a market
// price was observed.
func runOnce(prov data.Provider, underlying, optStr string, S, K, T float64, expiryDate string, r, q, sigma, market float64) {
	opt, err := pricing.ParseOptionType(optStr)
	if err != nil {
		fatal(err)
	}

	if expiryDate != "" {
		exp, err := time.Parse("2006-01-02", expiryDate)
		if err != nil {
			fatal(fmt.Errorf("invalid -expiry-date: %w", err))
		}
		T = data.YearsToExpiry(time.Now().UTC(), exp)
	}
	if S == 0 && underlying != "" {
		S, err = prov.GetSpot(underlying)
		if err != nil {
			fatal(fmt.Errorf("fetching spot for %s: %w", underlying, err))
		}
		logger.Infof("spot %s = %.4f", underlying, S)
	}

	price, err := pricing.Price(opt, S, K, T, r, sigma, q)
	if err != nil {
		fatal(err)
	}
	g, err := pricing.ComputeGreeks(opt, S, K, T, r, sigma, q)
	if err != nil {
		fatal(err)
	}

	fmt.Println("--- Results ---")
	fmt.Printf("Price: %.6f\n", price)
	fmt.Printf("Delta: %.6f\n", g.Delta)
	fmt.Printf("Gamma: %.6f\n", g.Gamma)
	fmt.Printf("Vega : %.6f\n", g.Vega)
	fmt.Printf("Theta: %.6f\n", g.Theta)
	fmt.Printf("Rho  : %.6f\n", g.Rho)

	if market > 0 {
		// seed the solver with the vol we just priced at
		iv, err := pricing.ImpliedVolWith(pricing.IVParams{Seed: sigma}, opt, market, S, K, T, r, q)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Implied vol: %.6f\n", iv)
	}
}

func runScan(cfgPath, scenariosPath string, prov data.Provider) {
	cfg := &scan.Config{Rate: 0.0}
	if cfgPath != "" {
		var err error
		cfg, err = scan.LoadConfig(cfgPath)
		if err != nil {
			fatal(err)
		}
	}
	if scenariosPath != "" {
		rows, err := scan.LoadScenariosCSV(scenariosPath)
		if err != nil {
			fatal(err)
		}
		cfg.Scenarios = append(cfg.Scenarios, rows...)
	}

	start := time.Now()
	res, err := scan.NewEngine(cfg, prov).Run()
	if err != nil {
		fatal(err)
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "./out"
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Errorf("could not create output dir %s: %v", cfg.OutputDir, err)
	}
	if err := report.WriteJSON(res, cfg.OutputDir); err != nil {
		logger.Errorf("writing scan.json: %v", err)
	}
	if err := report.WriteCSV(res.Rows, cfg.OutputDir); err != nil {
		logger.Errorf("writing scan.csv: %v", err)
	}
	logger.Infof("finished in %v, wrote %d rows to %s", time.Since(start), len(res.Rows), cfg.OutputDir)
}

func runServer(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/price", handlePrice)
	mux.HandleFunc("/greeks", handleGreeks)
	mux.HandleFunc("/impliedvol", handleImpliedVol)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })

	logger.Infof("starting REST server on %s", port)
	if err := http.ListenAndServe(port, mux); err != nil {
		fatal(err)
	}
}

// parseRequest pulls the shared model parameters out of query params.
func parseRequest(r *http.Request) (opt pricing.OptionType, S, K, T, rate, sigma, q float64, err error) {
	qp := r.URL.Query()
	f := func(name string) float64 {
		v, perr := strconv.ParseFloat(qp.Get(name), 64)
		if perr != nil && qp.Get(name) != "" && err == nil {
			err = fmt.Errorf("invalid %s=%q", name, qp.Get(name))
		}
		return v
	}
	S, K, T = f("spot"), f("strike"), f("expiry")
	rate, sigma, q = f("rate"), f("vol"), f("div")
	if err != nil {
		return
	}
	opt, err = pricing.ParseOptionType(qp.Get("type"))
	return
}

func handlePrice(w http.ResponseWriter, r *http.Request) {
	opt, S, K, T, rate, sigma, q, err := parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	price, err := pricing.Price(opt, S, K, T, rate, sigma, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]float64{"price": price})
}

func handleGreeks(w http.ResponseWriter, r *http.Request) {
	opt, S, K, T, rate, sigma, q, err := parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, err := pricing.ComputeGreeks(opt, S, K, T, rate, sigma, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, g)
}

func handleImpliedVol(w http.ResponseWriter, r *http.Request) {
	opt, S, K, T, rate, seed, q, err := parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	target, err := strconv.ParseFloat(r.URL.Query().Get("market"), 64)
	if err != nil {
		http.Error(w, "invalid or missing market price", http.StatusBadRequest)
		return
	}
	iv, err := pricing.ImpliedVolWith(pricing.IVParams{Seed: seed}, opt, target, S, K, T, rate, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]float64{"implied_vol": iv})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func fatal(err error) {
	logger.Errorf("%v", err)
	os.Exit(1)
}
