package data

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/BenjaminHannan/Black-Scholes/internal/logger"
	"github.com/BenjaminHannan/Black-Scholes/internal/pricing"
)

// polygonQuoteProvider implements Provider using Polygon.io REST APIs.
type polygonQuoteProvider struct {
	apiKey    string
	client    *http.Client
	baseURL   string
	secondary Provider
}

// NewPolygonQuoteProvider constructs a Polygon-backed quote provider with a
// fallback chained behind it. secondary may be nil.
func NewPolygonQuoteProvider(apiKey string, secondary Provider) Provider {
	logger.Infof("initializing Polygon quote provider")
	return &polygonQuoteProvider{
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   "https://api.polygon.io",
		secondary: secondary,
	}
}

func (polygonQuoteProv *polygonQuoteProvider) Secondary() Provider {
	return polygonQuoteProv.secondary
}

// GetSpot fetches the previous-session close for the underlying.
func (polygonQuoteProv *polygonQuoteProvider) GetSpot(underlying string) (float64, error) {
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev?adjusted=true&apiKey=%s",
		polygonQuoteProv.baseURL, underlying, polygonQuoteProv.apiKey)

	var body struct {
		Results []struct {
			Close float64 `json:"c"`
		} `json:"results"`
	}
	if err := polygonQuoteProv.getJSON(url, &body); err != nil || len(body.Results) == 0 {
		if polygonQuoteProv.secondary != nil {
			logger.Debugf("polygon spot failed for %s (%v), trying secondary", underlying, err)
			return polygonQuoteProv.secondary.GetSpot(underlying)
		}
		if err == nil {
			err = fmt.Errorf("no spot data for %s", underlying)
		}
		return 0, err
	}
	return body.Results[0].Close, nil
}

// GetOptionQuote fetches the previous-session close for the OCC contract.
func (polygonQuoteProv *polygonQuoteProvider) GetOptionQuote(underlying string, strike float64, expiry time.Time, optType pricing.OptionType) (float64, error) {
	symbol := OptionSymbolFromParts(underlying, expiry, optType, strike)
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev?adjusted=true&apiKey=%s",
		polygonQuoteProv.baseURL, symbol, polygonQuoteProv.apiKey)

	var body struct {
		Results []struct {
			Close float64 `json:"c"`
		} `json:"results"`
	}
	if err := polygonQuoteProv.getJSON(url, &body); err != nil || len(body.Results) == 0 || body.Results[0].Close <= 0 {
		if polygonQuoteProv.secondary != nil {
			logger.Debugf("polygon quote failed for %s (%v), trying secondary", symbol, err)
			return polygonQuoteProv.secondary.GetOptionQuote(underlying, strike, expiry, optType)
		}
		if err == nil {
			err = fmt.Errorf("no usable option price for %s", symbol)
		}
		return 0, err
	}
	return body.Results[0].Close, nil
}

func (polygonQuoteProv *polygonQuoteProvider) getJSON(url string, out any) error {
	resp, err := polygonQuoteProv.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("polygon status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
