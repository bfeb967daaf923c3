package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"forex-signal-engine/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const twelveDataBaseURL = "https://api.twelvedata.com"

// TwelveDataClient fetches time series and technical indicator batches from TwelveData.
type TwelveDataClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewTwelveDataClient creates a client rate limited to the free tier's
// 8 credits per minute (one token every 7.5 seconds).
func NewTwelveDataClient(tracer trace.Tracer, baseURL string) *TwelveDataClient {
	if baseURL == "" {
		baseURL = twelveDataBaseURL
	}
	return &TwelveDataClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// timeSeriesBar is one OHLCV bar as TwelveData returns it: all fields are strings.
type timeSeriesBar struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

type timeSeriesResult struct {
	Meta *struct {
		Symbol string `json:"symbol"`
	} `json:"meta"`
	Values  []timeSeriesBar `json:"values"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
}

// FetchPrices retrieves the latest 1min bar for every pair and builds one
// PriceSummary per pair for which the provider returned usable data.
//
// TwelveData answers in two shapes: a single flat object when one symbol was
// requested, and a symbol-keyed map when several were, each entry independently
// able to carry an error status. Per-symbol errors skip only that pair.
func (c *TwelveDataClient) FetchPrices(ctx context.Context, apiKey string, pairs []string) ([]domain.PriceSummary, error) {
	_, span := c.tracer.Start(ctx, "twelvedata.fetch-prices")
	defer span.End()

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs configured")
	}

	reqURL := fmt.Sprintf("%s/time_series?apikey=%s&interval=1min&symbol=%s",
		c.baseURL, apiKey, url.QueryEscape(strings.Join(pairs, ",")))

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	// Single-symbol flat shape first.
	var single timeSeriesResult
	if err := json.Unmarshal(body, &single); err == nil && single.Meta != nil && len(single.Values) > 0 {
		pair := single.Meta.Symbol
		if pair == "" {
			pair = pairs[0]
		}
		summary, ok := summaryFromBar(pair, single.Values[0])
		if !ok {
			return nil, nil
		}
		return []domain.PriceSummary{summary}, nil
	}

	// Otherwise a symbol-keyed map, or a top-level error object.
	var multi map[string]json.RawMessage
	if err := json.Unmarshal(body, &multi); err != nil {
		return nil, fmt.Errorf("parse prices: %w", err)
	}
	if status, ok := multi["status"]; ok && string(status) == `"error"` {
		var topErr timeSeriesResult
		_ = json.Unmarshal(body, &topErr)
		return nil, fmt.Errorf("twelvedata error: %s", topErr.Message)
	}

	var results []domain.PriceSummary
	for symbol, raw := range multi {
		var res timeSeriesResult
		if err := json.Unmarshal(raw, &res); err != nil {
			log.Printf("malformed result for %s: %v", symbol, err)
			continue
		}
		if res.Status == "error" {
			log.Printf("twelvedata error for %s: %s", symbol, res.Message)
			continue
		}
		if len(res.Values) == 0 {
			log.Printf("no data returned for %s", symbol)
			continue
		}
		if summary, ok := summaryFromBar(symbol, res.Values[0]); ok {
			results = append(results, summary)
		}
	}
	return results, nil
}

// FetchIndicator retrieves the latest value of one indicator family (rsi, macd,
// atr) for every pair. The returned map is keyed by upper-cased pair symbol;
// pairs the provider errored on are absent.
func (c *TwelveDataClient) FetchIndicator(ctx context.Context, apiKey, name string, pairs []string, interval string) (map[string]float64, error) {
	_, span := c.tracer.Start(ctx, "twelvedata.fetch-"+strings.ToLower(name))
	defer span.End()

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs configured")
	}
	field := strings.ToLower(name)

	reqURL := fmt.Sprintf("%s/%s?apikey=%s&interval=%s&symbol=%s",
		c.baseURL, field, apiKey, interval, url.QueryEscape(strings.Join(pairs, ",")))

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", field, err)
	}

	values := make(map[string]float64)

	var single indicatorResult
	if err := json.Unmarshal(body, &single); err == nil && single.Meta != nil && len(single.Values) > 0 {
		pair := single.Meta.Symbol
		if pair == "" {
			pair = pairs[0]
		}
		if v, ok := latestIndicatorValue(single.Values, field); ok {
			values[strings.ToUpper(pair)] = v
		}
		return values, nil
	}

	var multi map[string]json.RawMessage
	if err := json.Unmarshal(body, &multi); err != nil {
		return nil, fmt.Errorf("parse %s: %w", field, err)
	}
	if status, ok := multi["status"]; ok && string(status) == `"error"` {
		var topErr indicatorResult
		_ = json.Unmarshal(body, &topErr)
		return nil, fmt.Errorf("twelvedata error: %s", topErr.Message)
	}

	for symbol, raw := range multi {
		var res indicatorResult
		if err := json.Unmarshal(raw, &res); err != nil {
			log.Printf("malformed %s result for %s: %v", field, symbol, err)
			continue
		}
		if res.Status == "error" {
			log.Printf("twelvedata %s error for %s: %s", field, symbol, res.Message)
			continue
		}
		if v, ok := latestIndicatorValue(res.Values, field); ok {
			values[strings.ToUpper(symbol)] = v
		}
	}
	return values, nil
}

type indicatorResult struct {
	Meta *struct {
		Symbol string `json:"symbol"`
	} `json:"meta"`
	Values  []map[string]string `json:"values"`
	Status  string              `json:"status"`
	Message string              `json:"message"`
}

func latestIndicatorValue(values []map[string]string, field string) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	raw, ok := values[0][field]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func summaryFromBar(pair string, bar timeSeriesBar) (domain.PriceSummary, bool) {
	open, errOpen := strconv.ParseFloat(bar.Open, 64)
	current, errClose := strconv.ParseFloat(bar.Close, 64)
	high, errHigh := strconv.ParseFloat(bar.High, 64)
	low, errLow := strconv.ParseFloat(bar.Low, 64)
	if errOpen != nil || errClose != nil || errHigh != nil || errLow != nil {
		log.Printf("unparseable bar for %s: %+v", pair, bar)
		return domain.PriceSummary{}, false
	}

	volume := bar.Volume
	if volume == "" {
		volume = "0"
	}

	summary := domain.PriceSummary{
		Pair:         pair,
		CurrentPrice: current,
		HighPrice:    high,
		LowPrice:     low,
		OpenPrice:    open,
		Volume:       volume,
		ChangeAmount: current - open,
	}
	if open != 0 {
		summary.ChangePercent = (current - open) / open * 100
	}
	return summary, true
}

func (c *TwelveDataClient) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("twelvedata API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
