package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"forex-signal-engine/internal/domain"
)

type mockIndicatorFetcher struct {
	mu      sync.Mutex
	batches map[string]map[string]float64
	errs    map[string]error
	fetched []string
}

func (m *mockIndicatorFetcher) FetchIndicator(ctx context.Context, apiKey, name string, pairs []string, interval string) (map[string]float64, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, name)
	m.mu.Unlock()
	if err, ok := m.errs[name]; ok {
		return nil, err
	}
	return m.batches[name], nil
}

type mockIndicatorStore struct {
	updated   []domain.IndicatorReading
	unmatched map[string]bool
	err       error
}

func (m *mockIndicatorStore) UpdateReading(ctx context.Context, reading domain.IndicatorReading) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.unmatched[reading.Pair+"/"+reading.IndicatorName] {
		return false, nil
	}
	m.updated = append(m.updated, reading)
	return true, nil
}

type mockPriceReader struct {
	prices []domain.PriceSummary
	err    error
}

func (m *mockPriceReader) ListPrices(ctx context.Context) ([]domain.PriceSummary, error) {
	return m.prices, m.err
}

func TestRunIndicatorUpdateHappyPath(t *testing.T) {
	t.Parallel()

	fetcher := &mockIndicatorFetcher{batches: map[string]map[string]float64{
		domain.IndicatorRSI:  {"XAU/USD": 72.3},
		domain.IndicatorMACD: {"XAU/USD": 0.62},
		domain.IndicatorATR:  {"XAU/USD": 12.5},
	}}
	store := &mockIndicatorStore{}
	prices := &mockPriceReader{prices: []domain.PriceSummary{{Pair: "XAU/USD", CurrentPrice: 2000}}}
	cfg := goldenConfig()

	svc := NewIndicatorService(testTracer, fetcher, store, prices, cfg)

	result, err := svc.RunIndicatorUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IndicatorsUpdated != 3 || len(store.updated) != 3 {
		t.Fatalf("expected 3 readings written, got %+v", result)
	}
	if len(fetcher.fetched) != 3 {
		t.Fatalf("expected all 3 families fetched, got %v", fetcher.fetched)
	}
	if _, ok := cfg.timestamps[domain.ConfigKeyLastIndicatorUpdate]; !ok {
		t.Fatal("last_indicator_update timestamp not written")
	}
}

func TestRunIndicatorUpdateOneFamilyFailing(t *testing.T) {
	t.Parallel()

	fetcher := &mockIndicatorFetcher{
		batches: map[string]map[string]float64{
			domain.IndicatorRSI:  {"XAU/USD": 55},
			domain.IndicatorMACD: {"XAU/USD": 0.1},
		},
		errs: map[string]error{domain.IndicatorATR: errors.New("batch failed")},
	}
	store := &mockIndicatorStore{}
	svc := NewIndicatorService(testTracer, fetcher, store, &mockPriceReader{}, goldenConfig())

	result, err := svc.RunIndicatorUpdate(context.Background())
	if err != nil {
		t.Fatalf("one failed family must not fail the run: %v", err)
	}
	if result.IndicatorsUpdated != 2 {
		t.Fatalf("expected RSI and MACD written, got %+v", result)
	}
}

func TestRunIndicatorUpdateATRSkippedWithoutPrice(t *testing.T) {
	t.Parallel()

	fetcher := &mockIndicatorFetcher{batches: map[string]map[string]float64{
		domain.IndicatorATR: {"XAU/USD": 12.5, "BTC/USD": 900},
	}}
	store := &mockIndicatorStore{}
	prices := &mockPriceReader{prices: []domain.PriceSummary{{Pair: "XAU/USD", CurrentPrice: 2000}}}

	svc := NewIndicatorService(testTracer, fetcher, store, prices, goldenConfig())

	result, err := svc.RunIndicatorUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IndicatorsUpdated != 1 || store.updated[0].Pair != "XAU/USD" {
		t.Fatalf("expected only the priced pair's ATR, got %+v", store.updated)
	}
}

func TestRunIndicatorUpdateNoData(t *testing.T) {
	t.Parallel()

	fetcher := &mockIndicatorFetcher{errs: map[string]error{
		domain.IndicatorRSI:  errors.New("down"),
		domain.IndicatorMACD: errors.New("down"),
		domain.IndicatorATR:  errors.New("down"),
	}}
	svc := NewIndicatorService(testTracer, fetcher, &mockIndicatorStore{}, &mockPriceReader{}, goldenConfig())

	if _, err := svc.RunIndicatorUpdate(context.Background()); err == nil {
		t.Fatal("expected error when no indicator data was fetched")
	}
}

func TestRunIndicatorUpdateUnmatchedRowDropped(t *testing.T) {
	t.Parallel()

	fetcher := &mockIndicatorFetcher{batches: map[string]map[string]float64{
		domain.IndicatorRSI: {"XAU/USD": 55, "BTC/USD": 60},
	}}
	store := &mockIndicatorStore{unmatched: map[string]bool{"BTC/USD/RSI": true}}

	svc := NewIndicatorService(testTracer, fetcher, store, &mockPriceReader{}, goldenConfig())

	result, err := svc.RunIndicatorUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IndicatorsUpdated != 1 {
		t.Fatalf("unseeded row must be dropped silently, got %+v", result)
	}
}

func TestRunIndicatorUpdateMissingAPIKey(t *testing.T) {
	t.Parallel()

	svc := NewIndicatorService(testTracer, &mockIndicatorFetcher{}, &mockIndicatorStore{}, &mockPriceReader{}, &mockConfigSource{})
	if _, err := svc.RunIndicatorUpdate(context.Background()); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
