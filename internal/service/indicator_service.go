package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"forex-signal-engine/internal/domain"
	"forex-signal-engine/internal/indicator"

	"go.opentelemetry.io/otel/trace"
)

const indicatorInterval = "15min"

type IndicatorFetcher interface {
	FetchIndicator(ctx context.Context, apiKey, name string, pairs []string, interval string) (map[string]float64, error)
}

type IndicatorStore interface {
	UpdateReading(ctx context.Context, reading domain.IndicatorReading) (bool, error)
}

type PriceReader interface {
	ListPrices(ctx context.Context) ([]domain.PriceSummary, error)
}

// IndicatorService runs the indicator update cycle: fetch the RSI, MACD and
// ATR batches in parallel, classify them, and overwrite the per-(pair,
// indicator) readings.
type IndicatorService struct {
	tracer  trace.Tracer
	fetcher IndicatorFetcher
	store   IndicatorStore
	prices  PriceReader
	config  RuntimeConfigSource
}

func NewIndicatorService(
	tracer trace.Tracer,
	fetcher IndicatorFetcher,
	store IndicatorStore,
	prices PriceReader,
	config RuntimeConfigSource,
) *IndicatorService {
	return &IndicatorService{
		tracer:  tracer,
		fetcher: fetcher,
		store:   store,
		prices:  prices,
		config:  config,
	}
}

// RunIndicatorUpdate executes one cycle. The three indicator fetches are
// independent reads issued concurrently; failure of one family skips only that
// family. Zero usable readings fails the cycle.
func (s *IndicatorService) RunIndicatorUpdate(ctx context.Context) (domain.IndicatorRunResult, error) {
	ctx, span := s.tracer.Start(ctx, "indicator-service.run-indicator-update")
	defer span.End()

	var result domain.IndicatorRunResult

	cfg, err := s.config.GetRuntimeConfig(ctx)
	if err != nil {
		return result, fmt.Errorf("load runtime config: %w", err)
	}
	if cfg.APIKey == "" {
		return result, fmt.Errorf("twelvedata API key not configured")
	}
	if len(cfg.SupportedPairs) == 0 {
		return result, fmt.Errorf("no supported pairs configured")
	}

	batches := s.fetchBatches(ctx, cfg)

	pairs := make([]string, 0, len(cfg.SupportedPairs))
	for _, pair := range cfg.SupportedPairs {
		pairs = append(pairs, strings.ToUpper(strings.TrimSpace(pair)))
	}

	priceMap := s.currentPrices(ctx, &result)
	readings := indicator.BuildReadings(pairs,
		batches[domain.IndicatorRSI], batches[domain.IndicatorMACD], batches[domain.IndicatorATR],
		priceMap)

	if len(readings) == 0 {
		return result, fmt.Errorf("no indicator data was successfully fetched")
	}
	result.Indicators = readings

	for _, reading := range readings {
		matched, err := s.store.UpdateReading(ctx, reading)
		if err != nil {
			log.Printf("indicator update error for %s %s: %v", reading.Pair, reading.IndicatorName, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", reading.Pair, reading.IndicatorName, err))
			continue
		}
		if !matched {
			log.Printf("no provisioned row for %s %s, reading dropped", reading.Pair, reading.IndicatorName)
			continue
		}
		result.IndicatorsUpdated++
	}

	if err := s.config.SetTimestamp(ctx, domain.ConfigKeyLastIndicatorUpdate, time.Now()); err != nil {
		log.Printf("last_indicator_update write error: %v", err)
		result.Errors = append(result.Errors, fmt.Sprintf("timestamp: %v", err))
	}

	return result, nil
}

// fetchBatches issues the three indicator fetches concurrently and joins them.
// A failed family yields a nil map.
func (s *IndicatorService) fetchBatches(ctx context.Context, cfg domain.RuntimeConfig) map[string]map[string]float64 {
	var mu sync.Mutex
	batches := make(map[string]map[string]float64, len(domain.IndicatorNames))

	var wg sync.WaitGroup
	for _, name := range domain.IndicatorNames {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			values, err := s.fetcher.FetchIndicator(ctx, cfg.APIKey, name, cfg.SupportedPairs, indicatorInterval)
			if err != nil {
				log.Printf("%s batch fetch error: %v", name, err)
				return
			}
			mu.Lock()
			batches[name] = values
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	return batches
}

func (s *IndicatorService) currentPrices(ctx context.Context, result *domain.IndicatorRunResult) map[string]float64 {
	summaries, err := s.prices.ListPrices(ctx)
	if err != nil {
		log.Printf("price read error, ATR readings will be skipped: %v", err)
		result.Errors = append(result.Errors, fmt.Sprintf("prices: %v", err))
		return nil
	}
	priceMap := make(map[string]float64, len(summaries))
	for _, p := range summaries {
		priceMap[strings.ToUpper(p.Pair)] = p.CurrentPrice
	}
	return priceMap
}
