package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"forex-signal-engine/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type PriceFetcher interface {
	FetchPrices(ctx context.Context, apiKey string, pairs []string) ([]domain.PriceSummary, error)
}

type SignalStore interface {
	ListOpen(ctx context.Context) ([]domain.Signal, error)
	UpdateLifecycle(ctx context.Context, upd domain.SignalUpdate) error
}

type PriceStore interface {
	UpsertPrices(ctx context.Context, prices []domain.PriceSummary) error
}

type RuntimeConfigSource interface {
	GetRuntimeConfig(ctx context.Context) (domain.RuntimeConfig, error)
	SetTimestamp(ctx context.Context, key string, t time.Time) error
}

type SnapshotCache interface {
	SetPrice(ctx context.Context, summary domain.PriceSummary) error
}

// ClosureNotifier is told about every signal the evaluator closes.
type ClosureNotifier interface {
	NotifySignalClosed(signal domain.Signal, upd domain.SignalUpdate)
}

// SignalService runs the price-and-signal update cycle: fetch quotes, refresh
// the snapshot tables, and walk every open signal through the lifecycle state
// machine.
type SignalService struct {
	tracer   trace.Tracer
	fetcher  PriceFetcher
	signals  SignalStore
	prices   PriceStore
	config   RuntimeConfigSource
	cache    SnapshotCache
	notifier ClosureNotifier
}

func NewSignalService(
	tracer trace.Tracer,
	fetcher PriceFetcher,
	signals SignalStore,
	prices PriceStore,
	config RuntimeConfigSource,
	cache SnapshotCache,
	notifier ClosureNotifier,
) *SignalService {
	return &SignalService{
		tracer:   tracer,
		fetcher:  fetcher,
		signals:  signals,
		prices:   prices,
		config:   config,
		cache:    cache,
		notifier: notifier,
	}
}

// EvaluateSignal applies one price tick to one signal and returns the
// writeback, plus whether anything needs persisting at all.
//
// Order per pass: activation first (pending only, 0.1% band around entry),
// then take-profit levels in stored order (first match wins), then stop-loss.
// Take-profit and stop-loss are not gated on the signal being active, and
// take-profit wins when the same tick satisfies both. A closed signal is
// terminal and never re-evaluated.
func EvaluateSignal(signal domain.Signal, currentPrice float64) (domain.SignalUpdate, bool) {
	upd := domain.SignalUpdate{
		ID:           signal.ID,
		CurrentPrice: currentPrice,
		Status:       signal.Status,
		TPHit:        signal.TPHit,
		SLHit:        signal.SLHit,
		PnL:          signal.PnL,
	}

	if signal.Status == domain.StatusClosed {
		return upd, false
	}

	if signal.Status == domain.StatusPending {
		tolerance := signal.EntryPrice * domain.EntryTolerance
		if math.Abs(currentPrice-signal.EntryPrice) <= tolerance {
			upd.Status = domain.StatusActive
			upd.StatusChanged = true
		}
	}

	switch signal.Type {
	case domain.SignalBuy:
		for _, tp := range signal.TakeProfitLevels {
			if currentPrice >= tp && !upd.TPHit {
				upd.TPHit = true
				upd.Status = domain.StatusClosed
				upd.PnL = (currentPrice - signal.EntryPrice) * 100
				upd.StatusChanged = true
				break
			}
		}
		if currentPrice <= signal.StopLoss && !upd.SLHit && !upd.TPHit {
			upd.SLHit = true
			upd.Status = domain.StatusClosed
			upd.PnL = (currentPrice - signal.EntryPrice) * 100
			upd.StatusChanged = true
		}

	case domain.SignalSell:
		for _, tp := range signal.TakeProfitLevels {
			if currentPrice <= tp && !upd.TPHit {
				upd.TPHit = true
				upd.Status = domain.StatusClosed
				upd.PnL = (signal.EntryPrice - currentPrice) * 100
				upd.StatusChanged = true
				break
			}
		}
		if currentPrice >= signal.StopLoss && !upd.SLHit && !upd.TPHit {
			upd.SLHit = true
			upd.Status = domain.StatusClosed
			upd.PnL = (signal.EntryPrice - currentPrice) * 100
			upd.StatusChanged = true
		}
	}

	return upd, upd.StatusChanged || currentPrice != signal.CurrentPrice
}

// RunSignalUpdate executes one full cycle. A missing API key or an empty fetch
// fails the cycle; everything downstream is partial-failure tolerant and
// collects errors into the result instead of aborting.
func (s *SignalService) RunSignalUpdate(ctx context.Context) (domain.SignalRunResult, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.run-signal-update")
	defer span.End()

	var result domain.SignalRunResult

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

	prices, err := s.fetcher.FetchPrices(ctx, cfg.APIKey, cfg.SupportedPairs)
	if err != nil {
		log.Printf("price fetch error: %v", err)
	}
	if len(prices) == 0 {
		return result, fmt.Errorf("no price data received")
	}

	result.PricesUpdated = len(prices)
	result.PriceData = prices

	if err := s.prices.UpsertPrices(ctx, prices); err != nil {
		log.Printf("price upsert error: %v", err)
		result.Errors = append(result.Errors, fmt.Sprintf("price upsert: %v", err))
	}

	if s.cache != nil {
		for _, p := range prices {
			if err := s.cache.SetPrice(ctx, p); err != nil {
				log.Printf("price cache write error for %s: %v", p.Pair, err)
			}
		}
	}

	s.evaluateOpenSignals(ctx, prices, &result)

	if err := s.config.SetTimestamp(ctx, domain.ConfigKeyLastPriceUpdate, time.Now()); err != nil {
		log.Printf("last_price_update write error: %v", err)
		result.Errors = append(result.Errors, fmt.Sprintf("timestamp: %v", err))
	}

	return result, nil
}

func (s *SignalService) evaluateOpenSignals(ctx context.Context, prices []domain.PriceSummary, result *domain.SignalRunResult) {
	signals, err := s.signals.ListOpen(ctx)
	if err != nil {
		log.Printf("list open signals error: %v", err)
		result.Errors = append(result.Errors, fmt.Sprintf("list signals: %v", err))
		return
	}
	if len(signals) == 0 {
		log.Println("No open signals to evaluate")
		return
	}

	byPair := make(map[string]domain.PriceSummary, len(prices))
	for _, p := range prices {
		byPair[strings.ToUpper(p.Pair)] = p
	}

	for _, signal := range signals {
		price, ok := byPair[strings.ToUpper(signal.Pair)]
		if !ok {
			log.Printf("no price data for signal %s (%s)", signal.ID, signal.Pair)
			continue
		}

		upd, needsWrite := EvaluateSignal(signal, price.CurrentPrice)
		result.SignalsEvaluated++
		if !needsWrite {
			continue
		}

		if err := s.signals.UpdateLifecycle(ctx, upd); err != nil {
			log.Printf("signal %s update error: %v", signal.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("signal %s: %v", signal.ID, err))
			continue
		}

		if !upd.StatusChanged {
			continue
		}
		log.Printf("signal %s: %s -> %s at %.5f", signal.ID, signal.Status, upd.Status, price.CurrentPrice)
		switch upd.Status {
		case domain.StatusActive:
			result.Activated++
		case domain.StatusClosed:
			result.Closed++
			if s.notifier != nil {
				s.notifier.NotifySignalClosed(signal, upd)
			}
		}
	}
}
