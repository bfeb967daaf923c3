package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"forex-signal-engine/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func buySignal() domain.Signal {
	return domain.Signal{
		ID:               "sig-1",
		Pair:             "XAU/USD",
		Type:             domain.SignalBuy,
		EntryPrice:       2000,
		TakeProfitLevels: []float64{2010, 2020, 2030},
		StopLoss:         1990,
		Status:           domain.StatusActive,
		CurrentPrice:     2000,
	}
}

func TestEvaluateSignalPendingActivatesWithinTolerance(t *testing.T) {
	t.Parallel()

	signal := buySignal()
	signal.Status = domain.StatusPending

	upd, write := EvaluateSignal(signal, 2001.5)
	if !write || !upd.StatusChanged {
		t.Fatalf("expected activation writeback, got %+v write=%v", upd, write)
	}
	if upd.Status != domain.StatusActive {
		t.Fatalf("expected active, got %s", upd.Status)
	}
	if upd.TPHit || upd.SLHit {
		t.Fatalf("activation must not set hit flags: %+v", upd)
	}
}

func TestEvaluateSignalPendingOutsideToleranceStaysPending(t *testing.T) {
	t.Parallel()

	signal := buySignal()
	signal.Status = domain.StatusPending

	// 0.1% of 2000 is 2.0, so 2003 is outside the band.
	upd, write := EvaluateSignal(signal, 2003)
	if upd.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", upd.Status)
	}
	if upd.StatusChanged {
		t.Fatal("no transition expected")
	}
	// Price moved, so the refresh is still persisted.
	if !write {
		t.Fatal("price refresh must be persisted")
	}
}

func TestEvaluateSignalBuyTakeProfitFirstMatchWins(t *testing.T) {
	t.Parallel()

	signal := buySignal()
	signal.EntryPrice = 100
	signal.TakeProfitLevels = []float64{100, 105, 110}
	signal.StopLoss = 95
	signal.CurrentPrice = 100

	upd, write := EvaluateSignal(signal, 107)
	if !write || !upd.StatusChanged {
		t.Fatalf("expected closure, got %+v", upd)
	}
	if !upd.TPHit || upd.SLHit {
		t.Fatalf("expected tp_hit only, got %+v", upd)
	}
	if upd.Status != domain.StatusClosed {
		t.Fatalf("expected closed, got %s", upd.Status)
	}
	if upd.PnL != 700 {
		t.Fatalf("expected pnl (107-100)*100=700, got %f", upd.PnL)
	}
}

func TestEvaluateSignalBuyStopLoss(t *testing.T) {
	t.Parallel()

	signal := buySignal()
	upd, _ := EvaluateSignal(signal, 1985)
	if !upd.SLHit || upd.TPHit {
		t.Fatalf("expected sl_hit only, got %+v", upd)
	}
	if upd.Status != domain.StatusClosed {
		t.Fatalf("expected closed, got %s", upd.Status)
	}
	if upd.PnL != -1500 {
		t.Fatalf("expected negative pnl -1500, got %f", upd.PnL)
	}
}

func TestEvaluateSignalTakeProfitBeatsStopLoss(t *testing.T) {
	t.Parallel()

	// Degenerate signal where one tick satisfies both TP and SL.
	signal := buySignal()
	signal.TakeProfitLevels = []float64{1980}
	signal.StopLoss = 1990

	upd, _ := EvaluateSignal(signal, 1985)
	if !upd.TPHit {
		t.Fatalf("TP evaluated first must win the tie: %+v", upd)
	}
	if upd.SLHit {
		t.Fatalf("SL must be skipped once TP fired: %+v", upd)
	}
}

func TestEvaluateSignalSellSymmetric(t *testing.T) {
	t.Parallel()

	signal := domain.Signal{
		ID:               "sig-2",
		Pair:             "XAU/USD",
		Type:             domain.SignalSell,
		EntryPrice:       2000,
		TakeProfitLevels: []float64{1990, 1980},
		StopLoss:         2010,
		Status:           domain.StatusActive,
		CurrentPrice:     2000,
	}

	upd, _ := EvaluateSignal(signal, 1985)
	if !upd.TPHit || upd.Status != domain.StatusClosed {
		t.Fatalf("expected SELL TP closure, got %+v", upd)
	}
	if upd.PnL != 1500 {
		t.Fatalf("expected pnl (2000-1985)*100=1500, got %f", upd.PnL)
	}

	upd, _ = EvaluateSignal(signal, 2015)
	if !upd.SLHit || upd.Status != domain.StatusClosed {
		t.Fatalf("expected SELL SL closure, got %+v", upd)
	}
	if upd.PnL != -1500 {
		t.Fatalf("expected pnl (2000-2015)*100=-1500, got %f", upd.PnL)
	}
}

func TestEvaluateSignalClosedIsTerminal(t *testing.T) {
	t.Parallel()

	signal := buySignal()
	signal.Status = domain.StatusClosed
	signal.TPHit = true
	signal.CurrentPrice = 2025
	signal.PnL = 2500

	upd, write := EvaluateSignal(signal, 2100)
	if write {
		t.Fatalf("closed signal must never be written: %+v", upd)
	}
	if upd.Status != domain.StatusClosed || upd.SLHit {
		t.Fatalf("closed signal state must not change: %+v", upd)
	}
}

func TestEvaluateSignalIdempotentRerun(t *testing.T) {
	t.Parallel()

	signal := buySignal()
	upd, _ := EvaluateSignal(signal, 2015)
	if !upd.TPHit {
		t.Fatalf("expected first run to close, got %+v", upd)
	}

	// Apply the writeback and re-run with the same price.
	signal.Status = upd.Status
	signal.TPHit = upd.TPHit
	signal.SLHit = upd.SLHit
	signal.CurrentPrice = upd.CurrentPrice
	signal.PnL = upd.PnL

	again, write := EvaluateSignal(signal, 2015)
	if write {
		t.Fatalf("re-run with the same price must be a no-op, got %+v", again)
	}
}

func TestEvaluateSignalUnchangedPriceNoWrite(t *testing.T) {
	t.Parallel()

	signal := buySignal()
	_, write := EvaluateSignal(signal, 2000)
	if write {
		t.Fatal("same price and no transition should not persist")
	}
}

// --- RunSignalUpdate ---

type mockPriceFetcher struct {
	prices []domain.PriceSummary
	err    error
	calls  int
}

func (m *mockPriceFetcher) FetchPrices(ctx context.Context, apiKey string, pairs []string) ([]domain.PriceSummary, error) {
	m.calls++
	return m.prices, m.err
}

type mockSignalStore struct {
	signals   []domain.Signal
	listErr   error
	updateErr map[string]error
	updates   []domain.SignalUpdate
}

func (m *mockSignalStore) ListOpen(ctx context.Context) ([]domain.Signal, error) {
	return m.signals, m.listErr
}

func (m *mockSignalStore) UpdateLifecycle(ctx context.Context, upd domain.SignalUpdate) error {
	if err, ok := m.updateErr[upd.ID]; ok {
		return err
	}
	m.updates = append(m.updates, upd)
	return nil
}

type mockPriceStore struct {
	upserted  []domain.PriceSummary
	upsertErr error
}

func (m *mockPriceStore) UpsertPrices(ctx context.Context, prices []domain.PriceSummary) error {
	m.upserted = prices
	return m.upsertErr
}

type mockConfigSource struct {
	cfg        domain.RuntimeConfig
	cfgErr     error
	timestamps map[string]time.Time
}

func (m *mockConfigSource) GetRuntimeConfig(ctx context.Context) (domain.RuntimeConfig, error) {
	return m.cfg, m.cfgErr
}

func (m *mockConfigSource) SetTimestamp(ctx context.Context, key string, t time.Time) error {
	if m.timestamps == nil {
		m.timestamps = make(map[string]time.Time)
	}
	m.timestamps[key] = t
	return nil
}

type mockNotifier struct {
	closed []string
}

func (m *mockNotifier) NotifySignalClosed(signal domain.Signal, upd domain.SignalUpdate) {
	m.closed = append(m.closed, signal.ID)
}

func newTestSignalService(fetcher *mockPriceFetcher, signals *mockSignalStore, prices *mockPriceStore, cfg *mockConfigSource, notifier *mockNotifier) *SignalService {
	var n ClosureNotifier
	if notifier != nil {
		n = notifier
	}
	return NewSignalService(testTracer, fetcher, signals, prices, cfg, nil, n)
}

func goldenConfig() *mockConfigSource {
	return &mockConfigSource{cfg: domain.RuntimeConfig{
		APIKey:         "key",
		SupportedPairs: []string{"XAU/USD", "BTC/USD"},
	}}
}

func TestRunSignalUpdateMissingAPIKey(t *testing.T) {
	t.Parallel()

	svc := newTestSignalService(&mockPriceFetcher{}, &mockSignalStore{}, &mockPriceStore{}, &mockConfigSource{
		cfg: domain.RuntimeConfig{SupportedPairs: []string{"XAU/USD"}},
	}, nil)

	if _, err := svc.RunSignalUpdate(context.Background()); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestRunSignalUpdateNoPrices(t *testing.T) {
	t.Parallel()

	svc := newTestSignalService(&mockPriceFetcher{err: errors.New("network down")}, &mockSignalStore{}, &mockPriceStore{}, goldenConfig(), nil)

	if _, err := svc.RunSignalUpdate(context.Background()); err == nil {
		t.Fatal("expected error when no price data is received")
	}
}

func TestRunSignalUpdateHappyPath(t *testing.T) {
	t.Parallel()

	fetcher := &mockPriceFetcher{prices: []domain.PriceSummary{
		{Pair: "XAU/USD", CurrentPrice: 2015, OpenPrice: 2000},
		{Pair: "BTC/USD", CurrentPrice: 64000, OpenPrice: 63000},
	}}
	signals := &mockSignalStore{signals: []domain.Signal{
		buySignal(), // closes on TP at 2015
		{ID: "sig-3", Pair: "btc/usd", Type: domain.SignalBuy, EntryPrice: 63980,
			TakeProfitLevels: []float64{70000}, StopLoss: 60000,
			Status: domain.StatusPending, CurrentPrice: 63000},
	}}
	prices := &mockPriceStore{}
	cfg := goldenConfig()
	notifier := &mockNotifier{}

	svc := newTestSignalService(fetcher, signals, prices, cfg, notifier)

	result, err := svc.RunSignalUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PricesUpdated != 2 || len(prices.upserted) != 2 {
		t.Fatalf("expected 2 price rows, got %+v", result)
	}
	if result.SignalsEvaluated != 2 {
		t.Fatalf("expected 2 signals evaluated, got %d", result.SignalsEvaluated)
	}
	if result.Closed != 1 || result.Activated != 1 {
		t.Fatalf("expected 1 closed + 1 activated, got %+v", result)
	}
	if len(notifier.closed) != 1 || notifier.closed[0] != "sig-1" {
		t.Fatalf("expected closure notification for sig-1, got %v", notifier.closed)
	}
	if _, ok := cfg.timestamps[domain.ConfigKeyLastPriceUpdate]; !ok {
		t.Fatal("last_price_update timestamp not written")
	}
}

func TestRunSignalUpdatePersistFailureContinuesBatch(t *testing.T) {
	t.Parallel()

	first := buySignal()
	second := buySignal()
	second.ID = "sig-2"

	fetcher := &mockPriceFetcher{prices: []domain.PriceSummary{
		{Pair: "XAU/USD", CurrentPrice: 2015},
	}}
	signals := &mockSignalStore{
		signals:   []domain.Signal{first, second},
		updateErr: map[string]error{"sig-1": errors.New("row lock")},
	}

	svc := newTestSignalService(fetcher, signals, &mockPriceStore{}, goldenConfig(), nil)

	result, err := svc.RunSignalUpdate(context.Background())
	if err != nil {
		t.Fatalf("per-signal failure must not fail the run: %v", err)
	}
	if len(signals.updates) != 1 || signals.updates[0].ID != "sig-2" {
		t.Fatalf("expected sig-2 to still be written, got %+v", signals.updates)
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected the failure to be reported in result errors")
	}
}

func TestRunSignalUpdateUnmatchedPairUntouched(t *testing.T) {
	t.Parallel()

	orphan := buySignal()
	orphan.Pair = "EUR/USD"

	fetcher := &mockPriceFetcher{prices: []domain.PriceSummary{
		{Pair: "XAU/USD", CurrentPrice: 2015},
	}}
	signals := &mockSignalStore{signals: []domain.Signal{orphan}}

	svc := newTestSignalService(fetcher, signals, &mockPriceStore{}, goldenConfig(), nil)

	result, err := svc.RunSignalUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SignalsEvaluated != 0 || len(signals.updates) != 0 {
		t.Fatalf("signal without a price tick must be left untouched: %+v", result)
	}
}
