package job

import (
	"context"
	"log"
	"time"

	"forex-signal-engine/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const indicatorPollInterval = 15 * time.Minute

// TriggerJob runs background goroutines that periodically refresh prices,
// evaluate open signals, and update technical indicators.
type TriggerJob struct {
	tracer       trace.Tracer
	signals      SignalUpdater
	indicators   IndicatorUpdater
	pollInterval time.Duration
}

type SignalUpdater interface {
	RunSignalUpdate(ctx context.Context) (domain.SignalRunResult, error)
}

type IndicatorUpdater interface {
	RunIndicatorUpdate(ctx context.Context) (domain.IndicatorRunResult, error)
}

func NewTriggerJob(tracer trace.Tracer, signals SignalUpdater, indicators IndicatorUpdater, pollIntervalSecs int) *TriggerJob {
	return &TriggerJob{
		tracer:       tracer,
		signals:      signals,
		indicators:   indicators,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start launches background polling goroutines. Blocks until ctx is cancelled.
func (j *TriggerJob) Start(ctx context.Context) {
	log.Println("Trigger job starting...")

	// Tier 1: price refresh and signal evaluation every pollInterval (default 60s)
	go j.pollLoop(ctx, "update-signals", j.pollInterval, 0, j.runSignals)

	// Tier 2: indicators on the 15-minute bar cadence, staggered so the
	// first indicator call does not collide with the first price call
	go j.pollLoop(ctx, "update-indicators", indicatorPollInterval, 10*time.Second, j.runIndicators)

	<-ctx.Done()
	log.Println("Trigger job stopped")
}

func (j *TriggerJob) pollLoop(ctx context.Context, name string, interval, delay time.Duration, fn func(context.Context) error) {
	if delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("job %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("job %s error: %v", name, err)
			}
		}
	}
}

func (j *TriggerJob) runSignals(ctx context.Context) error {
	ctx, span := j.tracer.Start(ctx, "trigger-job.update-signals")
	defer span.End()

	result, err := j.signals.RunSignalUpdate(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	log.Printf("signal update: %d prices, %d signals evaluated, %d activated, %d closed",
		result.PricesUpdated, result.SignalsEvaluated, result.Activated, result.Closed)
	return nil
}

func (j *TriggerJob) runIndicators(ctx context.Context) error {
	ctx, span := j.tracer.Start(ctx, "trigger-job.update-indicators")
	defer span.End()

	result, err := j.indicators.RunIndicatorUpdate(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	log.Printf("indicator update: %d readings written", result.IndicatorsUpdated)
	return nil
}
