package handler

import (
	"context"

	"forex-signal-engine/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type SignalRunner interface {
	RunSignalUpdate(ctx context.Context) (domain.SignalRunResult, error)
}

type IndicatorRunner interface {
	RunIndicatorUpdate(ctx context.Context) (domain.IndicatorRunResult, error)
}

type TriggerRunner interface {
	Run(ctx context.Context, action string) (domain.TriggerResult, error)
}

type SignalLister interface {
	List(ctx context.Context, status string, limit int) ([]domain.Signal, error)
}

type PriceLister interface {
	ListPrices(ctx context.Context) ([]domain.PriceSummary, error)
	GetPrice(ctx context.Context, pair string) (*domain.PriceSummary, error)
}

type ReadingLister interface {
	ListReadings(ctx context.Context) ([]domain.IndicatorReading, error)
}

// PriceSnapshotCache serves single-pair price reads cache-first, with the
// repository as the fallback on miss.
type PriceSnapshotCache interface {
	GetPrice(ctx context.Context, pair string) (*domain.PriceSummary, error)
	SetPrice(ctx context.Context, summary domain.PriceSummary) error
}

type Handler struct {
	tracer        trace.Tracer
	triggerSecret string

	signals    SignalRunner
	indicators IndicatorRunner
	trigger    TriggerRunner

	signalReader SignalLister
	priceReader  PriceLister
	priceCache   PriceSnapshotCache
	readingList  ReadingLister
}

func New(
	tracer trace.Tracer,
	triggerSecret string,
	signals SignalRunner,
	indicators IndicatorRunner,
	trigger TriggerRunner,
	signalReader SignalLister,
	priceReader PriceLister,
	priceCache PriceSnapshotCache,
	readingList ReadingLister,
) *Handler {
	return &Handler{
		tracer:        tracer,
		triggerSecret: triggerSecret,
		signals:       signals,
		indicators:    indicators,
		trigger:       trigger,
		signalReader:  signalReader,
		priceReader:   priceReader,
		priceCache:    priceCache,
		readingList:   readingList,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/update-signals", TriggerKeyAuth(h.triggerSecret), h.UpdateSignals)
	r.POST("/update-indicators", h.UpdateIndicators)
	r.POST("/manual-trigger", h.ManualTrigger)

	r.GET("/api/prices", h.GetAllPrices)
	r.GET("/api/price", h.GetPrice)
	r.GET("/api/signals", h.GetSignals)
	r.GET("/api/indicators", h.GetIndicators)
}
