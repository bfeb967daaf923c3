package service

import (
	"context"
	"fmt"
	"log"

	"forex-signal-engine/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	ActionSignals    = "signals"
	ActionIndicators = "indicators"
	ActionBoth       = "both"
)

type SignalRunner interface {
	RunSignalUpdate(ctx context.Context) (domain.SignalRunResult, error)
}

type IndicatorRunner interface {
	RunIndicatorUpdate(ctx context.Context) (domain.IndicatorRunResult, error)
}

// TriggerService fans a manual trigger out to the signal and indicator runs.
// Steps execute in process and in sequence; one step failing does not stop the
// next, it only degrades the aggregate result.
type TriggerService struct {
	tracer     trace.Tracer
	signals    SignalRunner
	indicators IndicatorRunner
}

func NewTriggerService(tracer trace.Tracer, signals SignalRunner, indicators IndicatorRunner) *TriggerService {
	return &TriggerService{tracer: tracer, signals: signals, indicators: indicators}
}

func (s *TriggerService) Run(ctx context.Context, action string) (domain.TriggerResult, error) {
	ctx, span := s.tracer.Start(ctx, "trigger-service.run")
	defer span.End()

	if action == "" {
		action = ActionBoth
	}
	if action != ActionSignals && action != ActionIndicators && action != ActionBoth {
		return domain.TriggerResult{}, fmt.Errorf("unknown action: %s", action)
	}

	result := domain.TriggerResult{Action: action}

	if action == ActionSignals || action == ActionBoth {
		step := domain.TriggerStepResult{Type: ActionSignals}
		data, err := s.signals.RunSignalUpdate(ctx)
		if err != nil {
			log.Printf("signals step failed: %v", err)
			step.Error = err.Error()
		} else {
			step.Success = true
			step.Data = data
		}
		result.Results = append(result.Results, step)
	}

	if action == ActionIndicators || action == ActionBoth {
		step := domain.TriggerStepResult{Type: ActionIndicators}
		data, err := s.indicators.RunIndicatorUpdate(ctx)
		if err != nil {
			log.Printf("indicators step failed: %v", err)
			step.Error = err.Error()
		} else {
			step.Success = true
			step.Data = data
		}
		result.Results = append(result.Results, step)
	}

	return result, nil
}
