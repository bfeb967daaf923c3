package domain

// SignalRunResult summarizes one price-and-signal update cycle.
type SignalRunResult struct {
	PricesUpdated    int            `json:"prices_updated"`
	SignalsEvaluated int            `json:"signals_evaluated"`
	Activated        int            `json:"activated"`
	Closed           int            `json:"closed"`
	PriceData        []PriceSummary `json:"price_data"`
	Errors           []string       `json:"errors,omitempty"`
}

// IndicatorRunResult summarizes one indicator update cycle.
type IndicatorRunResult struct {
	IndicatorsUpdated int                `json:"indicators_updated"`
	Indicators        []IndicatorReading `json:"indicators"`
	Errors            []string           `json:"errors,omitempty"`
}

// TriggerStepResult is one step of a manual trigger fan-out.
type TriggerStepResult struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TriggerResult aggregates the steps run for one manual-trigger invocation.
type TriggerResult struct {
	Action  string
	Results []TriggerStepResult
}

// AllSucceeded reports whether every executed step completed without error.
func (r TriggerResult) AllSucceeded() bool {
	for _, step := range r.Results {
		if !step.Success {
			return false
		}
	}
	return true
}
