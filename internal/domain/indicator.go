package domain

import "time"

const (
	IndicatorRSI  = "RSI"
	IndicatorMACD = "MACD"
	IndicatorATR  = "ATR"
)

// IndicatorNames lists the indicator families refreshed each cycle.
var IndicatorNames = []string{IndicatorRSI, IndicatorMACD, IndicatorATR}

// IndicatorReading is the current derived value for one (pair, indicator) cell.
// Each update overwrites the previous reading, no history is kept.
type IndicatorReading struct {
	Pair          string    `json:"pair"`
	IndicatorName string    `json:"indicator_name"`
	Value         string    `json:"value"`
	Status        string    `json:"status"`
	Color         string    `json:"color"`
	Timeframe     string    `json:"timeframe"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}
