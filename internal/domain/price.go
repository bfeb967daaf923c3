package domain

import "time"

// PriceSummary is the latest OHLCV snapshot for a pair, overwritten every fetch cycle.
type PriceSummary struct {
	Pair          string    `json:"pair"`
	CurrentPrice  float64   `json:"current_price"`
	HighPrice     float64   `json:"high_price"`
	LowPrice      float64   `json:"low_price"`
	OpenPrice     float64   `json:"open_price"`
	Volume        string    `json:"volume"`
	ChangeAmount  float64   `json:"change_amount"`
	ChangePercent float64   `json:"change_percent"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}
