package domain

import "time"

type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

type SignalStatus string

const (
	StatusPending SignalStatus = "pending"
	StatusActive  SignalStatus = "active"
	StatusClosed  SignalStatus = "closed"
)

// Signal is a trading recommendation tracked through the pending → active → closed
// lifecycle. Once closed it is terminal and never mutated again.
type Signal struct {
	ID               string       `json:"id"`
	Pair             string       `json:"pair"`
	Type             SignalType   `json:"type"`
	EntryPrice       float64      `json:"entry_price"`
	TakeProfitLevels []float64    `json:"take_profit_levels"`
	StopLoss         float64      `json:"stop_loss"`
	Status           SignalStatus `json:"status"`
	TPHit            bool         `json:"tp_hit"`
	SLHit            bool         `json:"sl_hit"`
	CurrentPrice     float64      `json:"current_price"`
	PnL              float64      `json:"pnl"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// SignalUpdate is the writeback produced by one evaluator pass over one signal.
type SignalUpdate struct {
	ID            string
	CurrentPrice  float64
	Status        SignalStatus
	TPHit         bool
	SLHit         bool
	PnL           float64
	StatusChanged bool
}

// EntryTolerance is the band around entry_price within which a pending signal activates.
const EntryTolerance = 0.001 // 0.1%
