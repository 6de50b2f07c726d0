package domain

import "time"

// ExitReason indicates why a simulated position was closed.
type ExitReason string

const (
	ExitReasonSignal        ExitReason = "signal"
	ExitReasonStopLoss      ExitReason = "stop_loss"
	ExitReasonTakeProfit    ExitReason = "take_profit"
	ExitReasonEndOfBacktest ExitReason = "end_of_backtest"
)

// ClosedTrade is the immutable record of a completed simulated position.
type ClosedTrade struct {
	Symbol     string     // Trading symbol
	Direction  Direction  // Position side
	EntryTime  time.Time  // Timestamp of the entry candle
	ExitTime   time.Time  // Timestamp of the exit candle
	EntryPrice float64    // Price at entry
	ExitPrice  float64    // Price at exit (stop/target price on SL/TP exits)
	Quantity   float64    // Position size in base units
	Profit     float64    // Realized profit in quote currency
	ProfitPct  float64    // Realized profit as a percentage of entry value
	ExitReason ExitReason // Why the position was closed
}
