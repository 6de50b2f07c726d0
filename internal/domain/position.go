package domain

import "time"

// Direction is the side of a simulated position.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// SimulatedPosition is a position held inside a backtest run. It exists only
// while open; at most one may be open per run. Stop-loss and take-profit
// prices are computed once at entry and stay fixed for the life of the
// position.
type SimulatedPosition struct {
	Symbol          string    // Trading symbol
	Direction       Direction // Position side (the engine opens longs only)
	EntryTime       time.Time // Timestamp of the entry candle
	EntryPrice      float64   // Close price of the entry candle
	Quantity        float64   // Position size in base units
	StopLossPrice   float64   // Stop level (0 when not configured)
	TakeProfitPrice float64   // Target level (0 when not configured)
}

// TierID identifies a scale-out tier. Events record the tier that produced
// them so a tier can fire at most once per position regardless of how its
// display reason is worded.
type TierID string

// ScaleOutEvent records one partial exit from a live position.
type ScaleOutEvent struct {
	Tier               TierID    // Tier that triggered this exit
	Time               time.Time // When the exit was applied
	Price              float64   // Price at which tokens were sold
	TokensSold         float64   // Tokens sold in this event
	AmountRecovered    float64   // TokensSold * Price
	Reason             string    // Human-readable tier description
	PercentOfRemaining float64   // Share of the then-remaining tokens sold
}

// LivePosition is a position tracked outside of backtesting. It is created
// externally on trade execution and mutated only through the risk module on
// price updates; full closure is an external decision.
type LivePosition struct {
	ContractID        string          // Token contract or instrument identifier
	EntryPrice        float64         // Average entry price
	InitialInvestment float64         // Capital originally committed
	CurrentPrice      float64         // Last observed price
	CurrentValue      float64         // Remaining tokens valued at CurrentPrice
	ScaleOutHistory   []ScaleOutEvent // Partial exits, in application order
	SecuredInitial    bool            // Set once the secure-initial tier fires
	PNL               float64         // recovered + remaining value - initial investment
	ROI               float64         // PNL / InitialInvestment * 100
}

// OriginalTokens is the token quantity bought at entry.
func (p *LivePosition) OriginalTokens() float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	return p.InitialInvestment / p.EntryPrice
}

// TokensSold sums the tokens disposed across all scale-out events.
func (p *LivePosition) TokensSold() float64 {
	var sold float64
	for _, ev := range p.ScaleOutHistory {
		sold += ev.TokensSold
	}
	return sold
}

// RemainingTokens is the quantity still held after all partial exits.
func (p *LivePosition) RemainingTokens() float64 {
	return p.OriginalTokens() - p.TokensSold()
}

// RecoveredValue sums the proceeds of all partial exits.
func (p *LivePosition) RecoveredValue() float64 {
	var recovered float64
	for _, ev := range p.ScaleOutHistory {
		recovered += ev.AmountRecovered
	}
	return recovered
}

// HasScaledOut reports whether the given tier already fired for this position.
func (p *LivePosition) HasScaledOut(tier TierID) bool {
	for _, ev := range p.ScaleOutHistory {
		if ev.Tier == tier {
			return true
		}
	}
	return false
}
