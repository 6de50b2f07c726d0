package risk

import (
	"fmt"
	"math"

	"strategyLab/internal/ports"
)

// SizingModel selects how a position size is derived from capital and risk
// parameters.
type SizingModel string

const (
	// SizingFixed risks a fixed share of capital per trade: the amount at
	// risk divided by the stop-loss fraction.
	SizingFixed SizingModel = "fixed"
	// SizingVolatilityAdjusted scales the fixed size down as volatility
	// rises, with a floor multiplier of 0.2.
	SizingVolatilityAdjusted SizingModel = "volatility_adjusted"
	// SizingKellyCriterion applies half-Kelly under conservative defaults
	// (50% win rate, 2:1 reward to risk), clamped to zero or above.
	SizingKellyCriterion SizingModel = "kelly_criterion"
	// SizingOptimalF is a deliberately conservative stand-in: a flat 10%
	// of capital.
	SizingOptimalF SizingModel = "optimal_f"
)

// Conservative defaults for the Kelly model. Without a trade history to
// estimate from, assume a coin-flip win rate with a 2:1 payoff and bet half
// the resulting fraction.
const (
	kellyAssumedWinRate = 0.5
	kellyRewardToRisk   = 2.0
)

// SizingInput carries the capital and risk parameters shared by the sizing
// models. Volatility is a fractional figure (e.g. 0.25) consumed only by
// the volatility-adjusted model.
type SizingInput struct {
	Capital         float64
	RiskPerTradePct float64
	StopLossPct     float64
	Volatility      float64
}

// CalculatePositionSize returns the capital to commit under the selected
// model. No model returns a negative size; degenerate inputs (zero capital,
// zero stop distance) yield 0. An unknown model is a configuration error.
func CalculatePositionSize(model SizingModel, in SizingInput) (float64, error) {
	if in.Capital <= 0 {
		return 0, nil
	}

	switch model {
	case SizingFixed:
		return fixedSize(in), nil
	case SizingVolatilityAdjusted:
		multiplier := math.Max(0.2, 1-in.Volatility)
		return fixedSize(in) * multiplier, nil
	case SizingKellyCriterion:
		// f = (b*p - q) / b, halved.
		b := kellyRewardToRisk
		p := kellyAssumedWinRate
		fraction := (b*p - (1 - p)) / b / 2
		return in.Capital * math.Max(0, fraction), nil
	case SizingOptimalF:
		return in.Capital * 0.10, nil
	default:
		return 0, fmt.Errorf("%w: unknown sizing model %q", ports.ErrConfigurationError, model)
	}
}

func fixedSize(in SizingInput) float64 {
	if in.StopLossPct <= 0 || in.RiskPerTradePct <= 0 {
		return 0
	}
	riskAmount := in.Capital * in.RiskPerTradePct / 100
	return riskAmount / (in.StopLossPct / 100)
}

// TrailingStopPrice computes the stop level for a trailing stop. While the
// price has not exceeded the entry the stop sits at a fixed distance below
// the entry; once it has, the stop ratchets below the highest price seen.
// Monotonic tightening is the caller's responsibility: always pass the
// running highest price since entry.
func TrailingStopPrice(entryPrice, highestSinceEntry, trailingDistancePct float64) float64 {
	reference := entryPrice
	if highestSinceEntry > entryPrice {
		reference = highestSinceEntry
	}
	return reference * (1 - trailingDistancePct/100)
}
