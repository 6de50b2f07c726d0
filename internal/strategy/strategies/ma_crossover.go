package strategies

import (
	"context"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"
	"strategyLab/internal/strategy/indicators"
)

const maCrossoverConfidence = 80

// MACrossover emits a buy when the fast SMA crosses above the slow SMA
// between the previous and current candle, and a sell on the downward
// cross. Confidence is fixed at 80.
type MACrossover struct {
	logger ports.Logger
}

// NewMACrossover creates the moving-average crossover strategy.
func NewMACrossover(logger ports.Logger) *MACrossover {
	return &MACrossover{logger: logger}
}

func (s *MACrossover) Name() string { return "ma_crossover" }

func (s *MACrossover) Description() string {
	return "Buy on fast/slow SMA upward cross, sell on downward cross"
}

func (s *MACrossover) DefaultParams() Params {
	return Params{
		"fastPeriod": 10,
		"slowPeriod": 30,
	}
}

// MinLookback requires one full slow window at index-1 so both the current
// and previous SMA pairs are defined.
func (s *MACrossover) MinLookback(params Params) int {
	return params.GetInt("slowPeriod", 30)
}

func (s *MACrossover) Evaluate(ctx context.Context, series []*domain.Candle, index int, params Params) domain.Signal {
	fastPeriod := params.GetInt("fastPeriod", 10)
	slowPeriod := params.GetInt("slowPeriod", 30)

	if index < slowPeriod || index >= len(series) {
		return domain.Hold()
	}

	prices := domain.ClosePrices(series[:index+1])

	fast := indicators.SMA(prices, fastPeriod)
	slow := indicators.SMA(prices, slowPeriod)
	prevFast := indicators.SMA(prices[:index], fastPeriod)
	prevSlow := indicators.SMA(prices[:index], slowPeriod)

	meta := map[string]interface{}{
		"fastSMA": fast,
		"slowSMA": slow,
	}

	switch {
	case prevFast <= prevSlow && fast > slow:
		s.logger.Debug(ctx, "MA crossover buy signal", map[string]interface{}{
			"index": index, "fast": fast, "slow": slow,
		})
		return domain.Signal{Action: domain.ActionBuy, Confidence: maCrossoverConfidence, Metadata: meta}
	case prevFast >= prevSlow && fast < slow:
		s.logger.Debug(ctx, "MA crossover sell signal", map[string]interface{}{
			"index": index, "fast": fast, "slow": slow,
		})
		return domain.Signal{Action: domain.ActionSell, Confidence: maCrossoverConfidence, Metadata: meta}
	}
	return domain.Hold()
}
