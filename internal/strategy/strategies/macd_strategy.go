package strategies

import (
	"context"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"
	"strategyLab/internal/strategy/indicators"
)

const macdConfidence = 75

// MACDStrategy emits a buy when the MACD histogram crosses from non-positive
// to positive between the previous and current candle, and a sell on the
// reverse crossing.
type MACDStrategy struct {
	logger ports.Logger
}

// NewMACDStrategy creates the MACD histogram zero-cross strategy.
func NewMACDStrategy(logger ports.Logger) *MACDStrategy {
	return &MACDStrategy{logger: logger}
}

func (s *MACDStrategy) Name() string { return "macd" }

func (s *MACDStrategy) Description() string {
	return "Buy and sell on MACD histogram zero crossings"
}

func (s *MACDStrategy) DefaultParams() Params {
	return Params{
		"fastPeriod":   12,
		"slowPeriod":   26,
		"signalPeriod": 9,
	}
}

// MinLookback requires slowPeriod+signalPeriod candles before the first
// histogram point plus the previous one needed for cross detection.
func (s *MACDStrategy) MinLookback(params Params) int {
	return params.GetInt("slowPeriod", 26) + params.GetInt("signalPeriod", 9)
}

func (s *MACDStrategy) Evaluate(ctx context.Context, series []*domain.Candle, index int, params Params) domain.Signal {
	fastPeriod := params.GetInt("fastPeriod", 12)
	slowPeriod := params.GetInt("slowPeriod", 26)
	signalPeriod := params.GetInt("signalPeriod", 9)

	if index < slowPeriod+signalPeriod || index >= len(series) {
		return domain.Hold()
	}

	res := indicators.MACD(domain.ClosePrices(series[:index+1]), fastPeriod, slowPeriod, signalPeriod)
	if len(res.Histogram) < 2 {
		return domain.Hold()
	}

	prev := res.Histogram[len(res.Histogram)-2]
	curr := res.Histogram[len(res.Histogram)-1]
	meta := map[string]interface{}{
		"macd":      res.MACD[len(res.MACD)-1],
		"signal":    res.Signal[len(res.Signal)-1],
		"histogram": curr,
	}

	switch {
	case prev <= 0 && curr > 0:
		s.logger.Debug(ctx, "MACD buy signal", map[string]interface{}{
			"index": index, "prevHistogram": prev, "histogram": curr,
		})
		return domain.Signal{Action: domain.ActionBuy, Confidence: macdConfidence, Metadata: meta}
	case prev > 0 && curr <= 0:
		s.logger.Debug(ctx, "MACD sell signal", map[string]interface{}{
			"index": index, "prevHistogram": prev, "histogram": curr,
		})
		return domain.Signal{Action: domain.ActionSell, Confidence: macdConfidence, Metadata: meta}
	}
	return domain.Hold()
}
