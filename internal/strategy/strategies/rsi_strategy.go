package strategies

import (
	"context"
	"math"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"
	"strategyLab/internal/strategy/indicators"
)

// RSIStrategy buys when RSI drops to the oversold threshold and sells when
// it reaches the overbought threshold. Confidence starts at 50 on the
// threshold and grows with the distance beyond it.
type RSIStrategy struct {
	logger ports.Logger
}

// NewRSIStrategy creates the RSI mean-reversion strategy.
func NewRSIStrategy(logger ports.Logger) *RSIStrategy {
	return &RSIStrategy{logger: logger}
}

func (s *RSIStrategy) Name() string { return "rsi" }

func (s *RSIStrategy) Description() string {
	return "Buy oversold, sell overbought, by Wilder RSI thresholds"
}

func (s *RSIStrategy) DefaultParams() Params {
	return Params{
		"period":     14,
		"oversold":   30,
		"overbought": 70,
	}
}

// MinLookback requires period+1 points for the first defined RSI value.
func (s *RSIStrategy) MinLookback(params Params) int {
	return params.GetInt("period", 14) + 1
}

func (s *RSIStrategy) Evaluate(ctx context.Context, series []*domain.Candle, index int, params Params) domain.Signal {
	period := params.GetInt("period", 14)
	oversold := params.Get("oversold", 30)
	overbought := params.Get("overbought", 70)

	if index < period+1 || index >= len(series) {
		return domain.Hold()
	}

	rsi := indicators.RSI(domain.ClosePrices(series[:index+1]), period)
	meta := map[string]interface{}{"rsi": rsi}

	switch {
	case rsi <= oversold:
		conf := math.Min(100, 50+(oversold-rsi)*2)
		s.logger.Debug(ctx, "RSI buy signal", map[string]interface{}{
			"index": index, "rsi": rsi, "confidence": conf,
		})
		return domain.Signal{Action: domain.ActionBuy, Confidence: conf, Metadata: meta}
	case rsi >= overbought:
		conf := math.Min(100, 50+(rsi-overbought)*2)
		s.logger.Debug(ctx, "RSI sell signal", map[string]interface{}{
			"index": index, "rsi": rsi, "confidence": conf,
		})
		return domain.Signal{Action: domain.ActionSell, Confidence: conf, Metadata: meta}
	}
	return domain.Hold()
}
