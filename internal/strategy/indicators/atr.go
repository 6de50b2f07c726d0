package indicators

import (
	"math"

	"strategyLab/internal/domain"
)

// ATR computes the Average True Range over the given candles using Wilder's
// smoothing, a common volatility figure. Returns 0 when fewer than period+1
// candles are supplied.
func ATR(candles []*domain.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	trueRanges := make([]float64, len(candles))
	trueRanges[0] = candles[0].High - candles[0].Low

	for i := 1; i < len(candles); i++ {
		high := candles[i].High
		low := candles[i].Low
		prevClose := candles[i-1].Close

		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. |Current High - Previous Close|
		// 3. |Current Low - Previous Close|
		tr1 := high - low
		tr2 := math.Abs(high - prevClose)
		tr3 := math.Abs(low - prevClose)

		trueRanges[i] = math.Max(tr1, math.Max(tr2, tr3))
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRanges[i]
	}
	atr /= float64(period)

	for i := period + 1; i < len(candles); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
	}

	return atr
}
