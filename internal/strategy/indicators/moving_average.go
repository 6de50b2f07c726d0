package indicators

// Moving-average primitives consumed by the strategy layer. Degenerate
// inputs (short history, non-positive period) return sentinel values rather
// than errors: a short window is an expected input during the warm-up phase
// of a simulation, not a failure.

// SMA computes the arithmetic mean of the last period values.
// Returns 0 when fewer than period prices are supplied.
func SMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}

	total := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		total += prices[i]
	}
	return total / float64(period)
}

// EMA computes the exponential moving average over the full price slice,
// seeded with the SMA of the first period values and then applying
// ema = (price - prev) * 2/(period+1) + prev.
// Returns 0 when fewer than period prices are supplied.
func EMA(prices []float64, period int) float64 {
	series := EMASeries(prices, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// EMASeries computes the EMA at every index from period-1 onward. The
// returned slice is aligned to the tail of the input: its last element
// corresponds to the last price. Returns nil when fewer than period prices
// are supplied.
func EMASeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}

	multiplier := 2.0 / float64(period+1)

	series := make([]float64, 0, len(prices)-period+1)
	ema := SMA(prices[:period], period)
	series = append(series, ema)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		series = append(series, ema)
	}
	return series
}
