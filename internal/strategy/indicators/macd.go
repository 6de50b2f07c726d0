package indicators

// MACDResult holds the three MACD series. All slices have equal length and
// share the same ending index as the input prices: leading points are
// truncated so macd[i], signal[i] and histogram[i] describe the same candle.
type MACDResult struct {
	MACD      []float64 // Fast EMA minus slow EMA
	Signal    []float64 // EMA of the MACD line over the signal period
	Histogram []float64 // MACD minus signal
}

// MACD computes the Moving Average Convergence Divergence series.
// Returns an empty result when fewer than slowPeriod+signalPeriod prices are
// supplied.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) MACDResult {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return MACDResult{}
	}
	if len(prices) < slowPeriod+signalPeriod {
		return MACDResult{}
	}

	fastEMA := EMASeries(prices, fastPeriod)
	slowEMA := EMASeries(prices, slowPeriod)

	// Both series end at the last price; align the fast series to the slow
	// one by dropping its extra leading points.
	offset := len(fastEMA) - len(slowEMA)
	macdLine := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macdLine[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := EMASeries(macdLine, signalPeriod)
	if len(signalLine) == 0 {
		return MACDResult{}
	}

	macdLine = macdLine[len(macdLine)-len(signalLine):]
	histogram := make([]float64, len(signalLine))
	for i := range signalLine {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return MACDResult{MACD: macdLine, Signal: signalLine, Histogram: histogram}
}
