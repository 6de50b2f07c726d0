package analytics

import (
	"math"
	"time"

	"strategyLab/internal/domain"
)

// TradingPeriodsPerYear is the annualization factor applied to the
// daily-return series when computing the Sharpe ratio.
const TradingPeriodsPerYear = 252

// EquityPoint represents a point on the equity curve.
type EquityPoint struct {
	Time   time.Time // Timestamp of the candle that produced the snapshot
	Equity float64   // Capital plus unrealized value of any open position
}

// PeriodReturn is the fractional return over one calendar period (day or
// month), stamped with the first candle of the new period.
type PeriodReturn struct {
	Time   time.Time // First candle of the new period
	Return float64   // Fractional return over the closed period
}

// PerformanceMetrics holds the statistics derived from a completed backtest.
// Every field is a plain value so the whole struct is safe to persist or
// transmit as-is.
type PerformanceMetrics struct {
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64 // Percentage of winning trades, 0 when no trades
	TotalProfit    float64
	AverageWin     float64
	AverageLoss    float64 // Negative or zero
	ProfitFactor   float64 // +Inf when there are wins and no losses
	MaxDrawdown    float64 // Deepest peak-to-trough decline, absolute
	MaxDrawdownPct float64 // Same decline as a percentage of the peak
	SharpeRatio    float64 // Annualized from the daily-return series
	MonthlyReturns []PeriodReturn
}

// Analyze derives performance statistics from the trade list, equity curve
// and daily-return series produced by a backtest run. Degenerate inputs
// (no trades, empty curve, zero variance) yield sentinel values rather than
// errors.
func Analyze(trades []domain.ClosedTrade, equity []EquityPoint, dailyReturns []PeriodReturn, riskFreeRate float64) *PerformanceMetrics {
	m := &PerformanceMetrics{
		MonthlyReturns: monthlyReturns(equity),
	}

	for _, trade := range trades {
		m.TotalTrades++
		m.TotalProfit += trade.Profit
		if trade.Profit > 0 {
			m.WinningTrades++
			m.AverageWin = (m.AverageWin*float64(m.WinningTrades-1) + trade.Profit) / float64(m.WinningTrades)
		} else {
			m.LosingTrades++
			m.AverageLoss = (m.AverageLoss*float64(m.LosingTrades-1) + trade.Profit) / float64(m.LosingTrades)
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	}
	m.ProfitFactor = profitFactor(m.WinningTrades, m.LosingTrades, m.AverageWin, m.AverageLoss)
	m.MaxDrawdown, m.MaxDrawdownPct = MaxDrawdown(equity)
	m.SharpeRatio = SharpeRatio(dailyReturns, riskFreeRate)

	return m
}

// profitFactor is |average win| / |average loss|. With wins and no losses it
// is +Inf; with no wins it is 0.
func profitFactor(wins, losses int, avgWin, avgLoss float64) float64 {
	if wins == 0 {
		return 0
	}
	if losses == 0 || avgLoss == 0 {
		return math.Inf(1)
	}
	return math.Abs(avgWin) / math.Abs(avgLoss)
}

// MaxDrawdown walks the equity curve tracking a running peak and returns the
// deepest decline both in absolute terms and as a percentage of its peak.
func MaxDrawdown(equity []EquityPoint) (absolute, percent float64) {
	if len(equity) == 0 {
		return 0, 0
	}

	peak := equity[0].Equity
	for _, point := range equity {
		if point.Equity > peak {
			peak = point.Equity
		}
		drawdown := peak - point.Equity
		if drawdown > absolute {
			absolute = drawdown
		}
		if peak > 0 {
			if pct := drawdown / peak * 100; pct > percent {
				percent = pct
			}
		}
	}
	return absolute, percent
}

// SharpeRatio annualizes the daily-return series assuming
// TradingPeriodsPerYear periods per year:
//
//	(mean * 252 - riskFreeRate) / (stdDev * sqrt(252))
//
// Returns 0 when the series is empty or has zero variance.
func SharpeRatio(returns []PeriodReturn, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r.Return
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r.Return - mean) * (r.Return - mean)
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}
	return (mean*TradingPeriodsPerYear - riskFreeRate) / (stdDev * math.Sqrt(TradingPeriodsPerYear))
}

// monthlyReturns resamples the equity curve at calendar-month boundaries
// using the same peak-to-peak formula as the daily-return series.
func monthlyReturns(equity []EquityPoint) []PeriodReturn {
	var returns []PeriodReturn
	if len(equity) == 0 {
		return returns
	}

	refMonth := monthOf(equity[0].Time)
	refEquity := equity[0].Equity

	for _, point := range equity[1:] {
		month := monthOf(point.Time)
		if month.Equal(refMonth) {
			continue
		}
		if refEquity > 0 {
			returns = append(returns, PeriodReturn{
				Time:   point.Time,
				Return: (point.Equity - refEquity) / refEquity,
			})
		}
		refMonth = month
		refEquity = point.Equity
	}
	return returns
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
