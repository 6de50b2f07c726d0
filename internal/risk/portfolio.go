package risk

import (
	"math"
	"sort"

	"strategyLab/internal/domain"
)

// PositionRisk is the per-position slice of portfolio exposure.
type PositionRisk struct {
	ContractID string  // Instrument identifier
	Value      float64 // Remaining tokens at the current price
	RiskPct    float64 // Share of total portfolio value, percent
}

// PortfolioMetrics summarizes concentration and diversification across a set
// of live positions.
type PortfolioMetrics struct {
	TotalValue           float64        // Portfolio value the shares are measured against
	Positions            []PositionRisk // Per-position exposure, descending by risk
	TotalRiskPct         float64        // Sum of per-position risk percentages
	Concentration        float64        // Share of total risk held by the top three positions
	DiversificationScore float64        // 100 - concentration*100, clamped to [0, 100]
}

// AggregatePortfolioRisk computes exposure metrics across live positions.
// An empty position set yields all-zero metrics.
func AggregatePortfolioRisk(positions []*domain.LivePosition, totalPortfolioValue float64) PortfolioMetrics {
	metrics := PortfolioMetrics{TotalValue: totalPortfolioValue}
	if len(positions) == 0 || totalPortfolioValue <= 0 {
		return metrics
	}

	for _, pos := range positions {
		value := pos.RemainingTokens() * pos.CurrentPrice
		metrics.Positions = append(metrics.Positions, PositionRisk{
			ContractID: pos.ContractID,
			Value:      value,
			RiskPct:    value / totalPortfolioValue * 100,
		})
	}
	sort.Slice(metrics.Positions, func(i, j int) bool {
		return metrics.Positions[i].RiskPct > metrics.Positions[j].RiskPct
	})

	var topRisk float64
	for i, pr := range metrics.Positions {
		metrics.TotalRiskPct += pr.RiskPct
		if i < 3 {
			topRisk += pr.RiskPct
		}
	}
	if metrics.TotalRiskPct > 0 {
		metrics.Concentration = topRisk / metrics.TotalRiskPct
	}
	metrics.DiversificationScore = math.Max(0, math.Min(100, 100-metrics.Concentration*100))
	return metrics
}

// Volatility is the annualized standard deviation of a return series,
// assuming 252 trading periods per year. Series with fewer than two points
// return 0.
func Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(252)
}

// Correlation is the Pearson correlation of two equal-length return series.
// Unequal lengths, fewer than two points, or a zero-variance side return 0.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}

	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
