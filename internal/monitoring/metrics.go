package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"strategyLab/internal/risk"
)

var (
	// Position metrics
	positionValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strategylab_position_value",
			Help: "Current value of a tracked position",
		},
		[]string{"contract"},
	)

	positionRiskPct = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strategylab_position_risk_pct",
			Help: "Share of total portfolio value held by a position, percent",
		},
		[]string{"contract"},
	)

	scaleOutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategylab_scale_outs_total",
			Help: "Total number of scale-out tier executions",
		},
		[]string{"contract", "tier"},
	)

	// Portfolio metrics
	portfolioValue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strategylab_portfolio_value",
			Help: "Total value of all tracked positions",
		},
	)

	portfolioConcentration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strategylab_portfolio_concentration",
			Help: "Share of portfolio risk held by the top three positions",
		},
	)

	portfolioDiversification = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strategylab_portfolio_diversification_score",
			Help: "Portfolio diversification score, 0-100",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategylab_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(positionValue)
	prometheus.MustRegister(positionRiskPct)
	prometheus.MustRegister(scaleOutsTotal)
	prometheus.MustRegister(portfolioValue)
	prometheus.MustRegister(portfolioConcentration)
	prometheus.MustRegister(portfolioDiversification)
	prometheus.MustRegister(errorsTotal)
}

// Handler serves the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePortfolio publishes a portfolio snapshot to the metric registry.
func ObservePortfolio(metrics risk.PortfolioMetrics) {
	portfolioValue.Set(metrics.TotalValue)
	portfolioConcentration.Set(metrics.Concentration)
	portfolioDiversification.Set(metrics.DiversificationScore)

	positionValue.Reset()
	positionRiskPct.Reset()
	for _, pos := range metrics.Positions {
		positionValue.WithLabelValues(pos.ContractID).Set(pos.Value)
		positionRiskPct.WithLabelValues(pos.ContractID).Set(pos.RiskPct)
	}
}

// RecordScaleOut records one executed scale-out tier.
func RecordScaleOut(contract, tier string) {
	scaleOutsTotal.WithLabelValues(contract, tier).Inc()
}

// RecordError records an error metric.
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
