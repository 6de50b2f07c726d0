package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"strategyLab/internal/risk"
)

func TestObservePortfolio_SetsGauges(t *testing.T) {
	ObservePortfolio(risk.PortfolioMetrics{
		TotalValue:           1500,
		Concentration:        0.9,
		DiversificationScore: 10,
		Positions: []risk.PositionRisk{
			{ContractID: "mintA", Value: 900, RiskPct: 60},
			{ContractID: "mintB", Value: 600, RiskPct: 40},
		},
	})

	assert.InDelta(t, 1500, testutil.ToFloat64(portfolioValue), 1e-9)
	assert.InDelta(t, 0.9, testutil.ToFloat64(portfolioConcentration), 1e-9)
	assert.InDelta(t, 10, testutil.ToFloat64(portfolioDiversification), 1e-9)
	assert.InDelta(t, 900, testutil.ToFloat64(positionValue.WithLabelValues("mintA")), 1e-9)
	assert.InDelta(t, 40, testutil.ToFloat64(positionRiskPct.WithLabelValues("mintB")), 1e-9)

	// A later snapshot without a contract drops its per-position series.
	ObservePortfolio(risk.PortfolioMetrics{
		TotalValue: 600,
		Positions:  []risk.PositionRisk{{ContractID: "mintB", Value: 600, RiskPct: 100}},
	})
	assert.Equal(t, 1, testutil.CollectAndCount(positionValue))
}

func TestRecordScaleOut_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(scaleOutsTotal.WithLabelValues("mint", "secure_initial"))

	RecordScaleOut("mint", "secure_initial")
	RecordScaleOut("mint", "secure_initial")
	RecordScaleOut("mint", "profit_200")

	assert.InDelta(t, before+2, testutil.ToFloat64(scaleOutsTotal.WithLabelValues("mint", "secure_initial")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(scaleOutsTotal.WithLabelValues("mint", "profit_200")), 1e-9)
}

func TestRecordError_IncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(errorsTotal.WithLabelValues("price_lookup"))

	RecordError("price_lookup")

	assert.InDelta(t, before+1, testutil.ToFloat64(errorsTotal.WithLabelValues("price_lookup")), 1e-9)
}
