package backtesting

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"
	"strategyLab/internal/strategy/strategies"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	warnMsgs []string
	infoMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// stubProvider serves a fixed candle series and records whether Fetch ran.
type stubProvider struct {
	series  []*domain.Candle
	err     error
	fetched bool
}

func (p *stubProvider) Fetch(ctx context.Context, symbol string, tf domain.Timeframe, start, end time.Time) ([]*domain.Candle, error) {
	p.fetched = true
	if p.err != nil {
		return nil, p.err
	}
	return p.series, nil
}

func seriesFromCloses(closes []float64) []*domain.Candle {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]*domain.Candle, len(closes))
	for i, c := range closes {
		candles[i] = &domain.Candle{
			OpenTime:  start.Add(time.Duration(i) * time.Hour),
			CloseTime: start.Add(time.Duration(i+1) * time.Hour),
			Symbol:    "ETHUSDT",
			Timeframe: domain.Timeframe1h,
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
		}
	}
	return candles
}

func newTestEngine(t *testing.T, provider ports.HistoricalDataProvider) *Engine {
	t.Helper()
	registry, err := strategies.NewRegistry(&mockLogger{})
	require.NoError(t, err)

	engine, err := NewEngine(EngineConfig{
		Provider: provider,
		Registry: registry,
		Logger:   &mockLogger{},
	})
	require.NoError(t, err)
	return engine
}

func baseConfig() Config {
	return Config{
		Symbol:         "ETHUSDT",
		Timeframe:      domain.Timeframe1h,
		StartTime:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital: 1000,
		StrategyName:   "ma_crossover",
		StrategyParams: strategies.Params{"fastPeriod": 2, "slowPeriod": 3},
		Risk:           RiskSettings{PositionSizePct: 100},
	}
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	registry, err := strategies.NewRegistry(&mockLogger{})
	require.NoError(t, err)

	_, err = NewEngine(EngineConfig{Registry: registry, Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = NewEngine(EngineConfig{Provider: &stubProvider{}, Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = NewEngine(EngineConfig{Provider: &stubProvider{}, Registry: registry})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestRun_ValidatesConfig(t *testing.T) {
	provider := &stubProvider{}
	engine := newTestEngine(t, provider)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timeframe", func(c *Config) { c.Timeframe = "3h" }},
		{"start after end", func(c *Config) { c.StartTime, c.EndTime = c.EndTime, c.StartTime }},
		{"zero capital", func(c *Config) { c.InitialCapital = 0 }},
		{"zero position size", func(c *Config) { c.Risk.PositionSizePct = 0 }},
		{"oversized position", func(c *Config) { c.Risk.PositionSizePct = 150 }},
		{"negative stop loss", func(c *Config) { c.Risk.StopLossPct = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)

			_, err := engine.Run(context.Background(), cfg)
			assert.ErrorIs(t, err, ports.ErrConfigurationError)
			assert.False(t, provider.fetched, "validation failures must not hit the provider")
		})
	}
}

func TestRun_UnknownStrategyFailsBeforeFetch(t *testing.T) {
	provider := &stubProvider{}
	engine := newTestEngine(t, provider)

	cfg := baseConfig()
	cfg.StrategyName = "momentum_god_mode"

	_, err := engine.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, ports.ErrUnknownStrategy)
	assert.False(t, provider.fetched)
}

func TestRun_ProviderErrorPropagates(t *testing.T) {
	sentinel := errors.New("rate limited")
	engine := newTestEngine(t, &stubProvider{err: sentinel})

	_, err := engine.Run(context.Background(), baseConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestRun_EmptySeriesYieldsEmptyResult(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{})

	result, err := engine.Run(context.Background(), baseConfig())
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	assert.Empty(t, result.EquityCurve)
	assert.Equal(t, 1000.0, result.FinalCapital)
	assert.Equal(t, 0.0, result.Metrics.WinRate)
}

func TestRun_NoSignalsProducesNoTrades(t *testing.T) {
	// A flat series never produces a strict crossover.
	engine := newTestEngine(t, &stubProvider{series: seriesFromCloses([]float64{
		10, 10, 10, 10, 10, 10, 10, 10,
	})})

	result, err := engine.Run(context.Background(), baseConfig())
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	assert.Equal(t, 1000.0, result.FinalCapital)
	assert.Equal(t, 0.0, result.Metrics.WinRate)
	assert.Len(t, result.EquityCurve, 8)
}

func TestRun_BuyThenSellRoundTrip(t *testing.T) {
	// Fast SMA(2) crosses above slow SMA(3) at the spike and back below at
	// the collapse.
	engine := newTestEngine(t, &stubProvider{series: seriesFromCloses([]float64{
		10, 10, 10, 10, 9, 20, 20, 20, 1,
	})})

	result, err := engine.Run(context.Background(), baseConfig())
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, domain.ExitReasonSignal, trade.ExitReason)
	assert.Equal(t, 20.0, trade.EntryPrice)
	assert.Equal(t, 1.0, trade.ExitPrice)

	// Full capital at entry price 20 buys 50 units; the collapse to 1 loses
	// 19 per unit.
	assert.InDelta(t, 50.0, trade.Quantity, 1e-9)
	assert.InDelta(t, -950.0, trade.Profit, 1e-9)
	assert.InDelta(t, 50.0, result.FinalCapital, 1e-9)
}

func TestRun_StopLossClosesAtStopPrice(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{series: seriesFromCloses([]float64{
		10, 10, 10, 10, 9, 20, 17,
	})})

	cfg := baseConfig()
	cfg.Risk.PositionSizePct = 50
	cfg.Risk.StopLossPct = 10

	result, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, domain.ExitReasonStopLoss, trade.ExitReason)
	// Entry at 20 with a 10% stop exits at 18 even though the candle closed
	// lower.
	assert.InDelta(t, 18.0, trade.ExitPrice, 1e-9)
	assert.InDelta(t, -50.0, trade.Profit, 1e-9)
	assert.InDelta(t, 950.0, result.FinalCapital, 1e-9)
}

func TestRun_TakeProfitClosesAtTargetPrice(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{series: seriesFromCloses([]float64{
		10, 10, 10, 10, 9, 20, 23,
	})})

	cfg := baseConfig()
	cfg.Risk.TakeProfitPct = 10

	result, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, domain.ExitReasonTakeProfit, trade.ExitReason)
	assert.InDelta(t, 22.0, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 100.0, trade.Profit, 1e-9)
	assert.InDelta(t, 1100.0, result.FinalCapital, 1e-9)

	assert.Equal(t, 100.0, result.Metrics.WinRate)
	assert.True(t, math.IsInf(result.Metrics.ProfitFactor, 1))
}

func TestRun_OpenPositionForceClosedAtEnd(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{series: seriesFromCloses([]float64{
		10, 10, 10, 10, 9, 20,
	})})

	result, err := engine.Run(context.Background(), baseConfig())
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, domain.ExitReasonEndOfBacktest, trade.ExitReason)
	// Entered and force-closed on the same candle at the same price.
	assert.InDelta(t, 0.0, trade.Profit, 1e-9)
	assert.InDelta(t, 1000.0, result.FinalCapital, 1e-9)
}

func TestRun_CapitalConservation(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{series: seriesFromCloses([]float64{
		10, 10, 10, 10, 9, 20, 20, 20, 1, 1, 1, 1, 0.5, 30, 30, 30, 2,
	})})

	cfg := baseConfig()
	result, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	var total float64
	for _, trade := range result.Trades {
		total += trade.Profit
	}
	assert.InDelta(t, cfg.InitialCapital+total, result.FinalCapital, 1e-9)
}

func TestRun_OneEquityPointPerCandle(t *testing.T) {
	closes := []float64{10, 10, 10, 10, 9, 20, 20, 20, 1, 5, 7}
	engine := newTestEngine(t, &stubProvider{series: seriesFromCloses(closes)})

	result, err := engine.Run(context.Background(), baseConfig())
	require.NoError(t, err)

	require.Len(t, result.EquityCurve, len(closes))
	for i := 1; i < len(result.EquityCurve); i++ {
		assert.True(t, result.EquityCurve[i].Time.After(result.EquityCurve[i-1].Time))
	}
}
