package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "backtests.db"),
		Logger: mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleRecord() *ports.BacktestRunRecord {
	return &ports.BacktestRunRecord{
		Symbol:         "ETHUSDT",
		Timeframe:      domain.Timeframe1h,
		StrategyName:   "ma_crossover",
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital: 10000,
		FinalCapital:   11250,
		TotalTrades:    2,
		WinRate:        50,
		ProfitFactor:   2.5,
		MaxDrawdownPct: 4.2,
		SharpeRatio:    1.3,
	}
}

func sampleTrades() []domain.ClosedTrade {
	entry := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	return []domain.ClosedTrade{
		{
			Symbol:     "ETHUSDT",
			Direction:  domain.DirectionLong,
			EntryTime:  entry,
			ExitTime:   entry.Add(6 * time.Hour),
			EntryPrice: 2000,
			ExitPrice:  2100,
			Quantity:   5,
			Profit:     500,
			ProfitPct:  5,
			ExitReason: domain.ExitReasonTakeProfit,
		},
		{
			Symbol:     "ETHUSDT",
			Direction:  domain.DirectionLong,
			EntryTime:  entry.Add(24 * time.Hour),
			ExitTime:   entry.Add(30 * time.Hour),
			EntryPrice: 2150,
			ExitPrice:  2100,
			Quantity:   5,
			Profit:     -250,
			ProfitPct:  -2.33,
			ExitReason: domain.ExitReasonStopLoss,
		},
	}
}

func TestSaveRunAndFindRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := sampleRecord()
	runID, err := repo.SaveRun(ctx, rec, sampleTrades())
	require.NoError(t, err)
	assert.Positive(t, runID)
	assert.Equal(t, runID, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	runs, err := repo.FindRecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, runID, got.ID)
	assert.Equal(t, "ETHUSDT", got.Symbol)
	assert.Equal(t, domain.Timeframe1h, got.Timeframe)
	assert.Equal(t, "ma_crossover", got.StrategyName)
	assert.Equal(t, 2, got.TotalTrades)
	assert.InDelta(t, 11250, got.FinalCapital, 1e-9)
	assert.InDelta(t, 2.5, got.ProfitFactor, 1e-9)
}

func TestFindRecentRuns_OrderAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := sampleRecord()
		rec.StrategyName = []string{"ma_crossover", "rsi", "macd"}[i]
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := repo.SaveRun(ctx, rec, nil)
		require.NoError(t, err)
	}

	runs, err := repo.FindRecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "macd", runs[0].StrategyName)
	assert.Equal(t, "rsi", runs[1].StrategyName)
}

func TestFindTradesByRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	runID, err := repo.SaveRun(ctx, sampleRecord(), sampleTrades())
	require.NoError(t, err)

	trades, err := repo.FindTradesByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, domain.ExitReasonTakeProfit, trades[0].ExitReason)
	assert.Equal(t, domain.ExitReasonStopLoss, trades[1].ExitReason)
	assert.True(t, trades[0].EntryTime.Before(trades[1].EntryTime))
	assert.InDelta(t, 500, trades[0].Profit, 1e-9)
	assert.Equal(t, domain.DirectionLong, trades[0].Direction)
}

func TestFindTradesByRun_UnknownRun(t *testing.T) {
	repo := newTestRepo(t)

	trades, err := repo.FindTradesByRun(context.Background(), 424242)
	require.NoError(t, err)
	assert.Empty(t, trades)
}
