package ports

import (
	"context"
	"time"

	"strategyLab/internal/domain"
)

// BacktestRunRecord is the persisted summary of a completed backtest run.
type BacktestRunRecord struct {
	ID             int64            // Assigned by the repository
	Symbol         string           // Symbol the run was executed against
	Timeframe      domain.Timeframe // Candle interval used
	StrategyName   string           // Registry name of the strategy
	StartTime      time.Time        // First candle requested
	EndTime        time.Time        // Last candle requested
	InitialCapital float64          // Capital at the start of the run
	FinalCapital   float64          // Capital after the forced final close
	TotalTrades    int              // Number of closed trades
	WinRate        float64          // Percentage of winning trades
	ProfitFactor   float64          // Gross win / gross loss ratio
	MaxDrawdownPct float64          // Deepest equity decline, percent of peak
	SharpeRatio    float64          // Annualized Sharpe ratio
	CreatedAt      time.Time        // When the record was saved
}

// BacktestRepository defines the interface for storing and retrieving
// completed backtest runs and their trades.
type BacktestRepository interface {
	// SaveRun persists a run summary with its closed trades and returns the
	// assigned run ID.
	SaveRun(ctx context.Context, rec *BacktestRunRecord, trades []domain.ClosedTrade) (int64, error)
	// FindRecentRuns retrieves the most recent run summaries, up to a limit.
	FindRecentRuns(ctx context.Context, limit int) ([]*BacktestRunRecord, error)
	// FindTradesByRun retrieves the trades recorded for a run, in entry order.
	FindTradesByRun(ctx context.Context, runID int64) ([]domain.ClosedTrade, error)
}
