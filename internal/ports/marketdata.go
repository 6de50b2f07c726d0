package ports

import (
	"context"
	"time"

	"strategyLab/internal/domain"
)

// HistoricalDataProvider supplies an ordered OHLCV series for a
// symbol/timeframe/date range. The engine treats any series respecting the
// Candle shape identically regardless of provenance (exchange, CSV file or
// synthetic test data). Provider failures propagate to the caller; the
// engine does not retry or degrade.
type HistoricalDataProvider interface {
	// Fetch returns candles in ascending time order with no duplicate
	// timestamps, restricted to [start, end].
	Fetch(ctx context.Context, symbol string, timeframe domain.Timeframe, start, end time.Time) ([]*domain.Candle, error)
}

// PriceSource supplies current prices for live-tracked instruments.
type PriceSource interface {
	// GetTickerPrice retrieves the last traded price for a symbol.
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}
