package csvdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"
)

var header = []string{"open_time", "close_time", "symbol", "timeframe", "open", "high", "low", "close", "volume"}

// WriteCandlesToCSV dumps a candle series to a CSV file, one row per candle.
func WriteCandlesToCSV(candles []*domain.Candle, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write(header)
	for _, c := range candles {
		writer.Write([]string{
			c.OpenTime.Format(time.RFC3339),
			c.CloseTime.Format(time.RFC3339),
			c.Symbol,
			string(c.Timeframe),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadCandlesFromCSV loads a candle series written by WriteCandlesToCSV.
func ReadCandlesFromCSV(filename string) ([]*domain.Candle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Skip the header row if present.
	if rows[0][0] == header[0] {
		rows = rows[1:]
	}

	candles := make([]*domain.Candle, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d of %s: expected %d columns, got %d", i+1, filename, len(header), len(row))
		}
		candle, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+1, filename, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseRow(row []string) (*domain.Candle, error) {
	openTime, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return nil, fmt.Errorf("bad open_time %q: %w", row[0], err)
	}
	closeTime, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return nil, fmt.Errorf("bad close_time %q: %w", row[1], err)
	}

	values := make([]float64, 5)
	for i, raw := range row[4:] {
		values[i], err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s %q: %w", header[4+i], raw, err)
		}
	}

	return &domain.Candle{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Symbol:    row[2],
		Timeframe: domain.Timeframe(row[3]),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

// Provider serves historical candles from a CSV file, implementing
// ports.HistoricalDataProvider. The file is read once per Fetch; callers
// that replay the same file repeatedly should cache the result.
type Provider struct {
	filename string
	logger   ports.Logger
}

// NewProvider creates a file-backed historical data provider.
func NewProvider(filename string, logger ports.Logger) (*Provider, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: CSV filename is required", ports.ErrConfigurationError)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}
	return &Provider{filename: filename, logger: logger}, nil
}

// Fetch returns the file's candles matching the symbol and timeframe,
// restricted to [start, end] and sorted by open time.
func (p *Provider) Fetch(ctx context.Context, symbol string, timeframe domain.Timeframe, start, end time.Time) ([]*domain.Candle, error) {
	all, err := ReadCandlesFromCSV(p.filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrProviderUnavailable, err)
	}

	var out []*domain.Candle
	for _, c := range all {
		if c.Symbol != symbol || c.Timeframe != timeframe {
			continue
		}
		if c.OpenTime.Before(start) || c.OpenTime.After(end) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenTime.Before(out[j].OpenTime) })

	p.logger.Debug(ctx, "Loaded candles from CSV", map[string]interface{}{
		"file":     p.filename,
		"symbol":   symbol,
		"total":    len(all),
		"selected": len(out),
	})
	return out, nil
}
