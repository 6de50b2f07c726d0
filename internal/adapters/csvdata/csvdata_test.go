package csvdata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"strategyLab/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func sampleCandles(n int) []*domain.Candle {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]*domain.Candle, n)
	for i := range candles {
		open := 100 + float64(i)
		candles[i] = &domain.Candle{
			OpenTime:  start.Add(time.Duration(i) * time.Hour),
			CloseTime: start.Add(time.Duration(i+1) * time.Hour),
			Symbol:    "ETHUSDT",
			Timeframe: domain.Timeframe1h,
			Open:      open,
			High:      open + 2,
			Low:       open - 1,
			Close:     open + 1,
			Volume:    1000 + float64(i),
		}
	}
	return candles
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	want := sampleCandles(5)

	if err := WriteCandlesToCSV(want, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := ReadCandlesFromCSV(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d candles, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].OpenTime.Equal(want[i].OpenTime) {
			t.Errorf("Candle %d: open time %v != %v", i, got[i].OpenTime, want[i].OpenTime)
		}
		if got[i].Close != want[i].Close || got[i].Volume != want[i].Volume {
			t.Errorf("Candle %d: values differ: %+v != %+v", i, got[i], want[i])
		}
		if got[i].Timeframe != domain.Timeframe1h || got[i].Symbol != "ETHUSDT" {
			t.Errorf("Candle %d: identity fields differ: %+v", i, got[i])
		}
	}
}

func TestProvider_FetchFiltersRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	all := sampleCandles(10)
	if err := WriteCandlesToCSV(all, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	provider, err := NewProvider(path, nopLogger{})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	start := all[2].OpenTime
	end := all[6].OpenTime
	got, err := provider.Fetch(context.Background(), "ETHUSDT", domain.Timeframe1h, start, end)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("Expected 5 candles in range, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i].OpenTime.After(got[i-1].OpenTime) {
			t.Errorf("Candles out of order at %d", i)
		}
	}
}

func TestProvider_FetchFiltersSymbolAndTimeframe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	if err := WriteCandlesToCSV(sampleCandles(4), path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	provider, err := NewProvider(path, nopLogger{})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	wide := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := provider.Fetch(context.Background(), "BTCUSDT", domain.Timeframe1h, wide, wide.AddDate(10, 0, 0))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no candles for another symbol, got %d", len(got))
	}

	got, err = provider.Fetch(context.Background(), "ETHUSDT", domain.Timeframe5m, wide, wide.AddDate(10, 0, 0))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no candles for another timeframe, got %d", len(got))
	}
}

func TestProvider_MissingFile(t *testing.T) {
	provider, err := NewProvider(filepath.Join(t.TempDir(), "absent.csv"), nopLogger{})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	wide := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = provider.Fetch(context.Background(), "ETHUSDT", domain.Timeframe1h, wide, wide.AddDate(1, 0, 0))
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}
