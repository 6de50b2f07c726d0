package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"strategyLab/config"
	"strategyLab/internal/adapters/binancedata"
	"strategyLab/internal/adapters/csvdata"
	"strategyLab/internal/adapters/logger"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	// 3. Initialize the Binance data client
	client, err := binancedata.New(binancedata.Config{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		Logger:    appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		os.Exit(1)
	}

	// 4. Fetch the full range
	appLogger.Info(ctx, "Fetching candles", map[string]interface{}{
		"symbol":    cfg.Symbol,
		"timeframe": cfg.Timeframe,
		"start":     cfg.StartTime.Format("2006-01-02"),
		"end":       cfg.EndTime.Format("2006-01-02"),
	})
	candles, err := client.Fetch(ctx, cfg.Symbol, cfg.Timeframe, cfg.StartTime, cfg.EndTime)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to fetch candles")
		os.Exit(1)
	}
	if len(candles) == 0 {
		appLogger.Warn(ctx, "No candles returned for the requested range")
		return
	}

	// 5. Write the CSV dump
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to create data directory")
		os.Exit(1)
	}
	filename := filepath.Join(cfg.DataDir, fmt.Sprintf("%s_%s_%s_to_%s.csv",
		cfg.Symbol, cfg.Timeframe,
		cfg.StartTime.Format("20060102"), cfg.EndTime.Format("20060102")))

	if err := csvdata.WriteCandlesToCSV(candles, filename); err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to write CSV file", map[string]interface{}{"file": filename})
		os.Exit(1)
	}

	appLogger.Info(ctx, "Candles written", map[string]interface{}{
		"file":  filename,
		"count": len(candles),
	})
}
