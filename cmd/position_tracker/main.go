package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"strategyLab/config"
	"strategyLab/internal/adapters/binancedata"
	"strategyLab/internal/adapters/logger"
	"strategyLab/internal/domain"
	"strategyLab/internal/monitoring"
	"strategyLab/internal/tracker"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Price source
	prices, err := binancedata.New(binancedata.Config{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		Logger:    appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		os.Exit(1)
	}

	// 4. Tracker with the configured scale-out ladder
	trk, err := tracker.New(tracker.Config{
		PollInterval: cfg.PollInterval,
		Tiers:        cfg.ScaleOutTiers,
	}, prices, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize tracker")
		os.Exit(1)
	}
	trk.OnPortfolioUpdate = monitoring.ObservePortfolio
	trk.OnScaleOut = func(contract string, ev domain.ScaleOutEvent) {
		monitoring.RecordScaleOut(contract, string(ev.Tier))
	}
	trk.OnPriceError = func(string, error) {
		monitoring.RecordError("price_lookup")
	}

	// Seed the book from TRACK_POSITIONS="SYMBOL:entryPrice:investment,..."
	for _, pos := range parsePositions(os.Getenv("TRACK_POSITIONS")) {
		if err := trk.Track(pos); err != nil {
			appLogger.Error(ctx, err, "FATAL: Invalid tracked position", map[string]interface{}{"contract": pos.ContractID})
			os.Exit(1)
		}
		appLogger.Info(ctx, "Tracking position", map[string]interface{}{
			"contract":   pos.ContractID,
			"entryPrice": pos.EntryPrice,
			"investment": pos.InitialInvestment,
		})
	}

	// 5. Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		appLogger.Info(ctx, "Metrics endpoint listening", map[string]interface{}{"addr": cfg.MetricsAddr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error(ctx, err, "Metrics server failed")
			cancel()
		}
	}()

	// 6. Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLogger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	}()

	// 7. Poll until cancelled
	if err := trk.Run(ctx); err != nil && err != context.Canceled {
		appLogger.Error(ctx, err, "Tracker stopped with error")
	}
	_ = server.Shutdown(context.Background())
	appLogger.Info(context.Background(), "Position tracker stopped")
}

// parsePositions decodes "SYMBOL:entryPrice:investment,..." into the initial
// book. Malformed entries are dropped rather than failing startup.
func parsePositions(raw string) []domain.LivePosition {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []domain.LivePosition
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			continue
		}
		entry, err1 := strconv.ParseFloat(fields[1], 64)
		invested, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, domain.LivePosition{
			ContractID:        fields[0],
			EntryPrice:        entry,
			InitialInvestment: invested,
			CurrentPrice:      entry,
		})
	}
	return out
}
