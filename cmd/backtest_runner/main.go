package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"strategyLab/config"
	"strategyLab/internal/adapters/binancedata"
	"strategyLab/internal/adapters/csvdata"
	"strategyLab/internal/adapters/logger"
	"strategyLab/internal/adapters/sqlite"
	"strategyLab/internal/ports"
	"strategyLab/internal/strategy/backtesting"
	"strategyLab/internal/strategy/strategies"
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

	// 3. Pick the historical data provider: a CSV dump when CSV_FILE is set,
	// the exchange otherwise.
	var provider ports.HistoricalDataProvider
	if csvFile := os.Getenv("CSV_FILE"); csvFile != "" {
		provider, err = csvdata.NewProvider(csvFile, appLogger)
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize CSV provider")
			os.Exit(1)
		}
		appLogger.Info(ctx, "Using CSV historical data", map[string]interface{}{"file": csvFile})
	} else {
		provider, err = binancedata.New(binancedata.Config{
			APIKey:    cfg.APIKey,
			SecretKey: cfg.SecretKey,
			Logger:    appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
			os.Exit(1)
		}
	}

	// 4. Build the engine
	registry, err := strategies.NewRegistry(appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to build strategy registry")
		os.Exit(1)
	}
	engine, err := backtesting.NewEngine(backtesting.EngineConfig{
		Provider: provider,
		Registry: registry,
		Logger:   appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to build backtest engine")
		os.Exit(1)
	}

	// 5. Run
	result, err := engine.Run(ctx, backtesting.Config{
		Symbol:         cfg.Symbol,
		Timeframe:      cfg.Timeframe,
		StartTime:      cfg.StartTime,
		EndTime:        cfg.EndTime,
		InitialCapital: cfg.InitialCapital,
		StrategyName:   cfg.StrategyName,
		StrategyParams: strategies.Params(cfg.StrategyParams),
		Risk: backtesting.RiskSettings{
			PositionSizePct: cfg.PositionSizePct,
			StopLossPct:     cfg.StopLossPct,
			TakeProfitPct:   cfg.TakeProfitPct,
		},
		RiskFreeRate: cfg.RiskFreeRate,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Backtest failed")
		os.Exit(1)
	}

	printSummary(result)
	printTrades(result)

	// 6. Persist the run
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "Failed to open backtest store, result not saved")
		return
	}
	defer repo.Close()

	rec := &ports.BacktestRunRecord{
		Symbol:         result.Symbol,
		Timeframe:      result.Timeframe,
		StrategyName:   result.StrategyName,
		StartTime:      result.StartTime,
		EndTime:        result.EndTime,
		InitialCapital: result.InitialCapital,
		FinalCapital:   result.FinalCapital,
		TotalTrades:    result.Metrics.TotalTrades,
		WinRate:        result.Metrics.WinRate,
		ProfitFactor:   result.Metrics.ProfitFactor,
		MaxDrawdownPct: result.Metrics.MaxDrawdownPct,
		SharpeRatio:    result.Metrics.SharpeRatio,
	}
	runID, err := repo.SaveRun(ctx, rec, result.Trades)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to save backtest run")
		return
	}
	appLogger.Info(ctx, "Backtest run saved", map[string]interface{}{"runID": runID})
}

func printSummary(result *backtesting.Result) {
	m := result.Metrics
	returnPct := (result.FinalCapital - result.InitialCapital) / result.InitialCapital * 100

	profitFactor := fmt.Sprintf("%.2f", m.ProfitFactor)
	if math.IsInf(m.ProfitFactor, 1) {
		profitFactor = "inf"
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("BACKTEST RESULT")
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Symbol", result.Symbol},
		{"Timeframe", result.Timeframe},
		{"Strategy", result.StrategyName},
		{"Period", fmt.Sprintf("%s to %s", result.StartTime.Format("2006-01-02"), result.EndTime.Format("2006-01-02"))},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Initial Capital", fmt.Sprintf("%.2f", result.InitialCapital)},
		{"Final Capital", fmt.Sprintf("%.2f", result.FinalCapital)},
		{"Return", fmt.Sprintf("%.2f%%", returnPct)},
		{"Total Trades", m.TotalTrades},
		{"Win Rate", fmt.Sprintf("%.2f%%", m.WinRate)},
		{"Profit Factor", profitFactor},
		{"Max Drawdown", fmt.Sprintf("%.2f (%.2f%%)", m.MaxDrawdown, m.MaxDrawdownPct)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", m.SharpeRatio)},
	})
	t.Render()
	fmt.Println()
}

func printTrades(result *backtesting.Result) {
	if len(result.Trades) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADES")
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Entry", "Exit", "Entry Price", "Exit Price", "Profit", "Profit %", "Reason"})
	for i, trade := range result.Trades {
		t.AppendRow(table.Row{
			i + 1,
			trade.EntryTime.Format(time.DateTime),
			trade.ExitTime.Format(time.DateTime),
			fmt.Sprintf("%.4f", trade.EntryPrice),
			fmt.Sprintf("%.4f", trade.ExitPrice),
			fmt.Sprintf("%.2f", trade.Profit),
			fmt.Sprintf("%.2f%%", trade.ProfitPct),
			trade.ExitReason,
		})
	}
	t.Render()
	fmt.Println()
}
