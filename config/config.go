package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"strategyLab/internal/adapters/logger" // Import the logger package for LogLevel
	"strategyLab/internal/domain"
	"strategyLab/internal/risk"
)

// Config holds all application configuration.
type Config struct {
	// Binance API. Keys are optional: historical klines and ticker prices
	// are public endpoints.
	APIKey    string
	SecretKey string

	// Backtest Parameters
	Symbol         string
	Timeframe      domain.Timeframe
	StartTime      time.Time
	EndTime        time.Time
	InitialCapital float64
	StrategyName   string
	StrategyParams map[string]float64 // Overrides for the strategy defaults

	// Risk Parameters
	PositionSizePct float64 // Percent of capital per entry
	StopLossPct     float64 // Percent below entry, 0 disables
	TakeProfitPct   float64 // Percent above entry, 0 disables
	RiskFreeRate    float64 // Annualized, for the Sharpe ratio

	// Tracker Parameters
	PollInterval  time.Duration
	MetricsAddr   string // Listen address of the Prometheus endpoint
	ScaleOutTiers []risk.Tier

	// Database
	DBPath string

	// Data files
	DataDir string // Directory for CSV candle dumps

	// Logging
	LogLevel logger.LogLevel
}

const dateLayout = "2006-01-02"

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")

	// Backtest Parameters
	cfg.Symbol = getEnv("SYMBOL", "ETHUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.Timeframe = domain.Timeframe(getEnv("TIMEFRAME", "1h"))
	if !cfg.Timeframe.IsValid() {
		errs = append(errs, fmt.Sprintf("unsupported TIMEFRAME %q", cfg.Timeframe))
	}

	var err error
	cfg.StartTime, err = getEnvAsDate("START_DATE", time.Now().UTC().AddDate(0, -3, 0))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid START_DATE: %v", err))
	}
	cfg.EndTime, err = getEnvAsDate("END_DATE", time.Now().UTC())
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid END_DATE: %v", err))
	}
	if !cfg.StartTime.Before(cfg.EndTime) {
		errs = append(errs, "START_DATE must be before END_DATE")
	}

	cfg.InitialCapital, err = getEnvAsFloatRequired("INITIAL_CAPITAL", 10000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_CAPITAL: %v", err))
	} else if cfg.InitialCapital <= 0 {
		errs = append(errs, "INITIAL_CAPITAL must be positive")
	}

	cfg.StrategyName = getEnv("STRATEGY", "ma_crossover")
	cfg.StrategyParams, err = parseParams(getEnv("STRATEGY_PARAMS", ""))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STRATEGY_PARAMS: %v", err))
	}

	// Risk Parameters
	cfg.PositionSizePct = getEnvAsFloat("POSITION_SIZE_PCT", 100)
	if cfg.PositionSizePct <= 0 || cfg.PositionSizePct > 100 {
		errs = append(errs, "POSITION_SIZE_PCT must be in (0, 100]")
	}
	cfg.StopLossPct = getEnvAsFloat("STOP_LOSS_PCT", 0)
	if cfg.StopLossPct < 0 {
		errs = append(errs, "STOP_LOSS_PCT cannot be negative")
	}
	cfg.TakeProfitPct = getEnvAsFloat("TAKE_PROFIT_PCT", 0)
	if cfg.TakeProfitPct < 0 {
		errs = append(errs, "TAKE_PROFIT_PCT cannot be negative")
	}
	cfg.RiskFreeRate = getEnvAsFloat("RISK_FREE_RATE", 0)

	// Tracker Parameters
	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 30)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second
	cfg.MetricsAddr = getEnv("METRICS_ADDR", ":9090")

	cfg.ScaleOutTiers, err = parseTiers(getEnv("SCALE_OUT_TIERS", "secure_initial:100:50,profit_200:200:25,profit_400:400:25"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCALE_OUT_TIERS: %v", err))
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/backtests.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.DataDir = getEnv("DATA_DIR", "./data")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// parseParams decodes "key=value,key=value" into a parameter map. An empty
// input yields a nil map, which selects the strategy defaults downstream.
func parseParams(raw string) (map[string]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	params := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		key, valueStr, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || key == "" {
			return nil, fmt.Errorf("malformed pair %q, expected key=value", pair)
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric value %q for key %s", valueStr, key)
		}
		params[key] = value
	}
	return params, nil
}

// parseTiers decodes "id:trigger:exit,id:trigger:exit" into a scale-out
// ladder. A tier named secure_initial marks the initial-recovery milestone.
func parseTiers(raw string) ([]risk.Tier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var tiers []risk.Tier
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed tier %q, expected id:trigger:exit", part)
		}
		trigger, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric trigger %q in tier %s", fields[1], fields[0])
		}
		exit, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric exit %q in tier %s", fields[2], fields[0])
		}
		if exit <= 0 || exit > 100 {
			return nil, fmt.Errorf("exit percent of tier %s must be in (0, 100]", fields[0])
		}
		tiers = append(tiers, risk.Tier{
			ID:             domain.TierID(fields[0]),
			TriggerPercent: trigger,
			ExitPercent:    exit,
			Reason:         strings.ReplaceAll(fields[0], "_", " "),
			SecureInitial:  fields[0] == "secure_initial",
		})
	}
	return tiers, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsDate(key string, defaultValue time.Time) (time.Time, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.Parse(dateLayout, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' for key %s, expected YYYY-MM-DD: %w", valueStr, key, err)
	}
	return value, nil
}
