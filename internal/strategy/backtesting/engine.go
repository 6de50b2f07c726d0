package backtesting

import (
	"context"
	"fmt"
	"time"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"
	"strategyLab/internal/strategy/analytics"
	"strategyLab/internal/strategy/strategies"
)

// RiskSettings holds the per-run risk management configuration.
type RiskSettings struct {
	PositionSizePct float64 // Percent of current capital committed per entry
	StopLossPct     float64 // Stop distance below entry in percent, 0 disables
	TakeProfitPct   float64 // Target distance above entry in percent, 0 disables
}

// Config holds the inputs of a single backtest run.
type Config struct {
	Symbol         string
	Timeframe      domain.Timeframe
	StartTime      time.Time
	EndTime        time.Time
	InitialCapital float64
	StrategyName   string
	StrategyParams strategies.Params // nil selects the strategy defaults
	Risk           RiskSettings
	RiskFreeRate   float64 // Annualized, used for the Sharpe ratio
}

// Result aggregates everything a run produced. It contains no internal
// handles and is safe to persist or transmit as-is.
type Result struct {
	Symbol         string
	Timeframe      domain.Timeframe
	StrategyName   string
	StartTime      time.Time
	EndTime        time.Time
	InitialCapital float64
	FinalCapital   float64
	Trades         []domain.ClosedTrade
	EquityCurve    []analytics.EquityPoint
	DailyReturns   []analytics.PeriodReturn
	Metrics        *analytics.PerformanceMetrics
}

// Engine replays historical candles through a registered strategy and
// manages at most one open simulated position per run. Each Run invocation
// owns its own state, so independent runs may execute concurrently.
type Engine struct {
	provider ports.HistoricalDataProvider
	registry *strategies.Registry
	logger   ports.Logger
}

// EngineConfig holds the collaborators of the engine.
type EngineConfig struct {
	Provider ports.HistoricalDataProvider
	Registry *strategies.Registry
	Logger   ports.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("%w: historical data provider is required", ports.ErrConfigurationError)
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("%w: strategy registry is required", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}
	return &Engine{provider: cfg.Provider, registry: cfg.Registry, logger: cfg.Logger}, nil
}

// runState is the mutable state folded over the candle series. Capital is
// mutated only when a position closes, and only once per close event.
type runState struct {
	capital      float64
	open         *domain.SimulatedPosition
	trades       []domain.ClosedTrade
	equityCurve  []analytics.EquityPoint
	dailyReturns []analytics.PeriodReturn
	refDay       time.Time
	refEquity    float64
}

// Run executes one backtest. Configuration errors (unknown strategy,
// malformed date range, bad timeframe) are reported before any data is
// fetched; provider failures propagate unretried.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	// Resolve the strategy before fetching anything so a bad name never
	// starts a partial run.
	strat, err := e.registry.Get(cfg.StrategyName)
	if err != nil {
		return nil, err
	}
	params := cfg.StrategyParams
	if params == nil {
		params = strat.DefaultParams()
	}

	series, err := e.provider.Fetch(ctx, cfg.Symbol, cfg.Timeframe, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return nil, fmt.Errorf("fetching historical series for %s: %w", cfg.Symbol, err)
	}
	if len(series) == 0 {
		e.logger.Warn(ctx, "Historical series is empty, producing empty result", map[string]interface{}{
			"symbol": cfg.Symbol, "timeframe": cfg.Timeframe,
		})
	}

	e.logger.Info(ctx, "Starting backtest", map[string]interface{}{
		"symbol":    cfg.Symbol,
		"timeframe": cfg.Timeframe,
		"strategy":  cfg.StrategyName,
		"candles":   len(series),
		"capital":   cfg.InitialCapital,
	})

	state := &runState{capital: cfg.InitialCapital}

	for i, candle := range series {
		signal := strat.Evaluate(ctx, series, i, params)

		// Exactly one equity point per candle.
		equity := state.capital + unrealized(state.open, candle.Close)
		state.equityCurve = append(state.equityCurve, analytics.EquityPoint{
			Time:   candle.OpenTime,
			Equity: equity,
		})
		state.markDay(candle.OpenTime, equity, i == 0)

		// Stop and target are checked against the close before the fresh
		// signal; a hit closes at the stop/target price and consumes the
		// candle.
		if state.open != nil {
			if cfg.Risk.StopLossPct > 0 && candle.Close <= state.open.StopLossPrice {
				state.close(state.open.StopLossPrice, candle.OpenTime, domain.ExitReasonStopLoss)
				continue
			}
			if cfg.Risk.TakeProfitPct > 0 && candle.Close >= state.open.TakeProfitPrice {
				state.close(state.open.TakeProfitPrice, candle.OpenTime, domain.ExitReasonTakeProfit)
				continue
			}
		}

		switch signal.Action {
		case domain.ActionBuy:
			if state.open == nil {
				state.openLong(cfg, candle)
			}
		case domain.ActionSell:
			if state.open != nil {
				state.close(candle.Close, candle.OpenTime, domain.ExitReasonSignal)
			}
		}
	}

	// Any still-open position is force-closed at the last close.
	if state.open != nil {
		last := series[len(series)-1]
		state.close(last.Close, last.OpenTime, domain.ExitReasonEndOfBacktest)
	}

	metrics := analytics.Analyze(state.trades, state.equityCurve, state.dailyReturns, cfg.RiskFreeRate)

	e.logger.Info(ctx, "Backtest finished", map[string]interface{}{
		"trades":       len(state.trades),
		"finalCapital": state.capital,
		"winRate":      metrics.WinRate,
	})

	return &Result{
		Symbol:         cfg.Symbol,
		Timeframe:      cfg.Timeframe,
		StrategyName:   cfg.StrategyName,
		StartTime:      cfg.StartTime,
		EndTime:        cfg.EndTime,
		InitialCapital: cfg.InitialCapital,
		FinalCapital:   state.capital,
		Trades:         state.trades,
		EquityCurve:    state.equityCurve,
		DailyReturns:   state.dailyReturns,
		Metrics:        metrics,
	}, nil
}

func validate(cfg Config) error {
	if !cfg.Timeframe.IsValid() {
		return fmt.Errorf("%w: unsupported timeframe %q", ports.ErrConfigurationError, cfg.Timeframe)
	}
	if cfg.StartTime.IsZero() || cfg.EndTime.IsZero() || !cfg.StartTime.Before(cfg.EndTime) {
		return fmt.Errorf("%w: start time must precede end time", ports.ErrConfigurationError)
	}
	if cfg.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive", ports.ErrConfigurationError)
	}
	if cfg.Risk.PositionSizePct <= 0 || cfg.Risk.PositionSizePct > 100 {
		return fmt.Errorf("%w: position size percentage must be in (0, 100]", ports.ErrConfigurationError)
	}
	if cfg.Risk.StopLossPct < 0 || cfg.Risk.TakeProfitPct < 0 {
		return fmt.Errorf("%w: stop-loss and take-profit percentages cannot be negative", ports.ErrConfigurationError)
	}
	return nil
}

// unrealized is the mark-to-market value of an open position at the given
// price. Zero when no position is open.
func unrealized(pos *domain.SimulatedPosition, price float64) float64 {
	if pos == nil {
		return 0
	}
	return (price - pos.EntryPrice) * pos.Quantity
}

// markDay appends a daily return on the first candle of each new calendar
// day, measured against the equity snapshot taken at the previous day's
// boundary.
func (s *runState) markDay(ts time.Time, equity float64, first bool) {
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	if first {
		s.refDay = day
		s.refEquity = equity
		return
	}
	if day.Equal(s.refDay) {
		return
	}
	if s.refEquity > 0 {
		s.dailyReturns = append(s.dailyReturns, analytics.PeriodReturn{
			Time:   ts,
			Return: (equity - s.refEquity) / s.refEquity,
		})
	}
	s.refDay = day
	s.refEquity = equity
}

// openLong enters a long position sized from current capital. Stop and
// target prices are fixed at entry and never re-evaluated.
func (s *runState) openLong(cfg Config, candle *domain.Candle) {
	size := s.capital * cfg.Risk.PositionSizePct / 100
	if size <= 0 || candle.Close <= 0 {
		return
	}

	pos := &domain.SimulatedPosition{
		Symbol:     cfg.Symbol,
		Direction:  domain.DirectionLong,
		EntryTime:  candle.OpenTime,
		EntryPrice: candle.Close,
		Quantity:   size / candle.Close,
	}
	if cfg.Risk.StopLossPct > 0 {
		pos.StopLossPrice = candle.Close * (1 - cfg.Risk.StopLossPct/100)
	}
	if cfg.Risk.TakeProfitPct > 0 {
		pos.TakeProfitPrice = candle.Close * (1 + cfg.Risk.TakeProfitPct/100)
	}
	s.open = pos
}

// close converts the open position into a ClosedTrade at the given price.
// This is the only place capital is mutated.
func (s *runState) close(exitPrice float64, exitTime time.Time, reason domain.ExitReason) {
	pos := s.open
	profit := (exitPrice - pos.EntryPrice) * pos.Quantity

	trade := domain.ClosedTrade{
		Symbol:     pos.Symbol,
		Direction:  pos.Direction,
		EntryTime:  pos.EntryTime,
		ExitTime:   exitTime,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   pos.Quantity,
		Profit:     profit,
		ProfitPct:  (exitPrice - pos.EntryPrice) / pos.EntryPrice * 100,
		ExitReason: reason,
	}

	s.capital += profit
	s.trades = append(s.trades, trade)
	s.open = nil
}
