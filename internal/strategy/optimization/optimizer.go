package optimization

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"strategyLab/internal/ports"
	"strategyLab/internal/strategy/analytics"
	"strategyLab/internal/strategy/backtesting"
	"strategyLab/internal/strategy/strategies"
)

// ParameterRange defines the sweep over one strategy parameter.
type ParameterRange struct {
	Name  string
	Min   float64
	Max   float64
	Step  float64
	IsInt bool
}

// Result holds the outcome of one parameter combination.
type Result struct {
	Params  strategies.Params
	Metrics *analytics.PerformanceMetrics
	Score   float64
	Err     error // Non-nil when the run itself failed
}

// ScoreFunc reduces a metrics set to a single comparable score.
type ScoreFunc func(*analytics.PerformanceMetrics) float64

// Config holds configuration for the optimizer.
type Config struct {
	Base           backtesting.Config // Run configuration shared by every combination
	Ranges         []ParameterRange
	Score          ScoreFunc // Defaults to DefaultScore
	MaxConcurrency int       // Defaults to runtime.NumCPU()
}

// Optimizer sweeps a parameter grid, backtesting every combination and
// ranking the results by score. Each combination runs in its own goroutine;
// the engine keeps per-run state, so runs are independent.
type Optimizer struct {
	engine *backtesting.Engine
	logger ports.Logger
	cfg    Config
}

// New creates an optimizer around an existing backtest engine.
func New(engine *backtesting.Engine, logger ports.Logger, cfg Config) (*Optimizer, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: backtest engine is required", ports.ErrConfigurationError)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}
	if len(cfg.Ranges) == 0 {
		return nil, fmt.Errorf("%w: at least one parameter range is required", ports.ErrConfigurationError)
	}
	for _, r := range cfg.Ranges {
		if r.Step <= 0 || r.Max < r.Min {
			return nil, fmt.Errorf("%w: malformed range for parameter %q", ports.ErrConfigurationError, r.Name)
		}
	}
	if cfg.Score == nil {
		cfg.Score = DefaultScore
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = runtime.NumCPU()
	}
	return &Optimizer{engine: engine, logger: logger, cfg: cfg}, nil
}

// Optimize backtests every combination in the grid and returns the results
// sorted by score, best first. Individual run failures are reported in their
// Result rather than aborting the sweep.
func (o *Optimizer) Optimize(ctx context.Context) ([]Result, error) {
	combinations := o.combinations()
	o.logger.Info(ctx, "Starting parameter sweep", map[string]interface{}{
		"strategy":     o.cfg.Base.StrategyName,
		"combinations": len(combinations),
		"workers":      o.cfg.MaxConcurrency,
	})

	results := make([]Result, len(combinations))
	sem := make(chan struct{}, o.cfg.MaxConcurrency)
	var wg sync.WaitGroup

	for i, params := range combinations {
		wg.Add(1)
		go func(i int, params strategies.Params) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			runCfg := o.cfg.Base
			runCfg.StrategyParams = params

			run, err := o.engine.Run(ctx, runCfg)
			if err != nil {
				results[i] = Result{Params: params, Err: err}
				return
			}
			results[i] = Result{
				Params:  params,
				Metrics: run.Metrics,
				Score:   o.cfg.Score(run.Metrics),
			}
		}(i, params)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		// Failed runs sink to the bottom.
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// combinations expands the parameter ranges into the full cartesian grid.
func (o *Optimizer) combinations() []strategies.Params {
	var out []strategies.Params
	current := make(strategies.Params)

	var generate func(int)
	generate = func(idx int) {
		if idx == len(o.cfg.Ranges) {
			combination := make(strategies.Params, len(current))
			for k, v := range current {
				combination[k] = v
			}
			out = append(out, combination)
			return
		}

		r := o.cfg.Ranges[idx]
		// Half-step epsilon guards the float comparison at the upper bound.
		for value := r.Min; value <= r.Max+r.Step/2; value += r.Step {
			v := value
			if r.IsInt {
				v = math.Round(v)
			}
			current[r.Name] = v
			generate(idx + 1)
		}
	}
	generate(0)
	return out
}

// DefaultScore balances profitability against drawdown. The profit factor is
// capped so a single lossless run does not dominate the ranking.
func DefaultScore(m *analytics.PerformanceMetrics) float64 {
	if m == nil || m.TotalTrades == 0 {
		return 0
	}
	profitFactor := m.ProfitFactor
	if math.IsInf(profitFactor, 1) || profitFactor > 10 {
		profitFactor = 10
	}
	return m.WinRate*0.4 + profitFactor*10*0.3 + (100-m.MaxDrawdownPct)*0.3
}
