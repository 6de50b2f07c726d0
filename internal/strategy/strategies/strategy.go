package strategies

import (
	"context"
	"fmt"
	"sort"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"
)

// Params holds strategy parameters keyed by name. Missing keys fall back to
// the strategy's defaults, so callers may override any subset.
type Params map[string]float64

// Get returns the value for key, or def when the key is absent.
func (p Params) Get(key string, def float64) float64 {
	if p == nil {
		return def
	}
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// GetInt returns the value for key truncated to an int, or def when absent.
func (p Params) GetInt(key string, def int) int {
	if p == nil {
		return def
	}
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

// Strategy defines a stateless signal generator. Evaluate may only read
// series[0..index]; all state lives in the arguments. Implementations must
// return a hold signal with zero confidence, never an error, when index is
// below the minimum lookback.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Description returns a short human-readable summary.
	Description() string

	// DefaultParams returns the parameter set used when the caller supplies
	// none.
	DefaultParams() Params

	// MinLookback returns the smallest index at which Evaluate can produce a
	// non-hold signal for the given parameters.
	MinLookback(params Params) int

	// Evaluate computes the signal for the candle at index.
	Evaluate(ctx context.Context, series []*domain.Candle, index int, params Params) domain.Signal
}

// Registry is a fixed catalog of the built-in strategies, keyed by name.
type Registry struct {
	strategies map[string]Strategy
	logger     ports.Logger
}

// NewRegistry creates a registry populated with the built-in strategies.
func NewRegistry(logger ports.Logger) (*Registry, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}

	r := &Registry{
		strategies: make(map[string]Strategy),
		logger:     logger,
	}
	r.register(NewMACrossover(logger))
	r.register(NewRSIStrategy(logger))
	r.register(NewMACDStrategy(logger))
	return r, nil
}

func (r *Registry) register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get returns the strategy registered under name. An unknown name is a
// configuration error and must be surfaced before any simulation work.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ports.ErrUnknownStrategy, name)
	}
	return s, nil
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
