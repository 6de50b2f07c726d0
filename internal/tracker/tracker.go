package tracker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"
	"strategyLab/internal/risk"
)

// Config holds the tracker's runtime settings.
type Config struct {
	PollInterval time.Duration // How often Run refreshes prices
	Tiers        []risk.Tier   // Scale-out ladder applied on every price update
}

// Tracker maintains the book of live positions and applies the scale-out
// ladder whenever a price update arrives. All state access is serialized
// through a single mutex; price updates for different contracts never
// interleave mid-ladder.
type Tracker struct {
	cfg    Config
	prices ports.PriceSource
	logger ports.Logger

	// OnPortfolioUpdate, when set, receives a fresh portfolio snapshot after
	// every completed poll cycle. Called outside the state lock.
	OnPortfolioUpdate func(risk.PortfolioMetrics)

	// OnScaleOut, when set, receives every newly executed scale-out event.
	// Called once per event, outside the state lock.
	OnScaleOut func(contractID string, ev domain.ScaleOutEvent)

	// OnPriceError, when set, is called when a price lookup fails during a
	// poll cycle. The cycle continues with the remaining contracts.
	OnPriceError func(contractID string, err error)

	mu        sync.Mutex
	positions map[string]*domain.LivePosition
}

// New creates a position tracker.
func New(cfg Config, prices ports.PriceSource, logger ports.Logger) (*Tracker, error) {
	if prices == nil {
		return nil, fmt.Errorf("%w: price source is required", ports.ErrConfigurationError)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Tracker{
		cfg:       cfg,
		prices:    prices,
		logger:    logger,
		positions: make(map[string]*domain.LivePosition),
	}, nil
}

// Track registers a position. An existing position with the same contract ID
// is replaced, which lets a restarted process re-seed its book from storage.
func (t *Tracker) Track(pos domain.LivePosition) error {
	if pos.ContractID == "" {
		return fmt.Errorf("%w: contract ID is required", ports.ErrConfigurationError)
	}
	if pos.EntryPrice <= 0 || pos.InitialInvestment <= 0 {
		return fmt.Errorf("%w: entry price and initial investment must be positive", ports.ErrConfigurationError)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	p := pos
	t.positions[pos.ContractID] = &p
	return nil
}

// Untrack drops a position from the book. Unknown IDs are a no-op.
func (t *Tracker) Untrack(contractID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.positions, contractID)
}

// OnPrice applies a price update to one tracked position, running the
// scale-out ladder, and returns the updated position.
func (t *Tracker) OnPrice(ctx context.Context, contractID string, price float64, now time.Time) (domain.LivePosition, error) {
	t.mu.Lock()
	pos, ok := t.positions[contractID]
	if !ok {
		t.mu.Unlock()
		return domain.LivePosition{}, fmt.Errorf("%w: %q", ports.ErrPositionNotFound, contractID)
	}

	before := len(pos.ScaleOutHistory)
	updated := risk.ApplyScaleOut(*pos, price, now, t.cfg.Tiers)
	t.positions[contractID] = &updated
	t.mu.Unlock()

	for _, ev := range updated.ScaleOutHistory[before:] {
		t.logger.Info(ctx, "Scale-out tier executed", map[string]interface{}{
			"contract":   contractID,
			"tier":       ev.Tier,
			"price":      ev.Price,
			"tokensSold": ev.TokensSold,
			"recovered":  ev.AmountRecovered,
			"reason":     ev.Reason,
		})
		if t.OnScaleOut != nil {
			t.OnScaleOut(contractID, ev)
		}
	}
	return updated, nil
}

// Snapshot returns copies of all tracked positions, sorted by contract ID.
func (t *Tracker) Snapshot() []domain.LivePosition {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.LivePosition, 0, len(t.positions))
	for _, pos := range t.positions {
		p := *pos
		p.ScaleOutHistory = append([]domain.ScaleOutEvent(nil), pos.ScaleOutHistory...)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractID < out[j].ContractID })
	return out
}

// Portfolio aggregates exposure metrics across the current book. The
// portfolio value is the sum of each position's remaining tokens at its
// latest price.
func (t *Tracker) Portfolio() risk.PortfolioMetrics {
	snapshot := t.Snapshot()

	positions := make([]*domain.LivePosition, len(snapshot))
	var total float64
	for i := range snapshot {
		positions[i] = &snapshot[i]
		total += snapshot[i].RemainingTokens() * snapshot[i].CurrentPrice
	}
	return risk.AggregatePortfolioRisk(positions, total)
}

// Run polls the price source on the configured interval until the context is
// cancelled. A failed price lookup skips that contract for the cycle; the
// loop itself never stops on provider errors.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.Info(ctx, "Position tracker started", map[string]interface{}{
		"pollInterval": t.cfg.PollInterval.String(),
		"tiers":        len(t.cfg.Tiers),
	})

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info(ctx, "Position tracker stopping", nil)
			return ctx.Err()
		case <-ticker.C:
			t.pollOnce(ctx)
		}
	}
}

func (t *Tracker) pollOnce(ctx context.Context) {
	now := time.Now().UTC()
	for _, pos := range t.Snapshot() {
		price, err := t.prices.GetTickerPrice(ctx, pos.ContractID)
		if err != nil {
			t.logger.Warn(ctx, "Price lookup failed, skipping contract this cycle", map[string]interface{}{
				"contract": pos.ContractID,
				"error":    err.Error(),
			})
			if t.OnPriceError != nil {
				t.OnPriceError(pos.ContractID, err)
			}
			continue
		}
		if _, err := t.OnPrice(ctx, pos.ContractID, price, now); err != nil {
			// Untracked between snapshot and update; nothing to do.
			continue
		}
	}

	if t.OnPortfolioUpdate != nil {
		t.OnPortfolioUpdate(t.Portfolio())
	}
}
