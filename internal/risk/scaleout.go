package risk

import (
	"sort"
	"time"

	"strategyLab/internal/domain"
)

// Tier describes one profit milestone of a scale-out ladder.
type Tier struct {
	ID             domain.TierID // Stable identifier; a tier fires at most once per position
	TriggerPercent float64       // Profit percent at which the tier arms
	ExitPercent    float64       // Percent of the then-remaining tokens to sell
	Reason         string        // Human-readable description recorded on the event
	SecureInitial  bool          // Marks the tier that recovers the initial investment
}

// ApplyScaleOut runs the tiered scale-out ladder against a price update and
// returns the updated position. The input position is not mutated.
//
// Tiers are evaluated in ascending trigger order so a sudden price jump
// cannot skip lower tiers. A tier whose ID already appears in the position's
// history is skipped, which makes the whole operation idempotent for a given
// price.
func ApplyScaleOut(pos domain.LivePosition, currentPrice float64, now time.Time, tiers []Tier) domain.LivePosition {
	updated := pos
	updated.ScaleOutHistory = append([]domain.ScaleOutEvent(nil), pos.ScaleOutHistory...)
	updated.CurrentPrice = currentPrice

	if updated.EntryPrice > 0 && currentPrice > 0 {
		profitPercent := (currentPrice - updated.EntryPrice) / updated.EntryPrice * 100

		ordered := append([]Tier(nil), tiers...)
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].TriggerPercent < ordered[j].TriggerPercent
		})

		for _, tier := range ordered {
			if profitPercent < tier.TriggerPercent {
				break
			}
			if updated.HasScaledOut(tier.ID) {
				continue
			}

			remaining := updated.RemainingTokens()
			tokensSold := remaining * tier.ExitPercent / 100
			if tokensSold <= 0 {
				continue
			}

			updated.ScaleOutHistory = append(updated.ScaleOutHistory, domain.ScaleOutEvent{
				Tier:               tier.ID,
				Time:               now,
				Price:              currentPrice,
				TokensSold:         tokensSold,
				AmountRecovered:    tokensSold * currentPrice,
				Reason:             tier.Reason,
				PercentOfRemaining: tier.ExitPercent,
			})
			if tier.SecureInitial {
				updated.SecuredInitial = true
			}
		}
	}

	updated.CurrentValue = updated.RemainingTokens() * currentPrice
	updated.PNL = updated.RecoveredValue() + updated.CurrentValue - updated.InitialInvestment
	if updated.InitialInvestment > 0 {
		updated.ROI = updated.PNL / updated.InitialInvestment * 100
	}
	return updated
}
