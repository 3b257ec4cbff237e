package game

import (
	"fmt"
	"time"

	"github.com/tapforge/clicker-server/internal/model"
)

// Config holds the server policy knobs for batch reconciliation
type Config struct {
	// ClickRate is the number of clicks admitted per second of elapsed
	// time since the last reconciliation.
	ClickRate float64
}

// DefaultConfig returns the default reconciliation policy
func DefaultConfig() Config {
	return Config{
		ClickRate: 10,
	}
}

// Reconcile folds passive income and a client action batch into the player
// record, or fails without touching it. The caller persists the mutated
// record only when Reconcile returns nil, which makes the batch atomic:
// a rejected batch leaves the stored state exactly as it was.
//
// Processing order matters and is fixed:
//  1. passive income accrues from the elapsed time since LastUpdated
//  2. the click count is admitted against a ceiling from that same elapsed
//     time (one shared measurement, so accrual and admission cannot skew)
//  3. clicks are applied, valued at the points-per-click in effect when the
//     batch began
//  4. purchases are applied in batch order against the running score, so a
//     batch may buy an upgrade only affordable after an earlier one
func Reconcile(p *model.Player, batch []model.Action, now time.Time, catalog model.Catalog, cfg Config) error {
	// Stored timestamps without zone information are treated as UTC
	now = now.UTC()
	last := p.LastUpdated.UTC()
	elapsed := now.Sub(last).Seconds()
	if elapsed < 0 {
		// Clock skew between saves must not produce negative accrual, and
		// LastUpdated never moves backwards: a regressed timestamp would let
		// the next batch re-accrue the skewed window.
		elapsed = 0
		now = last
	}

	p.Score += int64(float64(p.Sps) * elapsed)

	clicks := 0
	for _, action := range batch {
		if err := action.Validate(); err != nil {
			return err
		}
		if action.Type == model.ActionClick {
			clicks++
		}
	}

	maxClicks := int(elapsed * cfg.ClickRate)
	if maxClicks < 1 {
		maxClicks = 1
	}
	if clicks > maxClicks {
		return fmt.Errorf("%w: %d clicks in %.2fs (max %d)", model.ErrClickRateExceeded, clicks, elapsed, maxClicks)
	}

	clickValue := 1 + catalog.ClickBonus(p.Upgrades)
	p.Score += int64(clicks) * clickValue

	for _, action := range batch {
		if action.Type != model.ActionBuyUpgrade {
			continue
		}
		id := action.Data.UpgradeID
		spec, ok := catalog[id]
		if !ok {
			return fmt.Errorf("%w: %q", model.ErrUnknownUpgrade, id)
		}

		cost := spec.CostAtLevel(p.UpgradeLevel(id))
		if p.Score < cost {
			return fmt.Errorf("%w: %q costs %d, have %d", model.ErrInsufficientFunds, id, cost, p.Score)
		}

		p.Score -= cost
		if p.Upgrades == nil {
			p.Upgrades = make(map[string]int)
		}
		p.Upgrades[id]++
		p.Sps += spec.PpsIncrease
	}

	p.LastUpdated = now
	return nil
}
