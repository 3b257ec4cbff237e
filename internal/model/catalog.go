package model

import "math"

// UpgradeSpec defines the price curve and effects of one purchasable upgrade.
// The server prices every purchase from this; client-supplied costs are
// never trusted.
type UpgradeSpec struct {
	BaseCost       int64
	CostMultiplier float64
	PpcIncrease    int64 // points added to each click per level owned
	PpsIncrease    int64 // passive score per second added per level bought
}

// CostAtLevel returns the price of buying the upgrade when `level` copies
// are already owned: floor(baseCost * costMultiplier^level). The cost is
// truncated to an integer before any comparison against the player's score
// so fractional prices can never be exploited.
func (s UpgradeSpec) CostAtLevel(level int) int64 {
	return int64(float64(s.BaseCost) * math.Pow(s.CostMultiplier, float64(level)))
}

// Catalog is the process-wide, read-only upgrade configuration
type Catalog map[string]UpgradeSpec

// ClickBonus returns the total points-per-click bonus granted by the given
// owned upgrade levels.
func (c Catalog) ClickBonus(upgrades map[string]int) int64 {
	var bonus int64
	for id, level := range upgrades {
		if spec, ok := c[id]; ok {
			bonus += spec.PpcIncrease * int64(level)
		}
	}
	return bonus
}

// DefaultCatalog returns the upgrade set shipped with the server
func DefaultCatalog() Catalog {
	return Catalog{
		"auto_clicker": {BaseCost: 10, CostMultiplier: 1.5, PpsIncrease: 1},
		"click_power":  {BaseCost: 25, CostMultiplier: 1.7, PpcIncrease: 1},
		"score_farm":   {BaseCost: 100, CostMultiplier: 1.8, PpsIncrease: 5},
		"factory":      {BaseCost: 500, CostMultiplier: 2.0, PpsIncrease: 20},
		"quantum_rig":  {BaseCost: 2500, CostMultiplier: 2.2, PpsIncrease: 100},
	}
}
