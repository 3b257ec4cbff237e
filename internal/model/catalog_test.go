package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostAtLevelProgression(t *testing.T) {
	spec := UpgradeSpec{BaseCost: 10, CostMultiplier: 1.5}

	assert.Equal(t, int64(10), spec.CostAtLevel(0))
	assert.Equal(t, int64(15), spec.CostAtLevel(1))
	// 10 * 1.5^2 = 22.5, truncated
	assert.Equal(t, int64(22), spec.CostAtLevel(2))
	assert.Equal(t, int64(33), spec.CostAtLevel(3))
}

func TestClickBonus(t *testing.T) {
	catalog := Catalog{
		"click_power": {BaseCost: 5, CostMultiplier: 2.0, PpcIncrease: 2},
		"auto":        {BaseCost: 10, CostMultiplier: 1.5, PpsIncrease: 1},
	}

	assert.Equal(t, int64(0), catalog.ClickBonus(nil))
	assert.Equal(t, int64(4), catalog.ClickBonus(map[string]int{"click_power": 2}))
	// Upgrades missing from the catalog contribute nothing
	assert.Equal(t, int64(2), catalog.ClickBonus(map[string]int{"click_power": 1, "retired": 3}))
}

func TestActionValidate(t *testing.T) {
	assert.NoError(t, Action{Type: ActionClick}.Validate())
	assert.NoError(t, Action{Type: ActionBuyUpgrade, Data: ActionData{UpgradeID: "x"}}.Validate())
	assert.ErrorIs(t, Action{Type: ActionBuyUpgrade}.Validate(), ErrInvalidAction)
	assert.ErrorIs(t, Action{Type: "unknown"}.Validate(), ErrInvalidAction)
}
