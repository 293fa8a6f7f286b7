package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/questbound/quest-api/internal/entities"
)

func testCharacter() *entities.Character {
	return &entities.Character{
		ID:    "char_1",
		Class: entities.ClassWarrior,
		Level: 40,
		XP:    0,
		HP:    30,
		MaxHP: 60,
		Stats: map[entities.StatType]int{
			entities.StatStrength: 12,
			entities.StatAgility:  8,
		},
	}
}

func TestLevelUpLoopCarriesOverflow(t *testing.T) {
	c := testCharacter()
	c.XP = 500

	// Threshold at level 40 is 480
	levels := 0
	for c.CanLevelUp() {
		c.LevelUp()
		levels++
	}

	assert.Equal(t, 1, levels)
	assert.Equal(t, 41, c.Level)
	assert.Equal(t, 20, c.XP, "overflow XP carries toward the next level")
	assert.Equal(t, 65, c.MaxHP)
	assert.Equal(t, c.MaxHP, c.HP, "leveling fully heals")
}

func TestEffectiveStatFoldsEquippedGearOnly(t *testing.T) {
	c := testCharacter()
	c.Inventory.Equipment = []entities.Equipment{
		{ID: "eq_1", Slot: entities.SlotWeapon, PrimaryStat: entities.StatStrength, StatBonus: 4, Equipped: true},
		{ID: "eq_2", Slot: entities.SlotArmor, PrimaryStat: entities.StatStrength, StatBonus: 9, Equipped: false},
		{ID: "eq_3", Slot: entities.SlotTrinket, PrimaryStat: entities.StatAgility, SecondaryStat: entities.StatStrength, StatBonus: 5, Equipped: true},
	}

	// 12 base + 4 primary + 5/2 secondary; the unequipped armor is inert
	assert.Equal(t, 18, c.EffectiveStat(entities.StatStrength))
	assert.Equal(t, 13, c.EffectiveStat(entities.StatAgility))
}

func TestAsPartyMemberSnapshotsEffectiveStats(t *testing.T) {
	c := testCharacter()
	c.Inventory.Equipment = []entities.Equipment{
		{ID: "eq_1", Slot: entities.SlotWeapon, PrimaryStat: entities.StatStrength, StatBonus: 3, Equipped: true},
	}

	m := c.AsPartyMember()
	assert.Equal(t, 15, m.Stats[entities.StatStrength])
	assert.Equal(t, c.Level, m.Level)
	assert.Equal(t, c.HP, m.HP)

	// Mutating the projection does not touch the character
	m.Stats[entities.StatStrength] = 999
	assert.Equal(t, 12, c.Stats[entities.StatStrength])
}

func TestAddMaterialStacks(t *testing.T) {
	var inv entities.Inventory
	inv.AddMaterial("iron shard", 2)
	inv.AddMaterial("iron shard", 3)
	inv.AddMaterial("glowmoss", 1)
	inv.AddMaterial("glowmoss", 0)

	assert.Len(t, inv.Materials, 2)
	assert.Equal(t, 5, inv.Materials[0].Quantity)
	assert.Equal(t, 1, inv.Materials[1].Quantity)
}
