package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questbound/quest-api/internal/content"
	"github.com/questbound/quest-api/internal/entities"
)

func TestToEncounterDefinition_ValidRecord(t *testing.T) {
	rec := content.ExternalEncounterRecord{
		Name:            "Mirror Maze",
		Category:        "puzzle",
		PrimaryStat:     "wisdom",
		Difficulty:      55,
		BonusLootChance: 1.4,
		Approaches: []content.ExternalApproachRecord{
			{Name: "brute force", PrimaryStat: "strength", PowerMultiplier: 1.2, RiskMultiplier: 1.3},
		},
	}

	def := content.ToEncounterDefinition(rec)

	assert.Equal(t, entities.CategoryPuzzle, def.Category)
	assert.Equal(t, entities.StatWisdom, def.PrimaryStat)
	assert.Equal(t, 55, def.Difficulty)
	require.Len(t, def.Approaches, 1)
	assert.Equal(t, entities.StatStrength, def.Approaches[0].PrimaryStat)
}

func TestToEncounterDefinition_MalformedEnumsDefault(t *testing.T) {
	rec := content.ExternalEncounterRecord{
		Name:        "Corrupted Record",
		Category:    "disco_party",
		PrimaryStat: "vibes",
		Difficulty:  -3,
	}

	def := content.ToEncounterDefinition(rec)

	assert.Equal(t, entities.CategoryCombat, def.Category, "unknown category defaults to combat")
	assert.Equal(t, entities.StatStrength, def.PrimaryStat, "unknown stat defaults to strength")
	assert.Equal(t, 1, def.Difficulty, "non-positive difficulty clamps to 1")
	assert.Equal(t, 1.0, def.BonusLootChance)
}

func TestToEncounterDefinition_BossCategoryImpliesBossFlag(t *testing.T) {
	def := content.ToEncounterDefinition(content.ExternalEncounterRecord{
		Name:       "Warden",
		Category:   "boss",
		Difficulty: 90,
	})
	assert.True(t, def.Boss)
}

func TestToEncounterDefinition_ApproachDefaults(t *testing.T) {
	def := content.ToEncounterDefinition(content.ExternalEncounterRecord{
		Name:       "X",
		Difficulty: 10,
		Approaches: []content.ExternalApproachRecord{
			{PowerMultiplier: -1, RiskMultiplier: 0},
		},
	})

	require.Len(t, def.Approaches, 1)
	a := def.Approaches[0]
	assert.Equal(t, "standard", a.Name)
	assert.Equal(t, 1.0, a.PowerMultiplier)
	assert.Equal(t, 1.0, a.RiskMultiplier)
	assert.Empty(t, a.PrimaryStat, "invalid stat override is dropped, not defaulted")
}
