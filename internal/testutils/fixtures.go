package testutils

import (
	"time"

	"github.com/questbound/quest-api/internal/entities"
)

// NewTestCharacter builds a level-5 warrior with sane defaults for tests
func NewTestCharacter(id string) *entities.Character {
	return &entities.Character{
		ID:       id,
		PlayerID: "player_" + id,
		Name:     "Testil the Brave",
		Class:    entities.ClassWarrior,
		Level:    5,
		XP:       0,
		Gold:     100,
		HP:       50,
		MaxHP:    50,
		Stats: map[entities.StatType]int{
			entities.StatStrength: 12,
			entities.StatAgility:  8,
			entities.StatWisdom:   6,
			entities.StatVitality: 10,
			entities.StatCharm:    5,
		},
		Counters: entities.AttemptCounters{
			ExpeditionKeys: 3,
		},
		UpdatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

// NewTestEncounter builds a plain combat encounter at the given difficulty
func NewTestEncounter(name string, difficulty int) entities.EncounterDefinition {
	return entities.EncounterDefinition{
		Name:            name,
		Category:        entities.CategoryCombat,
		PrimaryStat:     entities.StatStrength,
		Difficulty:      difficulty,
		BonusLootChance: 1.0,
	}
}
