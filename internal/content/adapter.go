// Package content normalizes externally supplied encounter definitions
// into the structures the engine operates on, and ships an embedded
// fallback catalog for when no remote content is available.
//
// The adapter degrades gracefully: unknown or malformed enum strings map
// to safe defaults instead of failing the conversion, so gameplay stays
// available when remote content is partially invalid.
package content

import (
	"github.com/questbound/quest-api/internal/entities"
)

// Safe defaults for malformed external records
const (
	defaultDifficulty      = 1
	defaultPowerMultiplier = 1.0
	defaultRiskMultiplier  = 1.0
)

// ExternalEncounterRecord is the raw shape of one encounter as delivered
// by a remote content service. Enum fields are plain strings on purpose.
type ExternalEncounterRecord struct {
	Name            string                   `json:"name" yaml:"name"`
	Category        string                   `json:"category" yaml:"category"`
	PrimaryStat     string                   `json:"primary_stat" yaml:"primary_stat"`
	Difficulty      int                      `json:"difficulty" yaml:"difficulty"`
	Boss            bool                     `json:"boss" yaml:"boss"`
	BonusLootChance float64                  `json:"bonus_loot_chance" yaml:"bonus_loot_chance"`
	Approaches      []ExternalApproachRecord `json:"approaches" yaml:"approaches"`
}

// ExternalApproachRecord is the raw shape of one approach choice
type ExternalApproachRecord struct {
	Name            string  `json:"name" yaml:"name"`
	PrimaryStat     string  `json:"primary_stat" yaml:"primary_stat"`
	PowerMultiplier float64 `json:"power_multiplier" yaml:"power_multiplier"`
	RiskMultiplier  float64 `json:"risk_multiplier" yaml:"risk_multiplier"`
}

// ToEncounterDefinition converts an external record into the engine's
// encounter type. Unknown categories become combat, unknown stats become
// strength, and non-positive difficulties clamp to 1. Never errors.
func ToEncounterDefinition(rec ExternalEncounterRecord) entities.EncounterDefinition {
	category, _ := entities.ParseEncounterCategory(rec.Category)
	stat, _ := entities.ParseStatType(rec.PrimaryStat)

	difficulty := rec.Difficulty
	if difficulty < defaultDifficulty {
		difficulty = defaultDifficulty
	}

	lootChance := rec.BonusLootChance
	if lootChance <= 0 {
		lootChance = 1.0
	}

	name := rec.Name
	if name == "" {
		name = "Unnamed Encounter"
	}

	def := entities.EncounterDefinition{
		Name:            name,
		Category:        category,
		PrimaryStat:     stat,
		Difficulty:      difficulty,
		Boss:            rec.Boss || category == entities.CategoryBoss,
		BonusLootChance: lootChance,
	}

	for _, a := range rec.Approaches {
		def.Approaches = append(def.Approaches, toApproach(a))
	}

	return def
}

func toApproach(rec ExternalApproachRecord) entities.Approach {
	approach := entities.Approach{
		Name:            rec.Name,
		PowerMultiplier: rec.PowerMultiplier,
		RiskMultiplier:  rec.RiskMultiplier,
	}

	if approach.Name == "" {
		approach.Name = "standard"
	}
	if approach.PowerMultiplier <= 0 {
		approach.PowerMultiplier = defaultPowerMultiplier
	}
	if approach.RiskMultiplier <= 0 {
		approach.RiskMultiplier = defaultRiskMultiplier
	}

	// Stat overrides are optional; only valid values carry through
	if stat, ok := entities.ParseStatType(rec.PrimaryStat); ok {
		approach.PrimaryStat = stat
	}

	return approach
}
