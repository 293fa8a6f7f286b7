package engine

import (
	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/pkg/rng"
)

// Fallback narratives when a (category, outcome) pool is missing
const (
	fallbackSuccess = "Success!"
	fallbackFailure = "Failed!"
)

var successNarratives = map[entities.EncounterCategory][]string{
	entities.CategoryCombat: {
		"The party cuts through the enemy line without breaking stride.",
		"Steel flashes and the foe crumples.",
		"A coordinated strike ends the fight before it begins.",
	},
	entities.CategoryPuzzle: {
		"The mechanism clicks open after a moment of study.",
		"An old riddle, a quick answer, an open door.",
		"The runes rearrange themselves and the way is clear.",
	},
	entities.CategoryTrap: {
		"A pressure plate spotted just in time.",
		"The party slips past the tripwire untouched.",
		"Darts whistle overhead as everyone rolls clear.",
	},
	entities.CategoryTreasure: {
		"The chest creaks open, unguarded after all.",
		"Coins spill across the floor as the lid lifts.",
	},
	entities.CategoryBoss: {
		"The beast falls with an earth-shaking crash.",
		"Against all odds, the guardian kneels defeated.",
	},
}

var failureNarratives = map[entities.EncounterCategory][]string{
	entities.CategoryCombat: {
		"The line breaks and the party falls back, bloodied.",
		"A counterattack lands harder than expected.",
	},
	entities.CategoryPuzzle: {
		"The mechanism resets with a hiss of escaping steam.",
		"A wrong answer, and the walls shudder in reply.",
	},
	entities.CategoryTrap: {
		"The floor gives way beneath the rearguard.",
		"A click underfoot, then fire.",
	},
	entities.CategoryTreasure: {
		"The chest was a mimic. Of course it was a mimic.",
	},
	entities.CategoryBoss: {
		"The guardian shrugs off the assault and answers in kind.",
	},
}

// Narrative selects a story line for one resolved step, uniformly at
// random from the (category, outcome) pool. Never returns an empty string:
// unknown categories fall back to a generic line.
func Narrative(category entities.EncounterCategory, success bool, r rng.Roller) string {
	var pool []string
	var fallback string
	if success {
		pool = successNarratives[category]
		fallback = fallbackSuccess
	} else {
		pool = failureNarratives[category]
		fallback = fallbackFailure
	}

	if len(pool) == 0 {
		return fallback
	}
	return pool[r.IntN(len(pool))]
}
