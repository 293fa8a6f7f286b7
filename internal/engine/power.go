// Package engine implements the pure encounter-resolution core: the party
// power model, the success resolver, and the step reward calculator.
//
// Nothing in this package touches storage, time, or global randomness.
// Every function is reproducible for identical inputs; random decisions
// draw from an injected rng.Roller.
package engine

import (
	"math"

	"github.com/questbound/quest-api/internal/entities"
)

// favoredStats maps each class to the stat it amplifies
var favoredStats = map[entities.ClassID]entities.StatType{
	entities.ClassWarrior: entities.StatStrength,
	entities.ClassRogue:   entities.StatAgility,
	entities.ClassMage:    entities.StatWisdom,
	entities.ClassCleric:  entities.StatVitality,
	entities.ClassRanger:  entities.StatCharm,
}

// ComputePartyPower aggregates the party's combat power against an
// encounter. Each member contributes their effective value of the
// encounter's primary stat (or the approach's override), amplified by 20%
// when the stat is the member's class specialty, plus a level-scaled
// baseline so low-level parties are never mathematically locked out of
// low-tier content.
func ComputePartyPower(
	party []entities.PartyMember,
	enc entities.EncounterDefinition,
	override *entities.StatType,
) int {
	stat := enc.PrimaryStat
	if override != nil {
		stat = *override
	}

	total := 0
	for _, m := range party {
		v := m.Stats[stat]
		if favoredStats[m.Class] == stat {
			v += v / 5
		}
		total += v + 2*m.Level
	}
	return total
}

// ApplyApproach scales a power value by the approach's power multiplier,
// rounded down. The un-multiplied value stays relevant: failure damage is
// always computed from it (see FailureDamage).
func ApplyApproach(power int, approach *entities.Approach) int {
	if approach == nil || approach.PowerMultiplier <= 0 {
		return power
	}
	return int(math.Floor(float64(power) * approach.PowerMultiplier))
}
