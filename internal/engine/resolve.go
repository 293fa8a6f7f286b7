package engine

import (
	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/pkg/rng"
)

// Success chance bounds. Resolutions are never a certainty in either
// direction; the clamp also removes divide-by-zero and softlock edges.
const (
	MinSuccessChance = 0.05
	MaxSuccessChance = 0.95

	// chanceSlope is the per-point slope of the success curve: half a
	// percent per point of power advantage, linear, centered at 0.5 when
	// power equals difficulty.
	chanceSlope = 0.005
)

// Failure damage bounds, before the approach risk multiplier
const (
	minFailureDamage = 5
	maxFailureDamage = 25
)

// SuccessChance converts a power-vs-difficulty comparison into a success
// probability. Strictly increasing in power, strictly decreasing in
// difficulty within the clamp window, and exactly 0.5 at parity.
func SuccessChance(power, difficulty int) float64 {
	chance := 0.5 + chanceSlope*float64(power-difficulty)
	if chance < MinSuccessChance {
		return MinSuccessChance
	}
	if chance > MaxSuccessChance {
		return MaxSuccessChance
	}
	return chance
}

// Resolve performs the weighted random decision: success iff the single
// uniform draw lands at or under the chance.
func Resolve(chance float64, r rng.Roller) bool {
	return r.Float64() <= chance
}

// FailureDamage computes HP lost on a failed step. The base term grows
// with difficulty and with how badly the party was outmatched, clamps to
// [5, 25], then scales by the approach's risk multiplier and truncates.
// Power here is the UN-multiplied party power: an aggressive approach
// raises the roll, not the sturdiness of the party.
func FailureDamage(power, difficulty int, approach *entities.Approach) int {
	deficit := difficulty - power
	if deficit < 0 {
		deficit = 0
	}

	base := 5 + difficulty/8 + deficit/4
	if base < minFailureDamage {
		base = minFailureDamage
	}
	if base > maxFailureDamage {
		base = maxFailureDamage
	}

	risk := 1.0
	if approach != nil && approach.RiskMultiplier > 0 {
		risk = approach.RiskMultiplier
	}

	return int(float64(base) * risk)
}
