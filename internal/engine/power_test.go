package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/questbound/quest-api/internal/engine"
	"github.com/questbound/quest-api/internal/entities"
)

func member(class entities.ClassID, level, str, agi int) entities.PartyMember {
	return entities.PartyMember{
		ID:    "m1",
		Level: level,
		Class: class,
		Stats: map[entities.StatType]int{
			entities.StatStrength: str,
			entities.StatAgility:  agi,
		},
		HP:    50,
		MaxHP: 50,
	}
}

func TestComputePartyPower_SumsPrimaryStat(t *testing.T) {
	enc := entities.EncounterDefinition{PrimaryStat: entities.StatAgility, Difficulty: 10}
	party := []entities.PartyMember{
		member(entities.ClassMage, 3, 5, 10),
		member(entities.ClassMage, 2, 8, 7),
	}

	// agility 10 + 2*3 + agility 7 + 2*2 = 27
	assert.Equal(t, 27, engine.ComputePartyPower(party, enc, nil))
}

func TestComputePartyPower_ClassAmplifiesFavoredStat(t *testing.T) {
	enc := entities.EncounterDefinition{PrimaryStat: entities.StatStrength, Difficulty: 10}

	warrior := []entities.PartyMember{member(entities.ClassWarrior, 1, 10, 0)}
	mage := []entities.PartyMember{member(entities.ClassMage, 1, 10, 0)}

	assert.Greater(t,
		engine.ComputePartyPower(warrior, enc, nil),
		engine.ComputePartyPower(mage, enc, nil),
		"warrior should beat mage on a strength encounter at equal stats")
}

func TestComputePartyPower_ApproachOverrideSwitchesStat(t *testing.T) {
	enc := entities.EncounterDefinition{PrimaryStat: entities.StatStrength, Difficulty: 10}
	party := []entities.PartyMember{member(entities.ClassMage, 1, 2, 20)}

	agility := entities.StatAgility
	withOverride := engine.ComputePartyPower(party, enc, &agility)
	without := engine.ComputePartyPower(party, enc, nil)

	assert.Greater(t, withOverride, without)
}

func TestComputePartyPower_MonotonicInStat(t *testing.T) {
	enc := entities.EncounterDefinition{PrimaryStat: entities.StatStrength, Difficulty: 50}

	prev := -1
	for str := 0; str <= 100; str += 5 {
		power := engine.ComputePartyPower(
			[]entities.PartyMember{member(entities.ClassRogue, 4, str, 3)}, enc, nil)
		assert.GreaterOrEqual(t, power, prev, "power must be non-decreasing in strength")
		prev = power
	}
}

func TestComputePartyPower_LevelBaselineKeepsLowStatsViable(t *testing.T) {
	enc := entities.EncounterDefinition{PrimaryStat: entities.StatStrength, Difficulty: 5}
	party := []entities.PartyMember{member(entities.ClassMage, 10, 0, 0)}

	assert.Positive(t, engine.ComputePartyPower(party, enc, nil),
		"a character with zero in the primary stat still contributes via level")
}

func TestApplyApproach(t *testing.T) {
	tests := []struct {
		name     string
		power    int
		approach *entities.Approach
		want     int
	}{
		{"nil approach", 100, nil, 100},
		{"neutral multiplier", 100, &entities.Approach{PowerMultiplier: 1.0}, 100},
		{"risky multiplier floors", 60, &entities.Approach{PowerMultiplier: 1.3}, 78},
		{"cautious multiplier", 100, &entities.Approach{PowerMultiplier: 0.8}, 80},
		{"zero multiplier treated as unset", 100, &entities.Approach{}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ApplyApproach(tt.power, tt.approach))
		})
	}
}
