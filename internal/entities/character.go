package entities

import "time"

// Character is the persistent progression record for one player character.
// Combat math never reads a Character directly; it reads the PartyMember
// projection produced by AsPartyMember.
type Character struct {
	ID        string  `json:"id"`
	PlayerID  string  `json:"player_id"`
	PartnerID string  `json:"partner_id,omitempty"`
	Name      string  `json:"name"`
	Class     ClassID `json:"class"`

	Level int `json:"level"`
	XP    int `json:"xp"`
	Gold  int `json:"gold"`

	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`

	Stats map[StatType]int `json:"stats"`

	// BondXP is the shared progression currency earned with a linked
	// partner, only from cooperative runs.
	BondXP int `json:"bond_xp"`

	// Streak counts consecutive days with at least one completed run
	Streak int `json:"streak"`

	Counters  AttemptCounters `json:"counters"`
	Inventory Inventory       `json:"inventory"`

	UpdatedAt time.Time `json:"updated_at"`
}

// AttemptCounters tracks daily gating state. Caps are enforced by the
// progress orchestrator before a run session is ever created; they are
// not part of the run session itself. Raid attack caps live with the
// shared raid record instead, since that state is already per-week in
// redis.
type AttemptCounters struct {
	// ArenaDay is the YYYY-MM-DD the arena counter was last reset
	ArenaDay      string `json:"arena_day"`
	ArenaAttempts int    `json:"arena_attempts"`

	// ExpeditionKeys are consumed one per expedition launch
	ExpeditionKeys int `json:"expedition_keys"`

	// StreakDay is the YYYY-MM-DD the daily streak last advanced
	StreakDay string `json:"streak_day"`
}

// XPToLevel returns the experience required to advance past the given level
func XPToLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return level * 12
}

// CanLevelUp reports whether the character has banked enough XP to level
func (c *Character) CanLevelUp() bool {
	return c.XP >= XPToLevel(c.Level)
}

// LevelUp consumes one level's worth of XP and applies level gains.
// Callers loop: rewards large enough for multiple levels apply them all.
func (c *Character) LevelUp() {
	c.XP -= XPToLevel(c.Level)
	c.Level++
	c.MaxHP += 5
	c.HP = c.MaxHP
}

// EffectiveStat returns the base stat plus all equipped gear bonuses
func (c *Character) EffectiveStat(stat StatType) int {
	total := c.Stats[stat]
	for _, eq := range c.Inventory.Equipment {
		if !eq.Equipped {
			continue
		}
		if eq.PrimaryStat == stat {
			total += eq.StatBonus
		}
		if eq.SecondaryStat == stat {
			total += eq.StatBonus / 2
		}
	}
	return total
}

// AsPartyMember produces the read-only combat projection of this character
// with equipment bonuses folded in
func (c *Character) AsPartyMember() PartyMember {
	effective := make(map[StatType]int, len(AllStats))
	for _, stat := range AllStats {
		effective[stat] = c.EffectiveStat(stat)
	}
	return PartyMember{
		ID:    c.ID,
		Level: c.Level,
		Class: c.Class,
		Stats: effective,
		HP:    c.HP,
		MaxHP: c.MaxHP,
	}
}

// PartyMember is a read-only projection of a character usable in combat
// math. Stats are effective values: base plus equipment bonuses.
type PartyMember struct {
	ID    string           `json:"id"`
	Level int              `json:"level"`
	Class ClassID          `json:"class"`
	Stats map[StatType]int `json:"stats"`
	HP    int              `json:"hp"`
	MaxHP int              `json:"max_hp"`
}
