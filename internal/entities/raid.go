package entities

import (
	"fmt"
	"time"
)

// RaidBoss is the shared weekly encounter: one persistent HP pool attacked
// by many players. A raid "step" is a single attack, bounded by calendar
// week rather than step count.
type RaidBoss struct {
	WeekKey     string   `json:"week_key"`
	Name        string   `json:"name"`
	PrimaryStat StatType `json:"primary_stat"`
	Difficulty  int      `json:"difficulty"`
	MaxHP       int      `json:"max_hp"`
	HP          int      `json:"hp"`

	// DefeatedBy records the character that landed the killing blow
	DefeatedBy string     `json:"defeated_by,omitempty"`
	DefeatedAt *time.Time `json:"defeated_at,omitempty"`
}

// Defeated reports whether the boss HP pool has been emptied
func (b *RaidBoss) Defeated() bool {
	return b.HP <= 0
}

// RaidWeekKey formats the ISO year-week bucket for raid state, e.g.
// "2026-W35". All raid keys for one calendar week share this bucket.
func RaidWeekKey(now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
