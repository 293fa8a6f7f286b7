package entities

// EncounterCategory tags the flavor of a single encounter
type EncounterCategory string

// Encounter categories
const (
	CategoryCombat   EncounterCategory = "combat"
	CategoryPuzzle   EncounterCategory = "puzzle"
	CategoryTrap     EncounterCategory = "trap"
	CategoryTreasure EncounterCategory = "treasure"
	CategoryBoss     EncounterCategory = "boss"
)

// ParseEncounterCategory maps a raw string to a category, defaulting to
// combat for anything unrecognized
func ParseEncounterCategory(s string) (EncounterCategory, bool) {
	switch EncounterCategory(s) {
	case CategoryCombat, CategoryPuzzle, CategoryTrap, CategoryTreasure, CategoryBoss:
		return EncounterCategory(s), true
	default:
		return CategoryCombat, false
	}
}

// EncounterDefinition is one discrete challenge within a run
type EncounterDefinition struct {
	Name        string            `json:"name"`
	Category    EncounterCategory `json:"category"`
	PrimaryStat StatType          `json:"primary_stat"`
	Difficulty  int               `json:"difficulty"`
	Boss        bool              `json:"boss"`

	// BonusLootChance scales the loot roll gates; 1.0 is baseline
	BonusLootChance float64 `json:"bonus_loot_chance"`

	Approaches []Approach `json:"approaches,omitempty"`
}

// Approach is a tactical option for resolving an encounter. The power
// multiplier raises the value used for the success roll; the risk
// multiplier raises HP loss on failure. Offense and risk are asymmetric:
// failure damage is always computed from un-multiplied power.
type Approach struct {
	Name            string   `json:"name"`
	PrimaryStat     StatType `json:"primary_stat,omitempty"`
	PowerMultiplier float64  `json:"power_multiplier"`
	RiskMultiplier  float64  `json:"risk_multiplier"`
}

// OverrideStat returns the approach's stat override, or nil when the
// encounter's primary stat should be used
func (a *Approach) OverrideStat() *StatType {
	if a == nil || a.PrimaryStat == "" {
		return nil
	}
	s := a.PrimaryStat
	return &s
}
