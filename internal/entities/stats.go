// Package entities defines the domain types for the quest engine: characters,
// parties, encounters, run sessions, and reward bundles. These are plain data
// types; all mutation goes through the orchestrators.
package entities

// StatType identifies one combat-relevant stat
type StatType string

// Stat types
const (
	StatStrength StatType = "strength"
	StatAgility  StatType = "agility"
	StatWisdom   StatType = "wisdom"
	StatVitality StatType = "vitality"
	StatCharm    StatType = "charm"
)

// AllStats lists every stat type in a stable order
var AllStats = []StatType{StatStrength, StatAgility, StatWisdom, StatVitality, StatCharm}

// ParseStatType maps a raw string to a StatType. Unknown values return
// StatStrength with ok=false so callers can default safely.
func ParseStatType(s string) (StatType, bool) {
	switch StatType(s) {
	case StatStrength, StatAgility, StatWisdom, StatVitality, StatCharm:
		return StatType(s), true
	default:
		return StatStrength, false
	}
}

// ClassID identifies a character class
type ClassID string

// Character classes
const (
	ClassWarrior ClassID = "warrior"
	ClassRogue   ClassID = "rogue"
	ClassMage    ClassID = "mage"
	ClassCleric  ClassID = "cleric"
	ClassRanger  ClassID = "ranger"
)

// ParseClassID maps a raw string to a ClassID, defaulting to warrior
func ParseClassID(s string) (ClassID, bool) {
	switch ClassID(s) {
	case ClassWarrior, ClassRogue, ClassMage, ClassCleric, ClassRanger:
		return ClassID(s), true
	default:
		return ClassWarrior, false
	}
}
