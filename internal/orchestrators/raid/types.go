package raid

import (
	"time"

	"github.com/questbound/quest-api/internal/entities"
)

// GetWeeklyBossInput contains parameters for reading this week's boss
type GetWeeklyBossInput struct{}

// GetWeeklyBossOutput contains the shared boss state
type GetWeeklyBossOutput struct {
	Boss *entities.RaidBoss

	// ResetAt is when the next weekly boss takes over
	ResetAt time.Time
}

// AttackInput contains parameters for one raid attack
type AttackInput struct {
	CharacterID string
}

// AttackOutput contains the outcome of one attack
type AttackOutput struct {
	Boss *entities.RaidBoss

	Success     bool
	Damage      int
	KillingBlow bool

	// AttacksUsed is how many of today's attacks the character has spent
	AttacksUsed int

	// Character is the attacker after rewards and any HP loss landed
	Character *entities.Character

	Narrative string
}
