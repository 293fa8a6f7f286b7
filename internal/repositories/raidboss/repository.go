// Package raidboss provides the repository interface and types for the
// weekly raid boss: a single HP pool shared by every attacker, bucketed by
// ISO week, plus per-player daily attack counters.
package raidboss

import (
	"context"

	"github.com/questbound/quest-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=raidbossmock github.com/questbound/quest-api/internal/repositories/raidboss Repository

// EnsureInput contains parameters for initializing the week's boss
type EnsureInput struct {
	Boss *entities.RaidBoss
}

// EnsureOutput contains the stored boss, which may predate this call
type EnsureOutput struct {
	Boss *entities.RaidBoss
}

// GetInput contains parameters for retrieving the week's boss
type GetInput struct {
	WeekKey string
}

// GetOutput contains the result of retrieving the week's boss
type GetOutput struct {
	Boss *entities.RaidBoss
}

// ApplyDamageInput contains parameters for one attack's damage
type ApplyDamageInput struct {
	WeekKey    string
	Damage     int
	AttackerID string
}

// ApplyDamageOutput reports the boss state after the attack
type ApplyDamageOutput struct {
	Boss *entities.RaidBoss

	// KillingBlow is true when this attack emptied the HP pool
	KillingBlow bool
}

// IncrAttackCountInput contains parameters for spending one daily attack
type IncrAttackCountInput struct {
	WeekKey     string
	Day         string
	CharacterID string
}

// IncrAttackCountOutput reports the attack count after incrementing
type IncrAttackCountOutput struct {
	Attacks int
}

// Repository defines the interface for raid boss storage operations
type Repository interface {
	// Ensure stores the boss for its week if one is not already present
	// and returns whichever record won
	Ensure(ctx context.Context, input EnsureInput) (*EnsureOutput, error)

	// Get retrieves the boss for a week
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ApplyDamage atomically subtracts damage from the shared HP pool,
	// flooring at zero and recording the killing blow
	ApplyDamage(ctx context.Context, input ApplyDamageInput) (*ApplyDamageOutput, error)

	// IncrAttackCount spends one of a character's daily attacks and
	// returns the new count
	IncrAttackCount(ctx context.Context, input IncrAttackCountInput) (*IncrAttackCountOutput, error)
}
