// Package progress implements reward application and attempt gating: the
// only component that mutates a character's wallet, inventory, level, and
// counters. Run resolution produces a RewardBundle; everything here is
// about landing that bundle exactly once.
package progress

//go:generate mockgen -destination=mock/mock_service.go -package=progressmock github.com/questbound/quest-api/internal/orchestrators/progress Service

import (
	"context"
	"log/slog"

	"github.com/questbound/quest-api/internal/clients/profile"
	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/errors"
	"github.com/questbound/quest-api/internal/pkg/clock"
	"github.com/questbound/quest-api/internal/pkg/locks"
	"github.com/questbound/quest-api/internal/repositories/character"
)

const (
	// ArenaDailyAttempts caps arena runs per character per calendar day
	ArenaDailyAttempts = 3

	// reviveFloorHP is where a character lands after a run drains them;
	// a failed run hurts, it never bricks the character
	reviveFloorHP = 1

	dayLayout = "2006-01-02"
)

// Service defines the interface for progression operations
type Service interface {
	// SpendAttempt checks and spends the gating resource for starting a
	// run: the daily arena attempt or an expedition key. Dungeons are
	// ungated. Exhausted caps return CodeResourceExhausted.
	SpendAttempt(ctx context.Context, input *SpendAttemptInput) (*SpendAttemptOutput, error)

	// ApplyRewards lands a reward bundle on one character: XP with the
	// level-up loop, gold, drops, bond XP, HP loss with the revive floor,
	// and the daily streak
	ApplyRewards(ctx context.Context, input *ApplyRewardsInput) (*ApplyRewardsOutput, error)

	// ApplyPartyRewards lands one bundle across a party: gold is split
	// by truncating division, XP and bond XP pay in full per member, and
	// item drops go to the party leader
	ApplyPartyRewards(ctx context.Context, input *ApplyPartyRewardsInput) (*ApplyPartyRewardsOutput, error)
}

// Config holds the dependencies for the progress orchestrator
type Config struct {
	CharacterRepo character.Repository
	ProfileStore  profile.ProfileStore
	Clock         clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.ProfileStore == nil {
		vb.RequiredField("ProfileStore")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	characterRepo character.Repository
	profileStore  profile.ProfileStore
	clock         clock.Clock

	// charLocks serializes all writes to one character. A background
	// auto-resolve racing a manual claim must not lose updates.
	charLocks *locks.Keyed
}

// NewOrchestrator creates a new progress orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		characterRepo: cfg.CharacterRepo,
		profileStore:  cfg.ProfileStore,
		clock:         cfg.Clock,
		charLocks:     locks.NewKeyed(),
	}, nil
}

func (o *orchestrator) SpendAttempt(ctx context.Context, input *SpendAttemptInput) (*SpendAttemptOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	unlock := o.charLocks.Lock(input.CharacterID)
	defer unlock()

	got, err := o.characterRepo.Get(ctx, character.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	char := got.Character

	switch input.Mode {
	case entities.ModeDungeon:
		// Dungeons cost nothing to enter

	case entities.ModeArena:
		today := o.clock.Now().UTC().Format(dayLayout)
		if char.Counters.ArenaDay != today {
			char.Counters.ArenaDay = today
			char.Counters.ArenaAttempts = 0
		}
		if char.Counters.ArenaAttempts >= ArenaDailyAttempts {
			return nil, errors.ResourceExhaustedf("arena attempts for %s are spent", today)
		}
		char.Counters.ArenaAttempts++

	case entities.ModeExpedition:
		if char.Counters.ExpeditionKeys <= 0 {
			return nil, errors.ResourceExhausted("no expedition keys remaining")
		}
		char.Counters.ExpeditionKeys--

	default:
		return nil, errors.InvalidArgumentf("unknown run mode %q", input.Mode)
	}

	updated, err := o.characterRepo.Update(ctx, character.UpdateInput{Character: char})
	if err != nil {
		return nil, err
	}

	return &SpendAttemptOutput{Character: updated.Character}, nil
}

func (o *orchestrator) ApplyRewards(ctx context.Context, input *ApplyRewardsInput) (*ApplyRewardsOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	unlock := o.charLocks.Lock(input.CharacterID)
	defer unlock()

	got, err := o.characterRepo.Get(ctx, character.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	char := got.Character

	levels := o.applyBundle(char, input.Rewards, input.RunSucceeded)

	updated, err := o.characterRepo.Update(ctx, character.UpdateInput{Character: char})
	if err != nil {
		return nil, err
	}

	o.pushSnapshot(ctx, updated.Character)

	return &ApplyRewardsOutput{
		Character:    updated.Character,
		LevelsGained: levels,
	}, nil
}

func (o *orchestrator) ApplyPartyRewards(ctx context.Context, input *ApplyPartyRewardsInput) (*ApplyPartyRewardsOutput, error) {
	if input == nil || len(input.CharacterIDs) == 0 {
		return nil, errors.InvalidArgument("at least one character ID is required")
	}

	// Gold splits by truncating division; the remainder evaporates
	goldShare := input.Rewards.Gold / len(input.CharacterIDs)

	out := &ApplyPartyRewardsOutput{}
	for i, id := range input.CharacterIDs {
		share := input.Rewards
		share.Gold = goldShare
		if i > 0 {
			// Item drops go to the party leader only
			share.Drops = nil
		}

		applied, err := o.ApplyRewards(ctx, &ApplyRewardsInput{
			CharacterID:  id,
			Rewards:      share,
			RunSucceeded: input.RunSucceeded,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to apply party rewards to character %s", id)
		}
		out.Characters = append(out.Characters, applied.Character)
	}

	return out, nil
}

// applyBundle mutates the character in place and returns levels gained
func (o *orchestrator) applyBundle(char *entities.Character, bundle entities.RewardBundle, succeeded bool) int {
	char.XP += bundle.XP
	char.Gold += bundle.Gold
	char.BondXP += bundle.BondXP

	for _, drop := range bundle.Drops {
		drop.ApplyTo(char)
	}

	char.HP -= bundle.HPLost
	if char.HP < reviveFloorHP {
		char.HP = reviveFloorHP
	}

	levels := 0
	for char.CanLevelUp() {
		char.LevelUp()
		levels++
	}

	if succeeded {
		o.advanceStreak(char)
	}

	return levels
}

// advanceStreak bumps the daily streak: consecutive days extend it, a gap
// resets it to 1, and a second completion on the same day changes nothing
func (o *orchestrator) advanceStreak(char *entities.Character) {
	now := o.clock.Now().UTC()
	today := now.Format(dayLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dayLayout)

	switch char.Counters.StreakDay {
	case today:
	case yesterday:
		char.Streak++
		char.Counters.StreakDay = today
	default:
		char.Streak = 1
		char.Counters.StreakDay = today
	}
}

// pushSnapshot publishes the character's display state to the companion
// app. Failures are logged, never surfaced; the next apply retries.
func (o *orchestrator) pushSnapshot(ctx context.Context, char *entities.Character) {
	snap := profile.SnapshotFromCharacter(char)
	snap.UpdatedAt = o.clock.Now()

	if err := o.profileStore.PushSnapshot(ctx, snap); err != nil {
		slog.WarnContext(ctx, "failed to push character snapshot",
			"character_id", char.ID,
			"error", err,
		)
	}
}
