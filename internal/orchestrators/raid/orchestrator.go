// Package raid implements the weekly raid boss: one persistent HP pool per
// ISO week, shared by every attacker. Unlike the other modes there is no
// step sequence; each attack is a single resolved action against whatever
// HP the community has left the boss with.
package raid

//go:generate mockgen -destination=mock/mock_service.go -package=raidmock github.com/questbound/quest-api/internal/orchestrators/raid Service

import (
	"context"
	"log/slog"
	"time"

	"github.com/questbound/quest-api/internal/content"
	"github.com/questbound/quest-api/internal/engine"
	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/errors"
	"github.com/questbound/quest-api/internal/orchestrators/progress"
	"github.com/questbound/quest-api/internal/pkg/clock"
	"github.com/questbound/quest-api/internal/pkg/rng"
	"github.com/questbound/quest-api/internal/repositories/character"
	"github.com/questbound/quest-api/internal/repositories/raidboss"
)

const (
	// RaidDailyAttacks caps attacks per character per calendar day
	RaidDailyAttacks = 3

	dayLayout = "2006-01-02"
)

// Service defines the interface for raid boss operations
type Service interface {
	// GetWeeklyBoss returns this week's boss, initializing it from the
	// rotation on first read
	GetWeeklyBoss(ctx context.Context, input *GetWeeklyBossInput) (*GetWeeklyBossOutput, error)

	// Attack spends one daily attack, resolves it against the boss, and
	// applies the attacker's rewards. The killing blow pays a bonus.
	Attack(ctx context.Context, input *AttackInput) (*AttackOutput, error)
}

// Config holds the dependencies for the raid orchestrator
type Config struct {
	CharacterRepo character.Repository
	BossRepo      raidboss.Repository
	Catalog       *content.Catalog
	Progress      progress.Service
	Clock         clock.Clock

	// SeedSource supplies per-attack randomness; defaults to a
	// crypto-seeded source
	SeedSource func() int64
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.BossRepo == nil {
		vb.RequiredField("BossRepo")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.Progress == nil {
		vb.RequiredField("Progress")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	characterRepo character.Repository
	bossRepo      raidboss.Repository
	catalog       *content.Catalog
	progress      progress.Service
	clock         clock.Clock
	seedSource    func() int64
}

// NewOrchestrator creates a new raid orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	seedSource := cfg.SeedSource
	if seedSource == nil {
		seedSource = rng.NewSeed
	}

	return &orchestrator{
		characterRepo: cfg.CharacterRepo,
		bossRepo:      cfg.BossRepo,
		catalog:       cfg.Catalog,
		progress:      cfg.Progress,
		clock:         cfg.Clock,
		seedSource:    seedSource,
	}, nil
}

func (o *orchestrator) GetWeeklyBoss(ctx context.Context, _ *GetWeeklyBossInput) (*GetWeeklyBossOutput, error) {
	now := o.clock.Now()

	boss, err := o.ensureBoss(ctx, now)
	if err != nil {
		return nil, err
	}

	return &GetWeeklyBossOutput{
		Boss:    boss,
		ResetAt: nextWeekStart(now),
	}, nil
}

func (o *orchestrator) Attack(ctx context.Context, input *AttackInput) (*AttackOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	now := o.clock.Now()
	weekKey := entities.RaidWeekKey(now)

	boss, err := o.ensureBoss(ctx, now)
	if err != nil {
		return nil, err
	}
	if boss.Defeated() {
		return nil, errors.FailedPrecondition("this week's boss is already defeated")
	}

	counted, err := o.bossRepo.IncrAttackCount(ctx, raidboss.IncrAttackCountInput{
		WeekKey:     weekKey,
		Day:         now.UTC().Format(dayLayout),
		CharacterID: input.CharacterID,
	})
	if err != nil {
		return nil, err
	}
	if counted.Attacks > RaidDailyAttacks {
		return nil, errors.ResourceExhaustedf("raid attacks for today are spent (%d allowed)", RaidDailyAttacks)
	}

	got, err := o.characterRepo.Get(ctx, character.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	attacker := got.Character.AsPartyMember()

	encounter := bossEncounter(boss)
	power := engine.ComputePartyPower([]entities.PartyMember{attacker}, encounter, nil)
	chance := engine.SuccessChance(power, boss.Difficulty)

	roller := rng.New(o.seedSource())
	success := engine.Resolve(chance, roller)
	damage := attackDamage(power, success, roller)

	applied, err := o.bossRepo.ApplyDamage(ctx, raidboss.ApplyDamageInput{
		WeekKey:    weekKey,
		Damage:     damage,
		AttackerID: input.CharacterID,
	})
	if err != nil {
		return nil, err
	}

	rewards := entities.RewardBundle{
		XP:   damage / 2,
		Gold: damage / 4,
	}
	if !success {
		rewards.HPLost = engine.FailureDamage(power, boss.Difficulty, nil)
	}
	if applied.KillingBlow {
		rewards.XP += boss.Difficulty * 2
		rewards.Gold += boss.Difficulty
	}

	appliedRewards, err := o.progress.ApplyRewards(ctx, &progress.ApplyRewardsInput{
		CharacterID:  input.CharacterID,
		Rewards:      rewards,
		RunSucceeded: success,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "raid attack resolved",
		"week_key", weekKey,
		"character_id", input.CharacterID,
		"damage", damage,
		"boss_hp", applied.Boss.HP,
		"killing_blow", applied.KillingBlow,
	)

	return &AttackOutput{
		Boss:        applied.Boss,
		Success:     success,
		Damage:      damage,
		KillingBlow: applied.KillingBlow,
		AttacksUsed: counted.Attacks,
		Character:   appliedRewards.Character,
		Narrative:   engine.Narrative(entities.CategoryBoss, success, roller),
	}, nil
}

// ensureBoss initializes this week's boss from the rotation when no record
// exists yet. First writer wins; everyone sees the same pool.
func (o *orchestrator) ensureBoss(ctx context.Context, now time.Time) (*entities.RaidBoss, error) {
	weekKey := entities.RaidWeekKey(now)

	fresh, err := o.catalog.RaidBossForWeek(weekKey)
	if err != nil {
		return nil, err
	}

	ensured, err := o.bossRepo.Ensure(ctx, raidboss.EnsureInput{Boss: fresh})
	if err != nil {
		return nil, err
	}
	return ensured.Boss, nil
}

func bossEncounter(boss *entities.RaidBoss) entities.EncounterDefinition {
	return entities.EncounterDefinition{
		Name:            boss.Name,
		Category:        entities.CategoryBoss,
		PrimaryStat:     boss.PrimaryStat,
		Difficulty:      boss.Difficulty,
		Boss:            true,
		BonusLootChance: 1.0,
	}
}

// attackDamage converts attack power into pool damage: a clean hit lands
// between half and full power, a glancing hit a fifth. Always at least 1,
// so no attack is ever fully wasted.
func attackDamage(power int, success bool, roller rng.Roller) int {
	var damage int
	if success {
		damage = power/2 + roller.IntN(power/2+1)
	} else {
		damage = power / 5
	}
	if damage < 1 {
		damage = 1
	}
	return damage
}

// nextWeekStart returns the next Monday 00:00 UTC after now
func nextWeekStart(now time.Time) time.Time {
	day := now.UTC()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	for {
		day = day.AddDate(0, 0, 1)
		if day.Weekday() == time.Monday {
			return day
		}
	}
}
