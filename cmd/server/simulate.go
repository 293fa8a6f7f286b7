package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"

	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/orchestrators/raid"
	"github.com/questbound/quest-api/internal/orchestrators/run"
	"github.com/questbound/quest-api/internal/pkg/clock"
	"github.com/questbound/quest-api/internal/pkg/rng"
	redisclient "github.com/questbound/quest-api/internal/redis"
	"github.com/questbound/quest-api/internal/repositories/character"
)

var (
	simSeed int64
	simTier int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a seeded dungeon run and raid attack end to end",
	Long: `Simulate drives the whole engine in memory: it creates a character,
commits to a dungeon run, fast-forwards the timer room by room, claims the
rewards, and throws one attack at the weekly boss. The same seed always
prints the same run.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "RNG seed (0 picks a random one)")
	simulateCmd.Flags().IntVar(&simTier, "tier", 1, "dungeon tier")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start in-memory redis: %w", err)
	}
	defer mr.Close()

	client, err := redisclient.NewClient(mr.Addr(), nil)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}

	seed := simSeed
	if seed == 0 {
		seed = rng.NewSeed()
	}
	fmt.Printf("seed: %d\n\n", seed)

	clk := clock.NewFixed(time.Now().UTC())
	application, err := buildApp(client, clk, func() int64 { return seed })
	if err != nil {
		return err
	}

	hero := &entities.Character{
		ID:       "sim_hero",
		PlayerID: "sim_player",
		Name:     "Simulant",
		Class:    entities.ClassWarrior,
		Level:    5,
		Gold:     100,
		HP:       50,
		MaxHP:    50,
		Stats: map[entities.StatType]int{
			entities.StatStrength: 14,
			entities.StatAgility:  9,
			entities.StatWisdom:   7,
			entities.StatVitality: 11,
			entities.StatCharm:    6,
		},
	}
	if _, err := application.CharacterRepo.Create(ctx, character.CreateInput{Character: hero}); err != nil {
		return err
	}

	if err := simulateDungeon(ctx, application, clk); err != nil {
		return err
	}

	return simulateRaid(ctx, application)
}

func simulateDungeon(ctx context.Context, application *app, clk *clock.Fixed) error {
	started, err := application.Runs.StartRun(ctx, &run.StartRunInput{
		CharacterID: "sim_hero",
		Mode:        entities.ModeDungeon,
		Tier:        simTier,
	})
	if err != nil {
		return err
	}
	sess := started.Session

	fmt.Printf("=== dungeon tier %d: %d rooms, %s per room ===\n",
		sess.Tier, len(sess.Steps), sess.StepDuration)

	for !sess.Status.Terminal() {
		clk.Advance(sess.StepDuration)
		advanced, err := application.Runs.AdvanceRun(ctx, &run.AdvanceRunInput{RunID: sess.ID})
		if err != nil {
			return err
		}
		sess = advanced.Session

		for _, result := range advanced.Resolved {
			room := sess.Steps[result.StepIndex]
			fmt.Printf("  [%d] %-20s power %3d vs %3d  %s\n",
				result.StepIndex+1, room.Name, result.Power, result.Difficulty, result.Narrative)
			if result.HPLost > 0 {
				fmt.Printf("      lost %d HP (%d remaining)\n", result.HPLost, sess.HP)
			}
		}
	}

	claimed, err := application.Runs.ClaimRewards(ctx, &run.ClaimRewardsInput{RunID: sess.ID})
	if err != nil {
		return err
	}

	fmt.Printf("\nrun %s: %d XP, %d gold, %d drops\n",
		sess.Status, claimed.Rewards.XP, claimed.Rewards.Gold, len(claimed.Rewards.Drops))
	for _, drop := range claimed.Rewards.Drops {
		switch drop.Kind {
		case entities.DropEquipment:
			fmt.Printf("  + %s (%s %s)\n", drop.Equipment.Name, drop.Equipment.Rarity, drop.Equipment.Slot)
		case entities.DropMaterial:
			fmt.Printf("  + %dx %s\n", drop.Material.Quantity, drop.Material.Material)
		case entities.DropCard:
			fmt.Printf("  + card: %s (%s)\n", drop.Card.Name, drop.Card.Rarity)
		}
	}

	hero := claimed.Characters[0]
	fmt.Printf("hero: level %d, %d/%d XP to next, %d gold, %d/%d HP\n\n",
		hero.Level, hero.XP, entities.XPToLevel(hero.Level), hero.Gold, hero.HP, hero.MaxHP)

	return nil
}

func simulateRaid(ctx context.Context, application *app) error {
	boss, err := application.Raids.GetWeeklyBoss(ctx, &raid.GetWeeklyBossInput{})
	if err != nil {
		return err
	}
	fmt.Printf("=== weekly raid: %s (%d/%d HP) ===\n",
		boss.Boss.Name, boss.Boss.HP, boss.Boss.MaxHP)

	attack, err := application.Raids.Attack(ctx, &raid.AttackInput{CharacterID: "sim_hero"})
	if err != nil {
		return err
	}

	fmt.Printf("  dealt %d damage, boss at %d HP  %s\n",
		attack.Damage, attack.Boss.HP, attack.Narrative)
	return nil
}
