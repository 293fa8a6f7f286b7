package main

import (
	"fmt"

	"github.com/questbound/quest-api/internal/clients/profile"
	"github.com/questbound/quest-api/internal/content"
	"github.com/questbound/quest-api/internal/orchestrators/progress"
	"github.com/questbound/quest-api/internal/orchestrators/raid"
	"github.com/questbound/quest-api/internal/orchestrators/run"
	"github.com/questbound/quest-api/internal/pkg/clock"
	"github.com/questbound/quest-api/internal/pkg/idgen"
	redisclient "github.com/questbound/quest-api/internal/redis"
	"github.com/questbound/quest-api/internal/repositories/character"
	"github.com/questbound/quest-api/internal/repositories/raidboss"
	"github.com/questbound/quest-api/internal/repositories/runsession"
)

// app wires the full service graph over one redis client
type app struct {
	CharacterRepo character.Repository
	Runs          run.Service
	Raids         raid.Service
	Progress      progress.Service
}

// buildApp assembles repositories and orchestrators. SeedSource may be nil
// for production randomness; the simulator injects a fixed seed.
func buildApp(client redisclient.Client, clk clock.Clock, seedSource func() int64) (*app, error) {
	catalog, err := content.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load content catalog: %w", err)
	}

	charRepo, err := character.NewRedis(&character.RedisConfig{Client: client, Clock: clk})
	if err != nil {
		return nil, fmt.Errorf("failed to create character repository: %w", err)
	}
	sessRepo, err := runsession.NewRedisRepository(&runsession.Config{Client: client, Clock: clk})
	if err != nil {
		return nil, fmt.Errorf("failed to create run session repository: %w", err)
	}
	bossRepo, err := raidboss.NewRedisRepository(&raidboss.Config{Client: client, Clock: clk})
	if err != nil {
		return nil, fmt.Errorf("failed to create raid boss repository: %w", err)
	}

	// The companion app integrations run in-process until the real
	// backends are wired in
	profileStore := profile.NewMemoryStore()
	scheduler := profile.NewMemoryScheduler()

	progressSvc, err := progress.NewOrchestrator(&progress.Config{
		CharacterRepo: charRepo,
		ProfileStore:  profileStore,
		Clock:         clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create progress orchestrator: %w", err)
	}

	runSvc, err := run.NewOrchestrator(&run.Config{
		CharacterRepo: charRepo,
		SessionRepo:   sessRepo,
		Catalog:       catalog,
		Progress:      progressSvc,
		Scheduler:     scheduler,
		Clock:         clk,
		IDGenerator:   idgen.NewUUID("run"),
		SeedSource:    seedSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create run orchestrator: %w", err)
	}

	raidSvc, err := raid.NewOrchestrator(&raid.Config{
		CharacterRepo: charRepo,
		BossRepo:      bossRepo,
		Catalog:       catalog,
		Progress:      progressSvc,
		Clock:         clk,
		SeedSource:    seedSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create raid orchestrator: %w", err)
	}

	return &app{
		CharacterRepo: charRepo,
		Runs:          runSvc,
		Raids:         raidSvc,
		Progress:      progressSvc,
	}, nil
}
