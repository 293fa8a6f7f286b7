// Package run implements the run/session state machine for dungeon, arena,
// and expedition runs.
//
// The two resolution strategies are deliberate product behavior, not an
// implementation accident. Arena and expedition runs are resolved eagerly:
// every step result is rolled the moment the player commits, and the timer
// only paces the reveal, so closing and reopening the screen can never
// reroll fate. Dungeon runs resolve lazily, one room per timer elapse,
// which lets the player pick an approach for each room as it is revealed.
package run

//go:generate mockgen -destination=mock/mock_service.go -package=runmock github.com/questbound/quest-api/internal/orchestrators/run Service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/questbound/quest-api/internal/clients/profile"
	"github.com/questbound/quest-api/internal/content"
	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/errors"
	"github.com/questbound/quest-api/internal/orchestrators/progress"
	"github.com/questbound/quest-api/internal/pkg/clock"
	"github.com/questbound/quest-api/internal/pkg/idgen"
	"github.com/questbound/quest-api/internal/pkg/locks"
	"github.com/questbound/quest-api/internal/pkg/rng"
	"github.com/questbound/quest-api/internal/repositories/character"
	"github.com/questbound/quest-api/internal/repositories/runsession"
)

const (
	// DefaultArenaWaves is the arena run length when the caller does not
	// choose one
	DefaultArenaWaves = 10

	// MaxArenaWaves bounds a single arena commitment
	MaxArenaWaves = 50

	// bondXPDivisor converts a completed co-op run's XP into bond XP
	bondXPDivisor = 5
)

// Service defines the interface for run session operations
type Service interface {
	// StartRun spends the mode's attempt cost, allocates the session with
	// its RNG seed, and for eager modes pre-rolls every step result
	StartRun(ctx context.Context, input *StartRunInput) (*StartRunOutput, error)

	// AdvanceRun resolves (dungeon) or finalizes (arena, expedition) the
	// steps the timer has paced out so far
	AdvanceRun(ctx context.Context, input *AdvanceRunInput) (*AdvanceRunOutput, error)

	// GetRun reads a session with its derived timer state. Resuming a
	// closed app is just GetRun on the persisted record.
	GetRun(ctx context.Context, input *GetRunInput) (*GetRunOutput, error)

	// AbandonRun terminates an in-progress run
	AbandonRun(ctx context.Context, input *AbandonRunInput) (*AbandonRunOutput, error)

	// ClaimRewards pays out a terminal run exactly once
	ClaimRewards(ctx context.Context, input *ClaimRewardsInput) (*ClaimRewardsOutput, error)
}

// Config holds the dependencies for the run orchestrator
type Config struct {
	CharacterRepo character.Repository
	SessionRepo   runsession.Repository
	Catalog       *content.Catalog
	Progress      progress.Service
	Scheduler     profile.Scheduler
	Clock         clock.Clock
	IDGenerator   idgen.Generator

	// SeedSource supplies the seed fixed on each new session; defaults
	// to a crypto-seeded source
	SeedSource func() int64
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.Progress == nil {
		vb.RequiredField("Progress")
	}
	if c.Scheduler == nil {
		vb.RequiredField("Scheduler")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	characterRepo character.Repository
	sessionRepo   runsession.Repository
	catalog       *content.Catalog
	progress      progress.Service
	scheduler     profile.Scheduler
	clock         clock.Clock
	idGen         idgen.Generator
	seedSource    func() int64

	// runLocks serializes all transitions on one session; the state
	// machine is logically single threaded per run
	runLocks *locks.Keyed
}

// NewOrchestrator creates a new run orchestrator with the provided dependencies
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
		sessionRepo:   cfg.SessionRepo,
		catalog:       cfg.Catalog,
		progress:      cfg.Progress,
		scheduler:     cfg.Scheduler,
		clock:         cfg.Clock,
		idGen:         cfg.IDGenerator,
		seedSource:    seedSource,
		runLocks:      locks.NewKeyed(),
	}, nil
}

func (o *orchestrator) StartRun(ctx context.Context, input *StartRunInput) (*StartRunOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	switch input.Mode {
	case entities.ModeDungeon, entities.ModeArena, entities.ModeExpedition:
	default:
		return nil, errors.InvalidArgumentf("unknown run mode %q", input.Mode)
	}

	if _, err := o.sessionRepo.GetActive(ctx, runsession.GetActiveInput{
		CharacterID: input.CharacterID,
		Mode:        input.Mode,
	}); err == nil {
		return nil, errors.FailedPreconditionf("character %s already has an active %s run", input.CharacterID, input.Mode)
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	plan, err := o.buildPlan(input)
	if err != nil {
		return nil, err
	}

	party, err := o.loadParty(ctx, input.CharacterID, input.PartyIDs)
	if err != nil {
		return nil, err
	}

	if _, err := o.progress.SpendAttempt(ctx, &progress.SpendAttemptInput{
		CharacterID: input.CharacterID,
		Mode:        input.Mode,
	}); err != nil {
		return nil, err
	}

	hp, maxHP := partyHP(party)
	now := o.clock.Now()

	session := &entities.RunSession{
		SchemaVersion: entities.RunSessionSchemaVersion,
		ID:            o.idGen.Generate(),
		CharacterID:   input.CharacterID,
		PartyIDs:      input.PartyIDs,
		CoOp:          len(input.PartyIDs) > 0,
		Mode:          input.Mode,
		Tier:          plan.tier,
		Steps:         plan.steps,
		Seed:          o.seedSource(),
		HP:            hp,
		MaxHP:         maxHP,
		Status:        entities.StatusInProgress,
		StartedAt:     now,
		StepDuration:  plan.stepDuration,
	}

	if plan.eager {
		o.resolveEagerly(session, party)
	}

	if _, err := o.sessionRepo.Create(ctx, runsession.CreateInput{Session: session}); err != nil {
		return nil, err
	}

	o.scheduleCompletionReminder(ctx, session)

	slog.InfoContext(ctx, "run started",
		"run_id", session.ID,
		"character_id", session.CharacterID,
		"mode", session.Mode,
		"steps", len(session.Steps),
		"co_op", session.CoOp,
	)

	return &StartRunOutput{Session: session}, nil
}

func (o *orchestrator) AdvanceRun(ctx context.Context, input *AdvanceRunInput) (*AdvanceRunOutput, error) {
	if input == nil || input.RunID == "" {
		return nil, errors.InvalidArgument("run ID is required")
	}

	unlock := o.runLocks.Lock(input.RunID)
	defer unlock()

	session, err := o.getSession(ctx, input.RunID)
	if err != nil {
		return nil, err
	}

	if session.Status.Terminal() {
		return &AdvanceRunOutput{Session: session}, nil
	}

	before := session.CurrentStepIndex
	dirty, err := o.advanceLocked(ctx, session, input.Approach)
	if err != nil {
		return nil, err
	}

	if dirty {
		if _, err := o.sessionRepo.Update(ctx, runsession.UpdateInput{Session: session}); err != nil {
			return nil, err
		}
	}

	return &AdvanceRunOutput{
		Session:  session,
		Resolved: session.StepResults[before:session.CurrentStepIndex],
	}, nil
}

func (o *orchestrator) GetRun(ctx context.Context, input *GetRunInput) (*GetRunOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var session *entities.RunSession
	switch {
	case input.RunID != "":
		got, err := o.getSession(ctx, input.RunID)
		if err != nil {
			return nil, err
		}
		session = got
	case input.CharacterID != "":
		got, err := o.sessionRepo.GetActive(ctx, runsession.GetActiveInput{
			CharacterID: input.CharacterID,
			Mode:        input.Mode,
		})
		if err != nil {
			return nil, err
		}
		if err := got.Session.Validate(); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "run session state is invalid")
		}
		session = got.Session
	default:
		return nil, errors.InvalidArgument("run ID or character ID is required")
	}

	now := o.clock.Now()
	return &GetRunOutput{
		Session:         session,
		TimeRemaining:   session.TimeRemaining(now),
		RevealableSteps: session.RevealableSteps(now),
	}, nil
}

func (o *orchestrator) AbandonRun(ctx context.Context, input *AbandonRunInput) (*AbandonRunOutput, error) {
	if input == nil || input.RunID == "" {
		return nil, errors.InvalidArgument("run ID is required")
	}

	unlock := o.runLocks.Lock(input.RunID)
	defer unlock()

	session, err := o.getSession(ctx, input.RunID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case entities.StatusAbandoned:
		return &AbandonRunOutput{Session: session}, nil
	case entities.StatusCompleted, entities.StatusFailed:
		return nil, errors.FailedPreconditionf("cannot abandon a %s run", session.Status)
	}

	now := o.clock.Now()
	session.Status = entities.StatusAbandoned
	session.CompletedAt = &now

	if _, err := o.sessionRepo.Update(ctx, runsession.UpdateInput{Session: session}); err != nil {
		return nil, err
	}

	o.cancelReminder(ctx, session.ID)

	slog.InfoContext(ctx, "run abandoned",
		"run_id", session.ID,
		"character_id", session.CharacterID,
		"steps_resolved", session.CurrentStepIndex,
	)

	return &AbandonRunOutput{Session: session}, nil
}

func (o *orchestrator) ClaimRewards(ctx context.Context, input *ClaimRewardsInput) (*ClaimRewardsOutput, error) {
	if input == nil || input.RunID == "" {
		return nil, errors.InvalidArgument("run ID is required")
	}

	unlock := o.runLocks.Lock(input.RunID)
	defer unlock()

	session, err := o.getSession(ctx, input.RunID)
	if err != nil {
		return nil, err
	}

	// A claim arriving after the timer elapsed resolves outstanding steps
	// itself, so a player who never reopened the run view still gets paid
	if !session.Status.Terminal() {
		dirty, err := o.advanceLocked(ctx, session, "")
		if err != nil {
			return nil, err
		}
		if dirty {
			if _, err := o.sessionRepo.Update(ctx, runsession.UpdateInput{Session: session}); err != nil {
				return nil, err
			}
		}
	}

	if !session.Status.Terminal() {
		return nil, errors.FailedPrecondition("run is still in progress")
	}

	if session.RewardsClaimed {
		return &ClaimRewardsOutput{
			Session:        session,
			Rewards:        session.Totals,
			AlreadyClaimed: true,
		}, nil
	}

	// The claim flag flips before rewards land: a retried claim can never
	// double pay. An apply failure reverts the flag so rewards are not
	// stranded.
	session.RewardsClaimed = true
	if _, err := o.sessionRepo.Update(ctx, runsession.UpdateInput{Session: session}); err != nil {
		return nil, err
	}

	characters, err := o.payOut(ctx, session)
	if err != nil {
		session.RewardsClaimed = false
		if _, revertErr := o.sessionRepo.Update(ctx, runsession.UpdateInput{Session: session}); revertErr != nil {
			slog.ErrorContext(ctx, "failed to revert claim flag after payout error",
				"run_id", session.ID,
				"error", revertErr,
			)
		}
		return nil, err
	}

	o.cancelReminder(ctx, session.ID)

	slog.InfoContext(ctx, "run rewards claimed",
		"run_id", session.ID,
		"character_id", session.CharacterID,
		"xp", session.Totals.XP,
		"gold", session.Totals.Gold,
		"drops", len(session.Totals.Drops),
	)

	return &ClaimRewardsOutput{
		Session:    session,
		Rewards:    session.Totals,
		Characters: characters,
	}, nil
}

// payOut hands the session's totals to the progress orchestrator
func (o *orchestrator) payOut(ctx context.Context, session *entities.RunSession) ([]*entities.Character, error) {
	succeeded := session.Status == entities.StatusCompleted

	if session.CoOp {
		ids := append([]string{session.CharacterID}, session.PartyIDs...)
		applied, err := o.progress.ApplyPartyRewards(ctx, &progress.ApplyPartyRewardsInput{
			CharacterIDs: ids,
			Rewards:      session.Totals,
			RunSucceeded: succeeded,
		})
		if err != nil {
			return nil, err
		}
		return applied.Characters, nil
	}

	applied, err := o.progress.ApplyRewards(ctx, &progress.ApplyRewardsInput{
		CharacterID:  session.CharacterID,
		Rewards:      session.Totals,
		RunSucceeded: succeeded,
	})
	if err != nil {
		return nil, err
	}
	return []*entities.Character{applied.Character}, nil
}

// getSession loads and validates a persisted session. Invalid state fails
// closed; the machine never guesses a step index.
func (o *orchestrator) getSession(ctx context.Context, id string) (*entities.RunSession, error) {
	got, err := o.sessionRepo.Get(ctx, runsession.GetInput{ID: id})
	if err != nil {
		return nil, err
	}
	if err := got.Session.Validate(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "run session state is invalid")
	}
	return got.Session, nil
}

// loadParty projects the owner plus any co-op partners into combat form
func (o *orchestrator) loadParty(ctx context.Context, ownerID string, partyIDs []string) ([]entities.PartyMember, error) {
	ids := append([]string{ownerID}, partyIDs...)

	seen := make(map[string]bool, len(ids))
	members := make([]entities.PartyMember, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		got, err := o.characterRepo.Get(ctx, character.GetInput{ID: id})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load party member %s", id)
		}
		members = append(members, got.Character.AsPartyMember())
	}

	return members, nil
}

func partyHP(party []entities.PartyMember) (hp, maxHP int) {
	for _, m := range party {
		hp += m.HP
		maxHP += m.MaxHP
	}
	return hp, maxHP
}

func (o *orchestrator) scheduleCompletionReminder(ctx context.Context, session *entities.RunSession) {
	reminder := profile.Reminder{
		CharacterID: session.CharacterID,
		RunID:       session.ID,
		Message:     fmt.Sprintf("Your %s run is ready to collect.", session.Mode),
		FireAt:      session.StartedAt.Add(session.TotalDuration()),
	}

	if err := o.scheduler.Schedule(ctx, reminder); err != nil {
		slog.WarnContext(ctx, "failed to schedule run reminder",
			"run_id", session.ID,
			"error", err,
		)
	}
}

func (o *orchestrator) cancelReminder(ctx context.Context, runID string) {
	if err := o.scheduler.Cancel(ctx, runID); err != nil {
		slog.WarnContext(ctx, "failed to cancel run reminder",
			"run_id", runID,
			"error", err,
		)
	}
}
