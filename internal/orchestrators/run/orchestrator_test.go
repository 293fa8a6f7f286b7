package run_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/questbound/quest-api/internal/clients/profile"
	"github.com/questbound/quest-api/internal/content"
	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/errors"
	"github.com/questbound/quest-api/internal/orchestrators/progress"
	"github.com/questbound/quest-api/internal/orchestrators/run"
	"github.com/questbound/quest-api/internal/pkg/clock"
	"github.com/questbound/quest-api/internal/pkg/idgen"
	"github.com/questbound/quest-api/internal/repositories/character"
	"github.com/questbound/quest-api/internal/repositories/runsession"
	"github.com/questbound/quest-api/internal/testutils"
)

const testSeed = int64(424242)

type RunOrchestratorTestSuite struct {
	suite.Suite
	svc       run.Service
	charRepo  character.Repository
	sessRepo  runsession.Repository
	scheduler *profile.MemoryScheduler
	clock     *clock.Fixed
	mr        *miniredis.Miniredis
	ctx       context.Context
	cleanup   func()
}

func (s *RunOrchestratorTestSuite) SetupTest() {
	client, mr, cleanup := testutils.CreateTestRedis(s.T())
	s.mr = mr
	s.cleanup = cleanup
	s.ctx = context.Background()
	s.clock = clock.NewFixed(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	s.scheduler = profile.NewMemoryScheduler()

	charRepo, err := character.NewRedis(&character.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	s.charRepo = charRepo

	sessRepo, err := runsession.NewRedisRepository(&runsession.Config{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	s.sessRepo = sessRepo

	catalog, err := content.LoadCatalog()
	s.Require().NoError(err)

	progressSvc, err := progress.NewOrchestrator(&progress.Config{
		CharacterRepo: charRepo,
		ProfileStore:  profile.NewMemoryStore(),
		Clock:         s.clock,
	})
	s.Require().NoError(err)

	svc, err := run.NewOrchestrator(&run.Config{
		CharacterRepo: charRepo,
		SessionRepo:   sessRepo,
		Catalog:       catalog,
		Progress:      progressSvc,
		Scheduler:     s.scheduler,
		Clock:         s.clock,
		IDGenerator:   idgen.NewSequential("run"),
		SeedSource:    func() int64 { return testSeed },
	})
	s.Require().NoError(err)
	s.svc = svc
}

func (s *RunOrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RunOrchestratorTestSuite) createCharacter(id string) *entities.Character {
	char := testutils.NewTestCharacter(id)
	_, err := s.charRepo.Create(s.ctx, character.CreateInput{Character: char})
	s.Require().NoError(err)
	return char
}

func (s *RunOrchestratorTestSuite) TestStartDungeonIsLazy() {
	s.createCharacter("char_1")

	out, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
		Tier:        1,
	})
	s.Require().NoError(err)

	sess := out.Session
	s.Equal(entities.StatusInProgress, sess.Status)
	s.Equal(0, sess.CurrentStepIndex, "dungeon rooms resolve at timer elapse, not at start")
	s.Empty(sess.StepResults)
	s.Len(sess.Steps, 4)
	s.Equal(testSeed, sess.Seed)
	s.Equal(50, sess.HP, "pool starts at the party's HP")

	reminder, ok := s.scheduler.Reminder(sess.ID)
	s.Require().True(ok, "completion reminder booked at start")
	s.Equal(sess.StartedAt.Add(4*30*time.Second), reminder.FireAt)
}

func (s *RunOrchestratorTestSuite) TestStartArenaPreRollsEverything() {
	s.createCharacter("char_1")

	out, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeArena,
	})
	s.Require().NoError(err)

	sess := out.Session
	s.Equal(entities.StatusInProgress, sess.Status, "timer still paces the reveal")
	s.Equal(len(sess.StepResults), sess.CurrentStepIndex)
	s.NotEmpty(sess.StepResults, "every outcome fixed at commit time")
	s.LessOrEqual(len(sess.StepResults), run.DefaultArenaWaves)
}

func (s *RunOrchestratorTestSuite) TestArenaResumeShowsIdenticalResults() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeArena,
	})
	s.Require().NoError(err)

	// Reopening the run view is a fresh read of the persisted record
	first, err := s.svc.GetRun(s.ctx, &run.GetRunInput{RunID: started.Session.ID})
	s.Require().NoError(err)
	second, err := s.svc.GetRun(s.ctx, &run.GetRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeArena,
	})
	s.Require().NoError(err)

	s.Equal(first.Session.StepResults, second.Session.StepResults, "no reroll on reopen")
	s.Equal(started.Session.Seed, second.Session.Seed)
}

func (s *RunOrchestratorTestSuite) TestStartWhileActiveRejected() {
	s.createCharacter("char_1")

	_, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.Require().NoError(err)

	_, err = s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RunOrchestratorTestSuite) TestExpeditionConsumesKey() {
	s.createCharacter("char_1")

	out, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeExpedition,
		Expedition:  "Verdant Wilds",
	})
	s.Require().NoError(err)
	s.Len(out.Session.Steps, 3)

	got, err := s.charRepo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal(2, got.Character.Counters.ExpeditionKeys)
}

func (s *RunOrchestratorTestSuite) TestExpeditionUnknownTemplate() {
	s.createCharacter("char_1")

	_, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeExpedition,
		Expedition:  "Atlantis",
	})
	s.True(errors.IsNotFound(err))

	got, err := s.charRepo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal(3, got.Character.Counters.ExpeditionKeys, "no key spent on a bad template")
}

func (s *RunOrchestratorTestSuite) TestAdvanceDungeonFollowsTimer() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.Require().NoError(err)
	runID := started.Session.ID

	// Nothing revealed yet
	advanced, err := s.svc.AdvanceRun(s.ctx, &run.AdvanceRunInput{RunID: runID})
	s.Require().NoError(err)
	s.Empty(advanced.Resolved)

	// One step duration elapses: exactly one room resolves
	s.clock.Advance(30 * time.Second)
	advanced, err = s.svc.AdvanceRun(s.ctx, &run.AdvanceRunInput{RunID: runID, Approach: "steady advance"})
	s.Require().NoError(err)
	s.Require().Len(advanced.Resolved, 1)
	s.Equal(0, advanced.Resolved[0].StepIndex)
	s.Equal("steady advance", advanced.Resolved[0].Approach)

	// Catch-up: a long absence resolves all remaining due rooms at once
	s.clock.Advance(10 * time.Minute)
	advanced, err = s.svc.AdvanceRun(s.ctx, &run.AdvanceRunInput{RunID: runID})
	s.Require().NoError(err)
	s.True(advanced.Session.Status.Terminal(), "pool emptied or all rooms cleared")
	s.Equal(len(advanced.Session.StepResults), advanced.Session.CurrentStepIndex)
}

func (s *RunOrchestratorTestSuite) TestAdvanceDeterministicAcrossRetry() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Second)
	first, err := s.svc.AdvanceRun(s.ctx, &run.AdvanceRunInput{RunID: started.Session.ID})
	s.Require().NoError(err)
	s.Require().Len(first.Resolved, 1)

	// Re-advancing without further elapse resolves nothing new and the
	// stored result is untouched
	again, err := s.svc.AdvanceRun(s.ctx, &run.AdvanceRunInput{RunID: started.Session.ID})
	s.Require().NoError(err)
	s.Empty(again.Resolved)
	s.Equal(first.Resolved[0], again.Session.StepResults[0])
}

func (s *RunOrchestratorTestSuite) TestAdvanceUnknownApproach() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Second)
	_, err = s.svc.AdvanceRun(s.ctx, &run.AdvanceRunInput{
		RunID:    started.Session.ID,
		Approach: "interpretive dance",
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RunOrchestratorTestSuite) TestApproachRejectedBeforeReveal() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.Require().NoError(err)

	_, err = s.svc.AdvanceRun(s.ctx, &run.AdvanceRunInput{
		RunID:    started.Session.ID,
		Approach: "steady advance",
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RunOrchestratorTestSuite) TestClaimBeforeTimerRejected() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeArena,
	})
	s.Require().NoError(err)

	_, err = s.svc.ClaimRewards(s.ctx, &run.ClaimRewardsInput{RunID: started.Session.ID})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RunOrchestratorTestSuite) TestClaimIsIdempotent() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeArena,
	})
	s.Require().NoError(err)

	// Let the whole arena timer elapse; claim finalizes and pays out
	s.clock.Advance(started.Session.TotalDuration())
	first, err := s.svc.ClaimRewards(s.ctx, &run.ClaimRewardsInput{RunID: started.Session.ID})
	s.Require().NoError(err)
	s.False(first.AlreadyClaimed)
	s.Require().Len(first.Characters, 1)
	s.True(first.Session.Status.Terminal())

	goldAfterFirst := first.Characters[0].Gold

	second, err := s.svc.ClaimRewards(s.ctx, &run.ClaimRewardsInput{RunID: started.Session.ID})
	s.Require().NoError(err)
	s.True(second.AlreadyClaimed)
	s.Equal(first.Rewards, second.Rewards)

	got, err := s.charRepo.Get(s.ctx, character.GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal(goldAfterFirst, got.Character.Gold, "double claim pays nothing")
}

func (s *RunOrchestratorTestSuite) TestCoOpClaimPaysBondXP() {
	s.createCharacter("char_1")
	partner := testutils.NewTestCharacter("char_2")
	partner.PlayerID = "player_other"
	_, err := s.charRepo.Create(s.ctx, character.CreateInput{Character: partner})
	s.Require().NoError(err)

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeArena,
		PartyIDs:    []string{"char_2"},
	})
	s.Require().NoError(err)
	s.True(started.Session.CoOp)

	s.clock.Advance(started.Session.TotalDuration())
	claimed, err := s.svc.ClaimRewards(s.ctx, &run.ClaimRewardsInput{RunID: started.Session.ID})
	s.Require().NoError(err)
	s.Require().Len(claimed.Characters, 2)

	if claimed.Session.Status == entities.StatusCompleted {
		s.Equal(claimed.Rewards.XP/5, claimed.Rewards.BondXP, "bond XP only from completed co-op runs")
		s.Equal(claimed.Rewards.BondXP, claimed.Characters[0].BondXP)
		s.Equal(claimed.Rewards.BondXP, claimed.Characters[1].BondXP)
	} else {
		s.Zero(claimed.Rewards.BondXP)
	}
}

func (s *RunOrchestratorTestSuite) TestAbandonRun() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.Require().NoError(err)

	abandoned, err := s.svc.AbandonRun(s.ctx, &run.AbandonRunInput{RunID: started.Session.ID})
	s.Require().NoError(err)
	s.Equal(entities.StatusAbandoned, abandoned.Session.Status)
	s.NotNil(abandoned.Session.CompletedAt)

	_, ok := s.scheduler.Reminder(started.Session.ID)
	s.False(ok, "reminder cancelled on abandon")

	// Abandoning again is a no-op; the character can start fresh
	_, err = s.svc.AbandonRun(s.ctx, &run.AbandonRunInput{RunID: started.Session.ID})
	s.NoError(err)

	_, err = s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.NoError(err)
}

func (s *RunOrchestratorTestSuite) TestCorruptSessionFailsClosed() {
	s.createCharacter("char_1")

	started, err := s.svc.StartRun(s.ctx, &run.StartRunInput{
		CharacterID: "char_1",
		Mode:        entities.ModeDungeon,
	})
	s.Require().NoError(err)

	// Parseable JSON with an impossible step index must not be guessed at
	s.mr.Set("run_session:"+started.Session.ID,
		`{"schema_version":1,"id":"`+started.Session.ID+`","character_id":"char_1","mode":"dungeon","current_step_index":99,"hp":10,"max_hp":50,"status":"in_progress","started_at":"2026-08-29T10:00:00Z"}`)

	_, err = s.svc.GetRun(s.ctx, &run.GetRunInput{RunID: started.Session.ID})
	s.True(errors.IsDataLoss(err))

	_, err = s.svc.AdvanceRun(s.ctx, &run.AdvanceRunInput{RunID: started.Session.ID})
	s.True(errors.IsDataLoss(err))
}

func TestRunOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(RunOrchestratorTestSuite))
}
