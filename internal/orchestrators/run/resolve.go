package run

import (
	"context"
	"strings"
	"time"

	"github.com/questbound/quest-api/internal/engine"
	"github.com/questbound/quest-api/internal/entities"
	"github.com/questbound/quest-api/internal/errors"
	"github.com/questbound/quest-api/internal/pkg/rng"
)

// runPlan is the mode-specific shape of a new session
type runPlan struct {
	steps        []entities.EncounterDefinition
	stepDuration time.Duration
	tier         int

	// eager marks modes whose outcomes are fixed at commit time
	eager bool
}

func (o *orchestrator) buildPlan(input *StartRunInput) (*runPlan, error) {
	switch input.Mode {
	case entities.ModeDungeon:
		tier := input.Tier
		if tier <= 0 {
			tier = 1
		}
		tmpl, err := o.catalog.Dungeon(tier)
		if err != nil {
			return nil, err
		}
		return &runPlan{
			steps:        tmpl.Rooms,
			stepDuration: tmpl.StepDuration,
			tier:         tmpl.Tier,
			eager:        false,
		}, nil

	case entities.ModeArena:
		waves := input.Waves
		if waves <= 0 {
			waves = DefaultArenaWaves
		}
		if waves > MaxArenaWaves {
			waves = MaxArenaWaves
		}
		steps := make([]entities.EncounterDefinition, 0, waves)
		for i := 0; i < waves; i++ {
			steps = append(steps, o.catalog.ArenaWave(i))
		}
		return &runPlan{
			steps:        steps,
			stepDuration: o.catalog.Arena().WaveDuration,
			tier:         1,
			eager:        true,
		}, nil

	case entities.ModeExpedition:
		if input.Expedition == "" {
			return nil, errors.InvalidArgument("expedition name is required")
		}
		tmpl, err := o.catalog.Expedition(input.Expedition)
		if err != nil {
			return nil, err
		}
		return &runPlan{
			steps:        tmpl.Stages,
			stepDuration: tmpl.StageDuration,
			tier:         tmpl.Tier,
			eager:        true,
		}, nil
	}

	return nil, errors.InvalidArgumentf("unknown run mode %q", input.Mode)
}

// resolveEagerly rolls every step from one stream off the session seed.
// Runs until the pool empties or the steps run out; the timer that follows
// is pure pacing.
func (o *orchestrator) resolveEagerly(session *entities.RunSession, party []entities.PartyMember) {
	roller := rng.New(session.Seed)

	for session.CurrentStepIndex < len(session.Steps) && session.HP > 0 {
		step := session.Steps[session.CurrentStepIndex]
		result := o.resolveStep(session, party, step, nil, roller)
		applyResult(session, result)
	}
}

// advanceLocked moves the session as far as the timer allows. The caller
// holds the session lock and persists afterward when dirty.
func (o *orchestrator) advanceLocked(ctx context.Context, session *entities.RunSession, approachName string) (bool, error) {
	before := session.CurrentStepIndex
	now := o.clock.Now()

	if session.Mode == entities.ModeDungeon {
		if err := o.resolveDue(ctx, session, approachName, now); err != nil {
			return false, err
		}
	} else if approachName != "" {
		return false, errors.InvalidArgumentf("%s runs are fixed at start; approaches only apply to dungeon rooms", session.Mode)
	}

	finalized := o.finalizeIfDue(session, now)
	if finalized {
		o.cancelReminder(ctx, session.ID)
	}

	return session.CurrentStepIndex != before || finalized, nil
}

// resolveDue resolves dungeon rooms the timer has revealed. Each room
// draws from its own stream derived from the session seed and step index,
// so a crash between resolve and persist replays identically.
func (o *orchestrator) resolveDue(ctx context.Context, session *entities.RunSession, approachName string, now time.Time) error {
	due := session.RevealableSteps(now)
	if approachName != "" && session.CurrentStepIndex >= due {
		return errors.FailedPrecondition("the next room has not been revealed yet")
	}

	var party []entities.PartyMember
	first := true

	for session.CurrentStepIndex < due && session.CurrentStepIndex < len(session.Steps) && session.HP > 0 {
		step := session.Steps[session.CurrentStepIndex]

		var approach *entities.Approach
		if first && approachName != "" {
			approach = findApproach(step, approachName)
			if approach == nil {
				return errors.InvalidArgumentf("room %q has no approach named %q", step.Name, approachName)
			}
		}
		first = false

		if party == nil {
			loaded, err := o.loadParty(ctx, session.CharacterID, session.PartyIDs)
			if err != nil {
				return err
			}
			party = loaded
		}

		roller := rng.New(session.Seed + int64(session.CurrentStepIndex))
		result := o.resolveStep(session, party, step, approach, roller)
		applyResult(session, result)
	}

	return nil
}

// resolveStep runs one step through the engine: power, chance, roll, reward
func (o *orchestrator) resolveStep(
	session *entities.RunSession,
	party []entities.PartyMember,
	step entities.EncounterDefinition,
	approach *entities.Approach,
	roller rng.Roller,
) entities.StepResult {
	basePower := engine.ComputePartyPower(party, step, approach.OverrideStat())
	power := engine.ApplyApproach(basePower, approach)
	chance := engine.SuccessChance(power, step.Difficulty)
	success := engine.Resolve(chance, roller)

	return engine.ComputeStepReward(engine.StepInput{
		StepIndex: session.CurrentStepIndex,
		Tier:      session.Tier,
		Success:   success,
		Encounter: step,
		Approach:  approach,
		Power:     power,
		BasePower: basePower,
	}, roller, o.idGen)
}

// applyResult folds one step result into the session. HP loss is clamped
// to the remaining pool so totals reflect what was actually lost.
func applyResult(session *entities.RunSession, result entities.StepResult) {
	if result.HPLost > session.HP {
		result.HPLost = session.HP
	}
	session.HP -= result.HPLost

	session.StepResults = append(session.StepResults, result)
	session.CurrentStepIndex++
	session.Totals.Accumulate(result)
}

// finalizeIfDue moves the session to its terminal state once every
// resolved step has also been revealed by the timer. An eagerly resolved
// run whose timer is still pacing reveals stays inProgress.
func (o *orchestrator) finalizeIfDue(session *entities.RunSession, now time.Time) bool {
	if session.Status.Terminal() {
		return false
	}

	done := session.HP == 0 || session.CurrentStepIndex == len(session.Steps)
	if !done {
		return false
	}
	if session.RevealableSteps(now) < session.CurrentStepIndex {
		return false
	}

	if session.HP == 0 {
		session.Status = entities.StatusFailed
	} else {
		session.Status = entities.StatusCompleted
	}
	t := now
	session.CompletedAt = &t

	// Bond XP exists only in co-op and only for runs seen through
	if session.CoOp && session.Status == entities.StatusCompleted {
		session.Totals.BondXP = session.Totals.XP / bondXPDivisor
	}

	return true
}

func findApproach(step entities.EncounterDefinition, name string) *entities.Approach {
	for i := range step.Approaches {
		if strings.EqualFold(step.Approaches[i].Name, name) {
			return &step.Approaches[i]
		}
	}
	return nil
}
