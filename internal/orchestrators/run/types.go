package run

import (
	"time"

	"github.com/questbound/quest-api/internal/entities"
)

// StartRunInput contains parameters for committing to a new run
type StartRunInput struct {
	CharacterID string
	Mode        entities.RunMode

	// Tier selects the dungeon template; ignored by other modes
	Tier int

	// Expedition names the expedition template; required for that mode
	Expedition string

	// Waves is the arena run length; defaults to DefaultArenaWaves
	Waves int

	// PartyIDs are co-op partners joining the run alongside the owner
	PartyIDs []string
}

// StartRunOutput contains the created session
type StartRunOutput struct {
	Session *entities.RunSession
}

// AdvanceRunInput contains parameters for advancing a run
type AdvanceRunInput struct {
	RunID string

	// Approach optionally names the tactic for the next dungeon room.
	// Only dungeon runs accept one; eager modes are fully resolved at
	// start.
	Approach string
}

// AdvanceRunOutput contains the session after advancement
type AdvanceRunOutput struct {
	Session *entities.RunSession

	// Resolved are the step results produced by this call
	Resolved []entities.StepResult
}

// GetRunInput contains parameters for reading a run. Lookup is by RunID
// when set, otherwise by the owner's active run for a mode.
type GetRunInput struct {
	RunID string

	CharacterID string
	Mode        entities.RunMode
}

// GetRunOutput contains the session plus its derived timer state
type GetRunOutput struct {
	Session *entities.RunSession

	TimeRemaining   time.Duration
	RevealableSteps int
}

// AbandonRunInput contains parameters for abandoning a run
type AbandonRunInput struct {
	RunID string
}

// AbandonRunOutput contains the abandoned session
type AbandonRunOutput struct {
	Session *entities.RunSession
}

// ClaimRewardsInput contains parameters for claiming a finished run
type ClaimRewardsInput struct {
	RunID string
}

// ClaimRewardsOutput contains the claim result
type ClaimRewardsOutput struct {
	Session *entities.RunSession
	Rewards entities.RewardBundle

	// Characters are the updated reward recipients; empty when
	// AlreadyClaimed is true
	Characters []*entities.Character

	// AlreadyClaimed marks an idempotent re-claim; nothing was paid out
	AlreadyClaimed bool
}
