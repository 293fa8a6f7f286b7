package entities

import (
	"time"
)

// RunSessionSchemaVersion is stamped on every persisted run record.
// Records with an unknown version fail closed on resume.
const RunSessionSchemaVersion = 1

// RunMode identifies which game mode a run session belongs to
type RunMode string

// Run modes
const (
	ModeDungeon    RunMode = "dungeon"
	ModeArena      RunMode = "arena"
	ModeExpedition RunMode = "expedition"
)

// RunStatus is the lifecycle state of a run session
type RunStatus string

// Run statuses. Transitions only move forward: inProgress is the sole
// non-terminal state.
const (
	StatusInProgress RunStatus = "in_progress"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
	StatusAbandoned  RunStatus = "abandoned"
)

// Terminal reports whether the status permits no further transitions
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusAbandoned
}

// StepResult is the outcome of one resolved step
type StepResult struct {
	StepIndex  int    `json:"step_index"`
	Success    bool   `json:"success"`
	Approach   string `json:"approach,omitempty"`
	Power      int    `json:"power"`
	Difficulty int    `json:"difficulty"`
	XP         int    `json:"xp"`
	Gold       int    `json:"gold"`
	HPLost     int    `json:"hp_lost"`
	Drops      []Drop `json:"drops,omitempty"`
	Narrative  string `json:"narrative"`
}

// RewardBundle is the aggregate output of a resolved (or partially
// resolved) run. All counts are non-negative.
type RewardBundle struct {
	XP     int    `json:"xp"`
	Gold   int    `json:"gold"`
	Drops  []Drop `json:"drops,omitempty"`
	BondXP int    `json:"bond_xp"`

	// HPLost is the total HP the run cost; applied against the character
	// with a revive floor of 1.
	HPLost int `json:"hp_lost"`
}

// Accumulate folds one step result into the bundle
func (b *RewardBundle) Accumulate(r StepResult) {
	b.XP += r.XP
	b.Gold += r.Gold
	b.HPLost += r.HPLost
	b.Drops = append(b.Drops, r.Drops...)
}

// RunSession is the aggregate root for one in-progress or finished
// multi-step encounter. Persisted as a flat versioned JSON record; the
// seed is part of the record so resuming never introduces new randomness.
type RunSession struct {
	SchemaVersion int `json:"schema_version"`

	ID          string   `json:"id"`
	CharacterID string   `json:"character_id"`
	PartyIDs    []string `json:"party_ids"`
	CoOp        bool     `json:"co_op"`

	Mode RunMode `json:"mode"`
	Tier int     `json:"tier"`

	Steps []EncounterDefinition `json:"steps"`
	Seed  int64                 `json:"seed"`

	CurrentStepIndex int          `json:"current_step_index"`
	StepResults      []StepResult `json:"step_results"`

	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`

	Totals RewardBundle `json:"totals"`

	Status         RunStatus `json:"status"`
	RewardsClaimed bool      `json:"rewards_claimed"`

	StartedAt    time.Time     `json:"started_at"`
	StepDuration time.Duration `json:"step_duration"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// TotalDuration is the full wall-clock length of the run
func (s *RunSession) TotalDuration() time.Duration {
	return s.StepDuration * time.Duration(len(s.Steps))
}

// Elapsed returns time since the run started, never negative
func (s *RunSession) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// TimeRemaining returns wall-clock time until the run's timer is fully
// elapsed. Derived from now on every call, never cached, so a session
// resumed after the app was killed reads correctly.
func (s *RunSession) TimeRemaining(now time.Time) time.Duration {
	remaining := s.TotalDuration() - s.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RevealableSteps returns how many steps the timer has paced out so far
func (s *RunSession) RevealableSteps(now time.Time) int {
	if s.StepDuration <= 0 {
		return len(s.Steps)
	}
	n := int(s.Elapsed(now) / s.StepDuration)
	if n > len(s.Steps) {
		return len(s.Steps)
	}
	return n
}

// Validate checks that a persisted record is internally consistent.
// Returning an error means the record must be treated as unrecoverable;
// resume fails closed rather than guessing a step index.
func (s *RunSession) Validate() error {
	switch {
	case s.SchemaVersion != RunSessionSchemaVersion:
		return errUnsupportedSchema
	case s.ID == "" || s.CharacterID == "":
		return errMissingIdentity
	case s.CurrentStepIndex < 0 || s.CurrentStepIndex > len(s.Steps):
		return errStepIndexOutOfRange
	case len(s.StepResults) != s.CurrentStepIndex:
		return errStepResultMismatch
	case s.HP < 0 || s.HP > s.MaxHP:
		return errHPOutOfRange
	case s.StartedAt.IsZero():
		return errMissingStartTime
	}

	switch s.Status {
	case StatusInProgress, StatusCompleted, StatusFailed, StatusAbandoned:
	default:
		return errUnknownStatus
	}

	return nil
}

type validationErr string

func (e validationErr) Error() string { return string(e) }

const (
	errUnsupportedSchema   = validationErr("unsupported run session schema version")
	errMissingIdentity     = validationErr("run session missing id or character id")
	errStepIndexOutOfRange = validationErr("current step index out of range")
	errStepResultMismatch  = validationErr("step result count does not match step index")
	errHPOutOfRange        = validationErr("hp outside [0, max_hp]")
	errMissingStartTime    = validationErr("run session missing start time")
	errUnknownStatus       = validationErr("unknown run status")
)
