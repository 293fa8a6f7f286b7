package progress

import (
	"github.com/questbound/quest-api/internal/entities"
)

// SpendAttemptInput contains parameters for spending a run attempt
type SpendAttemptInput struct {
	CharacterID string
	Mode        entities.RunMode
}

// SpendAttemptOutput contains the character after the attempt was spent
type SpendAttemptOutput struct {
	Character *entities.Character
}

// ApplyRewardsInput contains parameters for landing a reward bundle
type ApplyRewardsInput struct {
	CharacterID string
	Rewards     entities.RewardBundle

	// RunSucceeded gates streak advancement; failed and abandoned runs
	// still pay their partial bundle but do not extend the streak
	RunSucceeded bool
}

// ApplyRewardsOutput contains the updated character and level-up count
type ApplyRewardsOutput struct {
	Character    *entities.Character
	LevelsGained int
}

// ApplyPartyRewardsInput contains parameters for landing a shared bundle.
// The first character ID is the party leader and receives the item drops.
type ApplyPartyRewardsInput struct {
	CharacterIDs []string
	Rewards      entities.RewardBundle
	RunSucceeded bool
}

// ApplyPartyRewardsOutput contains the updated party members in input order
type ApplyPartyRewardsOutput struct {
	Characters []*entities.Character
}
