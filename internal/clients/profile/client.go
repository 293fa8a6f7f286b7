// Package profile holds the outbound integration points for the companion
// habit app: pushing character snapshots after progress changes and
// scheduling reveal notifications for timed runs.
//
// Both calls are fire-and-forget from the game's point of view. A failed
// push or schedule is logged and retried on the next progress event, never
// surfaced to the player.
package profile

import (
	"context"
	"time"

	"github.com/questbound/quest-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_client.go -package=profilemock github.com/questbound/quest-api/internal/clients/profile ProfileStore,Scheduler

// CharacterSnapshot is the flattened view of a character the companion app
// renders. It carries no game internals, only display state.
type CharacterSnapshot struct {
	CharacterID string    `json:"character_id"`
	PlayerID    string    `json:"player_id"`
	Name        string    `json:"name"`
	Class       string    `json:"class"`
	Level       int       `json:"level"`
	XP          int       `json:"xp"`
	XPToNext    int       `json:"xp_to_next"`
	Gold        int       `json:"gold"`
	HP          int       `json:"hp"`
	MaxHP       int       `json:"max_hp"`
	BondXP      int       `json:"bond_xp"`
	Streak      int       `json:"streak"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SnapshotFromCharacter projects a character onto its companion-app view
func SnapshotFromCharacter(char *entities.Character) CharacterSnapshot {
	return CharacterSnapshot{
		CharacterID: char.ID,
		PlayerID:    char.PlayerID,
		Name:        char.Name,
		Class:       string(char.Class),
		Level:       char.Level,
		XP:          char.XP,
		XPToNext:    entities.XPToLevel(char.Level),
		Gold:        char.Gold,
		HP:          char.HP,
		MaxHP:       char.MaxHP,
		BondXP:      char.BondXP,
		Streak:      char.Streak,
		UpdatedAt:   char.UpdatedAt,
	}
}

// ProfileStore pushes character snapshots to the companion app backend
type ProfileStore interface {
	// PushSnapshot publishes the character's current display state
	PushSnapshot(ctx context.Context, snapshot CharacterSnapshot) error
}

// Reminder is a notification scheduled for a future reveal, such as the
// next timed dungeon room or an expedition return.
type Reminder struct {
	CharacterID string    `json:"character_id"`
	RunID       string    `json:"run_id"`
	Message     string    `json:"message"`
	FireAt      time.Time `json:"fire_at"`
}

// Scheduler books reveal notifications with the push notification service
type Scheduler interface {
	// Schedule books a reminder. Rebooking the same run replaces any
	// pending reminder for it
	Schedule(ctx context.Context, reminder Reminder) error

	// Cancel drops any pending reminder for a run
	Cancel(ctx context.Context, runID string) error
}
