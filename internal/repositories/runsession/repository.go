// Package runsession provides the repository interface and types for
// persisted run sessions (dungeon, arena, and expedition runs).
//
// A run session record is flat, versioned JSON carrying everything needed
// to reconstruct resume behavior from cold storage, including the RNG
// seed fixed at commit time.
package runsession

import (
	"context"

	"github.com/questbound/quest-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=runsessionmock github.com/questbound/quest-api/internal/repositories/runsession Repository

// CreateInput contains parameters for persisting a new run session
type CreateInput struct {
	Session *entities.RunSession
}

// CreateOutput contains the result of persisting a run session
type CreateOutput struct {
	Session *entities.RunSession
}

// GetInput contains parameters for retrieving a run session
type GetInput struct {
	ID string
}

// GetOutput contains the result of retrieving a run session
type GetOutput struct {
	Session *entities.RunSession
}

// GetActiveInput contains parameters for finding a character's active run
type GetActiveInput struct {
	CharacterID string
	Mode        entities.RunMode
}

// GetActiveOutput contains the result of finding an active run
type GetActiveOutput struct {
	Session *entities.RunSession
}

// UpdateInput contains parameters for replacing a run session record
type UpdateInput struct {
	Session *entities.RunSession
}

// UpdateOutput contains the result of replacing a run session record
type UpdateOutput struct {
	Session *entities.RunSession
}

// DeleteInput contains parameters for deleting a run session
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of deleting a run session
type DeleteOutput struct{}

// Repository defines the interface for run session storage operations
type Repository interface {
	// Create stores a new run session and, while it is in progress,
	// registers it as the character's active run for its mode
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a run session by ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetActive retrieves the character's in-progress run for a mode
	GetActive(ctx context.Context, input GetActiveInput) (*GetActiveOutput, error)

	// Update replaces a run session record, clearing the active pointer
	// once the session reaches a terminal status
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a run session
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}
