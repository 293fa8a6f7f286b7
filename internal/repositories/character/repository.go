// Package character provides the repository interface and types for
// persistent character storage
package character

import (
	"context"

	"github.com/questbound/quest-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/questbound/quest-api/internal/repositories/character Repository

// CreateInput contains parameters for creating a character
type CreateInput struct {
	Character *entities.Character
}

// CreateOutput contains the result of creating a character
type CreateOutput struct {
	Character *entities.Character
}

// GetInput contains parameters for retrieving a character
type GetInput struct {
	ID string
}

// GetOutput contains the result of retrieving a character
type GetOutput struct {
	Character *entities.Character
}

// UpdateInput contains parameters for updating a character
type UpdateInput struct {
	Character *entities.Character
}

// UpdateOutput contains the result of updating a character
type UpdateOutput struct {
	Character *entities.Character
}

// DeleteInput contains parameters for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of deleting a character
type DeleteOutput struct{}

// ListByPlayerIDInput contains parameters for listing a player's characters
type ListByPlayerIDInput struct {
	PlayerID string
}

// ListByPlayerIDOutput contains the result of listing a player's characters
type ListByPlayerIDOutput struct {
	Characters []*entities.Character
}

// Repository defines the interface for character storage operations
type Repository interface {
	// Create stores a new character and indexes it by player
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces an existing character record
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a character and its index entries
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByPlayerID returns all characters owned by a player
	ListByPlayerID(ctx context.Context, input ListByPlayerIDInput) (*ListByPlayerIDOutput, error)
}
