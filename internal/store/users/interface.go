package users

import (
	"context"

	"github.com/dmitrijs2005/localdate/internal/models"
)

// Repository is the storage contract for user records.
//
// Missing records are reported as common.ErrorNotFound, duplicate usernames
// as common.ErrorConflict; both are matched with errors.Is.
type Repository interface {
	// Create persists a new user with a generated id and fresh timestamps.
	Create(ctx context.Context, username string, settings models.Settings) (*models.User, error)

	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername looks a user up through the unique username index.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Update merges the partial update over the stored record and refreshes
	// updated_at/last_active. The merge is shallow: see models.UserUpdate.
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)

	// Delete removes the record. Deleting a missing id is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns a snapshot of the whole user table, for discovery.
	List(ctx context.Context) ([]models.User, error)
}
