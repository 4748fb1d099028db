package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/localdate/internal/models"
)

// DefaultTTL is the session lifetime applied at login.
const DefaultTTL = 7 * 24 * time.Hour

// Repository is the storage contract for auth sessions. A session is only
// ever created or destroyed; there is no renewal.
type Repository interface {
	// Set upserts a session expiring ttl from now.
	Set(ctx context.Context, token, userID string, ttl time.Duration) error

	// Get returns the first stored session. An expired session is cleared
	// and reported as common.ErrorNotFound, as is an empty table.
	Get(ctx context.Context, now time.Time) (*models.Session, error)

	// Clear deletes all sessions (logout).
	Clear(ctx context.Context) error
}
