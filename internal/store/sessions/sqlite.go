package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/dbx"
	"github.com/dmitrijs2005/localdate/internal/models"
)

// timeNow is a test seam for the clock used in Set.
var timeNow = time.Now

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	query := `
		INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET user_id = excluded.user_id, expires_at = excluded.expires_at
	`
	expiresAt := timeNow().Add(ttl)
	if _, err := r.db.ExecContext(ctx, query, token, userID, expiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

// Get performs read-time expiry detection: an expired session is removed so
// subsequent reads see an empty table.
func (r *SQLiteRepository) Get(ctx context.Context, now time.Time) (*models.Session, error) {
	var s models.Session
	var expires int64
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at FROM sessions LIMIT 1`).
		Scan(&s.Token, &s.UserID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.ExpiresAt = time.UnixMilli(expires)
	if s.Expired(now) {
		if err := r.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}
