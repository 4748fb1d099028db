package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/dbx"
	"github.com/dmitrijs2005/localdate/internal/models"
	"github.com/google/uuid"
)

// timeNow is a test seam for the clock.
var timeNow = time.Now

const userColumns = `id, username, description, profile_pic,
	location_latitude, location_longitude, location_last_updated,
	settings_visibility, settings_notifications, settings_location_sharing,
	created_at, updated_at, last_active`

// SQLiteRepository implements Repository over a *sql.DB. It holds the full
// handle (not a DBTX) because create/update run their uniqueness checks
// inside a transaction.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository bound to the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var lat, lon sql.NullFloat64
	var locUpdated sql.NullInt64
	var visibility string
	var created, updated, active int64

	err := row.Scan(
		&u.ID, &u.Username, &u.Description, &u.ProfilePic,
		&lat, &lon, &locUpdated,
		&visibility, &u.Settings.Notifications, &u.Settings.LocationSharing,
		&created, &updated, &active,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid && locUpdated.Valid {
		u.Location = &models.Location{
			Latitude:    lat.Float64,
			Longitude:   lon.Float64,
			LastUpdated: time.UnixMilli(locUpdated.Int64),
		}
	}
	u.Settings.Visibility = models.Visibility(visibility)
	u.CreatedAt = time.UnixMilli(created)
	u.UpdatedAt = time.UnixMilli(updated)
	u.LastActive = time.UnixMilli(active)
	return &u, nil
}

func getByID(ctx context.Context, db dbx.DBTX, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func usernameTaken(ctx context.Context, db dbx.DBTX, username, excludeID string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ? AND id <> ?`, username, excludeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return true, nil
}

// Create inserts a new user. The uniqueness check and the insert run in one
// transaction so two concurrent creates of the same username cannot both
// succeed.
func (r *SQLiteRepository) Create(ctx context.Context, username string, settings models.Settings) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", common.ErrorValidation)
	}

	now := timeNow()
	u := &models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Settings:   settings,
		CreatedAt:  now,
		UpdatedAt:  now,
		LastActive: now,
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		taken, err := usernameTaken(ctx, tx, username, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("username %q: %w", username, common.ErrorConflict)
		}

		query := `
			INSERT INTO users (id, username, description, profile_pic,
				settings_visibility, settings_notifications, settings_location_sharing,
				created_at, updated_at, last_active)
			VALUES (?, ?, '', '', ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			u.ID, u.Username,
			string(u.Settings.Visibility), u.Settings.Notifications, u.Settings.LocationSharing,
			now.UnixMilli(), now.UnixMilli(), now.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return getByID(ctx, r.db, id)
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return u, nil
}

// Update applies the partial update over the stored record. Nested structs
// (settings, location) replace the stored value wholesale; callers supply
// them complete. Changing the username re-checks uniqueness in the same
// transaction as the write.
func (r *SQLiteRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	var merged *models.User

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := getByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if upd.Username != nil && *upd.Username != u.Username {
			taken, err := usernameTaken(ctx, tx, *upd.Username, id)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("username %q: %w", *upd.Username, common.ErrorConflict)
			}
			u.Username = *upd.Username
		}
		if upd.Description != nil {
			u.Description = *upd.Description
		}
		if upd.ProfilePic != nil {
			u.ProfilePic = *upd.ProfilePic
		}
		if upd.Location != nil {
			loc := *upd.Location
			u.Location = &loc
		}
		if upd.Settings != nil {
			u.Settings = *upd.Settings
		}

		now := timeNow()
		u.UpdatedAt = now
		u.LastActive = now

		var lat, lon sql.NullFloat64
		var locUpdated sql.NullInt64
		if u.Location != nil {
			lat = sql.NullFloat64{Float64: u.Location.Latitude, Valid: true}
			lon = sql.NullFloat64{Float64: u.Location.Longitude, Valid: true}
			locUpdated = sql.NullInt64{Int64: u.Location.LastUpdated.UnixMilli(), Valid: true}
		}

		query := `
			UPDATE users SET username = ?, description = ?, profile_pic = ?,
				location_latitude = ?, location_longitude = ?, location_last_updated = ?,
				settings_visibility = ?, settings_notifications = ?, settings_location_sharing = ?,
				updated_at = ?, last_active = ?
			WHERE id = ?
		`
		_, err = tx.ExecContext(ctx, query,
			u.Username, u.Description, u.ProfilePic,
			lat, lon, locUpdated,
			string(u.Settings.Visibility), u.Settings.Notifications, u.Settings.LocationSharing,
			now.UnixMilli(), now.UnixMilli(),
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		merged = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return result, nil
}
