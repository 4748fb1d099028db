package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  profile_pic TEXT NOT NULL DEFAULT '',
  location_latitude REAL,
  location_longitude REAL,
  location_last_updated INTEGER,
  settings_visibility TEXT NOT NULL DEFAULT 'public',
  settings_notifications INTEGER NOT NULL DEFAULT 1,
  settings_location_sharing INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  last_active INTEGER NOT NULL
);
CREATE UNIQUE INDEX idx_users_by_username ON users (username);
`)
	require.NoError(t, err)
	return db
}

// fixClock pins the repository clock to millisecond precision so stored and
// returned timestamps compare equal.
func fixClock(t *testing.T, at time.Time) time.Time {
	t.Helper()
	at = time.UnixMilli(at.UnixMilli())
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
	return at
}

func TestCreate_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	now := fixClock(t, time.Now())

	created, err := r.Create(ctx, "alice", models.DefaultSettings())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, now, created.CreatedAt)
	assert.Equal(t, now, created.UpdatedAt)
	assert.Equal(t, now, created.LastActive)
	assert.Equal(t, models.DefaultSettings(), created.Settings)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("stored user differs from created (-want +got):\n%s", diff)
	}
}

func TestCreate_DuplicateUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Create(ctx, "alice", models.DefaultSettings())
	require.NoError(t, err)

	_, err = r.Create(ctx, "alice", models.DefaultSettings())
	require.ErrorIs(t, err, common.ErrorConflict)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'alice'`).Scan(&n))
	assert.Equal(t, 1, n, "conflict must leave exactly one record")
}

func TestCreate_EmptyUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Create(context.Background(), "", models.DefaultSettings())
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	created, err := r.Create(ctx, "bob", models.DefaultSettings())
	require.NoError(t, err)

	got, err := r.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = r.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_MergesAndRefreshesTimestamps(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	created := fixClock(t, time.Now().Add(-time.Hour))
	u, err := r.Create(ctx, "carol", models.DefaultSettings())
	require.NoError(t, err)

	later := fixClock(t, time.Now())
	desc := "hello"
	got, err := r.Update(ctx, u.ID, models.UserUpdate{Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, "hello", got.Description)
	assert.Equal(t, "carol", got.Username, "unset fields stay")
	assert.Equal(t, created, got.CreatedAt, "created_at never changes")
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, later, got.LastActive)

	// Persisted, not just returned.
	stored, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Description)
}

func TestUpdate_SettingsReplacedWholesale(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	u, err := r.Create(ctx, "dave", models.DefaultSettings())
	require.NoError(t, err)

	s := models.Settings{Visibility: models.VisibilityPrivate, Notifications: false, LocationSharing: true}
	got, err := r.Update(ctx, u.ID, models.UserUpdate{Settings: &s})
	require.NoError(t, err)
	assert.Equal(t, s, got.Settings)
}

func TestUpdate_Location(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	now := fixClock(t, time.Now())

	u, err := r.Create(ctx, "erin", models.DefaultSettings())
	require.NoError(t, err)
	require.Nil(t, u.Location, "location absent until a fix is stored")

	loc := models.Location{Latitude: 52.52, Longitude: 13.405, LastUpdated: now}
	got, err := r.Update(ctx, u.ID, models.UserUpdate{Location: &loc})
	require.NoError(t, err)
	require.NotNil(t, got.Location)
	assert.Equal(t, loc, *got.Location)

	stored, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Location)
	assert.Equal(t, loc, *stored.Location)
}

func TestUpdate_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	desc := "x"
	_, err := r.Update(context.Background(), "missing", models.UserUpdate{Description: &desc})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_UsernameUniquenessRechecked(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Create(ctx, "frank", models.DefaultSettings())
	require.NoError(t, err)
	u2, err := r.Create(ctx, "grace", models.DefaultSettings())
	require.NoError(t, err)

	taken := "frank"
	_, err = r.Update(ctx, u2.ID, models.UserUpdate{Username: &taken})
	require.ErrorIs(t, err, common.ErrorConflict)

	// Renaming to your own name is fine.
	same := "grace"
	_, err = r.Update(ctx, u2.ID, models.UserUpdate{Username: &same})
	require.NoError(t, err)
}

func TestUpdate_LastWriteWins(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	u, err := r.Create(ctx, "heidi", models.DefaultSettings())
	require.NoError(t, err)

	x, y := "x", "y"
	_, err = r.Update(ctx, u.ID, models.UserUpdate{Description: &x})
	require.NoError(t, err)
	_, err = r.Update(ctx, u.ID, models.UserUpdate{Description: &y})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "y", got.Description, "no merge of concurrent writes; the later one lands")
}

func TestDelete_NoopWhenAbsent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Delete(ctx, "missing"))

	u, err := r.Create(ctx, "ivan", models.DefaultSettings())
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, u.ID))

	_, err = r.GetByID(ctx, u.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := r.Create(ctx, name, models.DefaultSettings())
		require.NoError(t, err)
	}

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
