// Package store opens the local SQLite database that holds all persistent
// state (users, messages, sessions) and bundles the per-family repositories.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/localdate/internal/store/messages"
	"github.com/dmitrijs2005/localdate/internal/store/migrations"
	"github.com/dmitrijs2005/localdate/internal/store/sessions"
	"github.com/dmitrijs2005/localdate/internal/store/users"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store is the durable record store. All operations persist to one local
// database file; there is no network I/O anywhere below this type.
type Store struct {
	db *sql.DB

	Users    users.Repository
	Messages messages.Repository
	Sessions sessions.Repository
}

// RunMigrations brings the schema to the current version (1). goose tracks
// applied versions, so calling it on an already-migrated database is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the database at dsn, runs migrations and
// returns the ready-to-use store. It must complete before any repository is
// used.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; with a pooled handle two write
	// transactions collide with SQLITE_BUSY. A single connection serializes
	// them so concurrent updates both land, last write winning.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		db:       db,
		Users:    users.NewSQLiteRepository(db),
		Messages: messages.NewSQLiteRepository(db),
		Sessions: sessions.NewSQLiteRepository(db),
	}, nil
}

// DB exposes the underlying handle for tests and migrations tooling.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	return s.db.Close()
}
