// Package dbtest provides throwaway migrated SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/config"
	"minisocial/internal/database"
)

// New returns a migrated database in t.TempDir, closed on cleanup.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:     config.DriverSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	}
	if err := database.MigrateUp(cfg); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	db, err := database.ConnectSQLite(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("ConnectSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// InsertUser creates a user row directly and returns its id.
func InsertUser(t testing.TB, db *sqlx.DB, username, displayName string) int64 {
	t.Helper()

	var name *string
	if displayName != "" {
		name = &displayName
	}

	var id int64
	err := db.Get(&id, db.Rebind(`
		INSERT INTO users (username, password_hashed, display_name, created_at)
		VALUES (?, 'x', ?, ?)
		RETURNING id
	`), username, name, time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		t.Fatalf("insert user %q: %v", username, err)
	}
	return id
}

// InsertUserTx is InsertUser for callers already holding a transaction.
func InsertUserTx(t testing.TB, tx *sqlx.Tx, username string) int64 {
	t.Helper()

	var id int64
	err := tx.Get(&id, tx.Rebind(`
		INSERT INTO users (username, password_hashed, created_at)
		VALUES (?, 'x', ?)
		RETURNING id
	`), username, time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		t.Fatalf("insert user %q: %v", username, err)
	}
	return id
}

// InsertPost creates a post row at createdAt and returns its id.
func InsertPost(t testing.TB, db *sqlx.DB, userID int64, content string, createdAt time.Time) int64 {
	t.Helper()

	var id int64
	err := db.Get(&id, db.Rebind(`
		INSERT INTO posts (user_id, content, created_at)
		VALUES (?, ?, ?)
		RETURNING id
	`), userID, content, createdAt.UTC())
	if err != nil {
		t.Fatalf("insert post: %v", err)
	}
	return id
}
