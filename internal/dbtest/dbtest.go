// Package dbtest provides helpers for testing database code.
package dbtest

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/starquake/trivia/internal/db"
)

// SetupTestDB creates a temporary SQLite database file for testing and returns its DSN.
// The file is removed when the test finishes.
func SetupTestDB(t *testing.T) string {
	t.Helper()

	tmpDB, err := os.CreateTemp(t.TempDir(), "trivia-test-*.sqlite")
	if err != nil {
		t.Fatalf("failed to create temp db: %v", err)
	}
	tmpDBPath := tmpDB.Name()
	if err = tmpDB.Close(); err != nil {
		t.Fatalf("failed to close temp db: %v", err)
	}

	return fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		tmpDBPath,
	)
}

// Open opens an in-memory SQLite connection with migrations applied.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	conn := OpenUnmigrated(t)

	if err := db.Migrate(t.Context(), conn, db.DialectSQLite); err != nil {
		t.Fatalf("error running migrations: %v", err)
	}

	return conn
}

// OpenUnmigrated opens an in-memory SQLite connection without migrations applied.
// A single connection is kept so every query sees the same in-memory database.
func OpenUnmigrated(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("error opening SQLite database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	t.Cleanup(func() {
		if closeErr := conn.Close(); closeErr != nil {
			t.Errorf("error closing SQLite database: %v", closeErr)
		}
	})

	return conn
}
