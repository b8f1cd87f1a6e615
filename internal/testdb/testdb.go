// Package testdb provides a shared test database helper backed by a
// temporary SQLite file.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/groupnom/overture-import/infrastructure/persistence"
	"github.com/groupnom/overture-import/internal/database"
)

// New creates a SQLite database in a temporary directory with all tables
// migrated. A file is used rather than :memory: so that every pooled
// connection sees the same data. The database is closed when the test ends.
func New(t *testing.T) database.Database {
	t.Helper()
	db, _ := NewPlain(t)
	if err := persistence.AutoMigrate(context.Background(), db); err != nil {
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	return db
}

// NewPlain creates an empty SQLite database without running migrations and
// returns it along with its connection URL.
func NewPlain(t *testing.T) (database.Database, string) {
	t.Helper()
	url := "sqlite:///" + filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDatabase(context.Background(), url)
	if err != nil {
		t.Fatalf("testdb.NewPlain: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, url
}
