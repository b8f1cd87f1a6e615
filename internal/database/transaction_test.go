package database

import (
	"context"
	"testing"
)

func createItems(t *testing.T, db Database) {
	t.Helper()
	if err := db.Session(context.Background()).Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
}

func countItems(t *testing.T, db Database) int64 {
	t.Helper()
	var count int64
	if err := db.Session(context.Background()).Raw("SELECT COUNT(*) FROM test_items").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestTransaction_Commit(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	createItems(t, db)

	txn, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := txn.Session().Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if got := countItems(t, db); got != 1 {
		t.Errorf("expected count 1, got %d", got)
	}
	if !txn.Finished() {
		t.Error("expected Finished() after commit")
	}

	// Second commit and a late rollback are no-ops
	if err := txn.Commit(); err != nil {
		t.Errorf("second Commit should not error: %v", err)
	}
	if err := txn.Rollback(); err != nil {
		t.Errorf("Rollback after Commit should not error: %v", err)
	}
	if got := countItems(t, db); got != 1 {
		t.Errorf("expected count 1 after late rollback, got %d", got)
	}
}

func TestTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	createItems(t, db)

	txn, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := txn.Session().Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := txn.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if got := countItems(t, db); got != 0 {
		t.Errorf("expected count 0 after rollback, got %d", got)
	}
	if err := txn.Rollback(); err != nil {
		t.Errorf("second Rollback should not error: %v", err)
	}
}

func TestTransaction_CommittedBatchSurvivesLaterRollback(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	createItems(t, db)

	first, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := first.Session().Exec("INSERT INTO test_items (name) VALUES (?)", "kept").Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := first.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	second, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := second.Session().Exec("INSERT INTO test_items (name) VALUES (?)", "dropped").Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := second.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if got := countItems(t, db); got != 1 {
		t.Errorf("expected only the committed row, got %d rows", got)
	}
}
