package database

import (
	"context"
	"path/filepath"
	"testing"
)

// openTestDB opens a migrated SQLite database in a temp directory
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	tables := []string{"content_items", "game_settings", "tutorial_flags", "session_results", "player_contacts"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// A second run finds nothing to do
	if err := db.RunMigrations(ctx, filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
}

func TestDatabaseUpserts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := db.ExecContext(ctx, db.Dialect.MarkTutorialSeenQuery(), "player-1", "trivia"); err != nil {
			t.Fatalf("MarkTutorialSeen #%d failed: %v", i+1, err)
		}
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tutorial_flags").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("tutorial flags = %d, want 1", count)
	}

	if _, err := db.ExecContext(ctx, db.Dialect.UpsertGameSettingsQuery(), "trivia", 15, "lives: 3"); err != nil {
		t.Fatalf("insert settings failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, db.Dialect.UpsertGameSettingsQuery(), "trivia", 20, "lives: 5"); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	var budget int
	var rules string
	if err := db.QueryRowContext(ctx, "SELECT time_budget, rules FROM game_settings WHERE game_id = ?", "trivia").Scan(&budget, &rules); err != nil {
		t.Fatalf("read settings failed: %v", err)
	}
	if budget != 20 || rules != "lives: 5" {
		t.Errorf("settings = (%d, %q), want (20, %q)", budget, rules, "lives: 5")
	}
}

func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	var id int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.ExecReturningID(ctx,
			"INSERT INTO content_items (game_id, item_key, round, position, payload) VALUES (?, ?, ?, ?, ?)",
			"trivia", "q1", 1, 0, `{"id":"q1"}`)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("ExecReturningID() = %d, want a positive id", id)
	}

	errBoom := context.Canceled
	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO content_items (game_id, item_key, round, position, payload) VALUES (?, ?, ?, ?, ?)",
			"trivia", "q2", 1, 1, `{"id":"q2"}`); err != nil {
			return err
		}
		return errBoom
	})
	if err != errBoom {
		t.Fatalf("WithTx error = %v, want %v", err, errBoom)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_items").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("content rows = %d, want 1 after rollback", count)
	}
}
