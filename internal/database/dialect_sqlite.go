package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(config DialectConfig) string {
	return config.Path
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) SupportsLastInsertId() bool {
	return true
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// WAL lets the result writer and the content readers overlap
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return err
	}
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *SQLiteDialect) MarkTutorialSeenQuery() string {
	return "INSERT OR IGNORE INTO tutorial_flags (player_id, game_id) VALUES (?, ?)"
}

func (d *SQLiteDialect) UpsertGameSettingsQuery() string {
	return "INSERT INTO game_settings (game_id, time_budget, rules) VALUES (?, ?, ?) " +
		"ON CONFLICT(game_id) DO UPDATE SET time_budget = excluded.time_budget, " +
		"rules = excluded.rules, updated_at = CURRENT_TIMESTAMP"
}

func (d *SQLiteDialect) UpsertContactQuery() string {
	return "INSERT INTO player_contacts (player_id, display_name, parent_email, notify) VALUES (?, ?, ?, ?) " +
		"ON CONFLICT(player_id) DO UPDATE SET display_name = excluded.display_name, " +
		"parent_email = excluded.parent_email, notify = excluded.notify, updated_at = CURRENT_TIMESTAMP"
}
