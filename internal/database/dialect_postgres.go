package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) SupportsLastInsertId() bool {
	// PostgreSQL doesn't support LastInsertId(), needs RETURNING clause
	return false
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *PostgresDialect) MarkTutorialSeenQuery() string {
	return "INSERT INTO tutorial_flags (player_id, game_id) VALUES (?, ?) " +
		"ON CONFLICT (player_id, game_id) DO NOTHING"
}

func (d *PostgresDialect) UpsertGameSettingsQuery() string {
	return "INSERT INTO game_settings (game_id, time_budget, rules) VALUES (?, ?, ?) " +
		"ON CONFLICT (game_id) DO UPDATE SET time_budget = EXCLUDED.time_budget, " +
		"rules = EXCLUDED.rules, updated_at = CURRENT_TIMESTAMP"
}

func (d *PostgresDialect) UpsertContactQuery() string {
	return "INSERT INTO player_contacts (player_id, display_name, parent_email, notify) VALUES (?, ?, ?, ?) " +
		"ON CONFLICT (player_id) DO UPDATE SET display_name = EXCLUDED.display_name, " +
		"parent_email = EXCLUDED.parent_email, notify = EXCLUDED.notify, updated_at = CURRENT_TIMESTAMP"
}
