package database

import (
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN turns on parseTime so DATETIME columns scan into time.Time
func (d *MySQLDialect) DSN(config DialectConfig) string {
	cfg, err := mysql.ParseDSN(config.URL)
	if err != nil {
		return config.URL
	}
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

func (d *MySQLDialect) MarkTutorialSeenQuery() string {
	return "INSERT IGNORE INTO tutorial_flags (player_id, game_id) VALUES (?, ?)"
}

func (d *MySQLDialect) UpsertGameSettingsQuery() string {
	return "INSERT INTO game_settings (game_id, time_budget, rules) VALUES (?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE time_budget = VALUES(time_budget), rules = VALUES(rules), " +
		"updated_at = CURRENT_TIMESTAMP"
}

func (d *MySQLDialect) UpsertContactQuery() string {
	return "INSERT INTO player_contacts (player_id, display_name, parent_email, notify) VALUES (?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE display_name = VALUES(display_name), parent_email = VALUES(parent_email), " +
		"notify = VALUES(notify), updated_at = CURRENT_TIMESTAMP(6)"
}
