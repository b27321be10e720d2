package database

import (
	"strings"
	"testing"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		dbType       string
		driver       string
		lastInsertID bool
		subdir       string
	}{
		{dbType: "sqlite", driver: "sqlite3", lastInsertID: true, subdir: "sqlite"},
		{dbType: "postgres", driver: "postgres", lastInsertID: false, subdir: "postgres"},
		{dbType: "mysql", driver: "mysql", lastInsertID: true, subdir: "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			dialect, ok := NewDialect(tt.dbType)
			if !ok {
				t.Fatalf("NewDialect(%q) not found", tt.dbType)
			}
			if got := dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := dialect.SupportsLastInsertId(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertID)
			}
			if got := dialect.MigrationsSubdir(); got != tt.subdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.subdir)
			}
			for name, q := range map[string]string{
				"tutorial": dialect.MarkTutorialSeenQuery(),
				"settings": dialect.UpsertGameSettingsQuery(),
				"contact":  dialect.UpsertContactQuery(),
			} {
				if !strings.Contains(q, "INSERT") {
					t.Errorf("%s upsert = %q, want an INSERT", name, q)
				}
			}
		})
	}

	if _, ok := NewDialect("oracle"); ok {
		t.Error("expected unknown database type to be rejected")
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT payload FROM content_items WHERE game_id = ?",
			expected: "SELECT payload FROM content_items WHERE game_id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT payload FROM content_items WHERE game_id = ?",
			expected: "SELECT payload FROM content_items WHERE game_id = $1",
		},
		{
			name:     "PostgreSQL upsert",
			dialect:  NewPostgresDialect(),
			query:    NewPostgresDialect().MarkTutorialSeenQuery(),
			expected: "INSERT INTO tutorial_flags (player_id, game_id) VALUES ($1, $2) ON CONFLICT (player_id, game_id) DO NOTHING",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE game_settings SET rules = ? WHERE game_id = ?",
			expected: "UPDATE game_settings SET rules = ? WHERE game_id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMySQLDSNParsesTime(t *testing.T) {
	dsn := NewMySQLDialect().DSN(DialectConfig{URL: "app:secret@tcp(db:3306)/nutriquest"})
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("DSN() = %q, want parseTime=true", dsn)
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- comment
CREATE TABLE a (
    id INTEGER
);

CREATE INDEX idx_a ON a (id);
-- trailing comment
`
	stmts := SplitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("SplitStatements() = %d statements, want 2: %q", len(stmts), stmts)
	}
	if !strings.HasPrefix(stmts[0], "CREATE TABLE a (") || strings.HasSuffix(stmts[0], ";") {
		t.Errorf("first statement = %q", stmts[0])
	}
	if stmts[1] != "CREATE INDEX idx_a ON a (id)" {
		t.Errorf("second statement = %q", stmts[1])
	}
}
