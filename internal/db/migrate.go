package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are re-run on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS narratives (
		key        TEXT PRIMARY KEY,
		model      TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_narratives_created ON narratives(created_at)`,
	`ALTER TABLE narratives ADD COLUMN hits INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE narratives ADD COLUMN last_used_at TEXT`,
}
