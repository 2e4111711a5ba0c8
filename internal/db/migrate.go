package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and are
// re-run on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS timer_slots (
		slot       TEXT PRIMARY KEY
		           CHECK(slot IN ('active_session','suspended_stack')),
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS worklog_journal (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL,
		source_type TEXT NOT NULL
		            CHECK(source_type IN ('story','program_story','story_follow_up','program_follow_up')),
		source_id   TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		hours_spent REAL NOT NULL CHECK(hours_spent >= 0),
		work_date   TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		ended_at    TEXT NOT NULL,
		status      TEXT NOT NULL
		            CHECK(status IN ('submitted','failed')),
		remote_id   TEXT,
		error       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_journal_created ON worklog_journal(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_status ON worklog_journal(status)`,

	`ALTER TABLE worklog_journal ADD COLUMN attempts INTEGER NOT NULL DEFAULT 1`,
}
