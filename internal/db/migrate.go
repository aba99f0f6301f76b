package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Every statement is idempotent so it runs on
// each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS design_sessions (
		id                 TEXT PRIMARY KEY,
		current_stage      TEXT NOT NULL,
		attempts           INTEGER NOT NULL DEFAULT 0 CHECK(attempts >= 0),
		terminal           INTEGER NOT NULL DEFAULT 0,
		subject            TEXT NOT NULL DEFAULT '',
		grade_level        TEXT NOT NULL DEFAULT '',
		duration           TEXT NOT NULL DEFAULT '',
		big_idea           TEXT NOT NULL DEFAULT '',
		essential_question TEXT NOT NULL DEFAULT '',
		challenge          TEXT NOT NULL DEFAULT '',
		pending_stage      TEXT,
		pending_value      TEXT,
		pending_mode       TEXT CHECK(pending_mode IS NULL OR pending_mode IN ('immediate','review','refine')),
		pending_attempts   INTEGER,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS session_completed_stages (
		session_id TEXT NOT NULL REFERENCES design_sessions(id) ON DELETE CASCADE,
		stage_id   TEXT NOT NULL,
		position   INTEGER NOT NULL,
		PRIMARY KEY (session_id, stage_id)
	)`,

	`CREATE TABLE IF NOT EXISTS session_project_data (
		session_id TEXT NOT NULL REFERENCES design_sessions(id) ON DELETE CASCADE,
		data_key   TEXT NOT NULL,
		value      TEXT NOT NULL,
		PRIMARY KEY (session_id, data_key)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_design_sessions_updated ON design_sessions(updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_completed_stages_session ON session_completed_stages(session_id, position)`,
}
