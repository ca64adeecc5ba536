// ABOUTME: SQLite schema catalog and migration runner for the workout log.
// ABOUTME: Migrations are an ordered list keyed by version; version 1 defines all tables.
package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// schemaVersion is the version the catalog migrates to.
const schemaVersion = 1

// requiredTables is the full table set a healthy store must contain.
var requiredTables = []string{
	"workout_sessions",
	"workout_exercises",
	"sets",
	"exercises",
	"schema_version",
}

type migration struct {
	version int
	stmts   []string
}

// migrations lists every schema step in ascending version order. The runner
// applies each step above the store's current version and records it in
// schema_version, so re-running against an existing store is a no-op.
var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS workout_sessions (
				id TEXT PRIMARY KEY,
				date DATETIME NOT NULL,
				total_time INTEGER,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS exercises (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				body_part TEXT NOT NULL,
				video_url TEXT,
				created_at DATETIME NOT NULL,
				last_used DATETIME,
				UNIQUE(name, body_part)
			)`,
			`CREATE TABLE IF NOT EXISTS workout_exercises (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL,
				exercise_id TEXT,
				exercise_name TEXT NOT NULL,
				body_part TEXT NOT NULL,
				max_weight REAL,
				order_index INTEGER NOT NULL DEFAULT 0,
				FOREIGN KEY (session_id) REFERENCES workout_sessions(id) ON DELETE CASCADE,
				FOREIGN KEY (exercise_id) REFERENCES exercises(id) ON DELETE SET NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sets (
				id TEXT PRIMARY KEY,
				exercise_id TEXT NOT NULL,
				weight REAL NOT NULL CHECK (weight >= 0),
				reps INTEGER NOT NULL CHECK (reps >= 1),
				completed_at DATETIME NOT NULL,
				order_index INTEGER NOT NULL DEFAULT 0,
				FOREIGN KEY (exercise_id) REFERENCES workout_exercises(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_date ON workout_sessions(date DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_workout_exercises_session ON workout_exercises(session_id)`,
			`CREATE INDEX IF NOT EXISTS idx_workout_exercises_name ON workout_exercises(exercise_name COLLATE NOCASE)`,
			`CREATE INDEX IF NOT EXISTS idx_sets_exercise ON sets(exercise_id)`,
			`CREATE INDEX IF NOT EXISTS idx_exercises_body_part ON exercises(body_part)`,
			`CREATE INDEX IF NOT EXISTS idx_exercises_last_used ON exercises(last_used DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_exercises_name ON exercises(name COLLATE NOCASE)`,
		},
	},
}

// migrate brings the store from its current version up to schemaVersion.
// Each step runs in its own transaction with its version row, so a failed
// step leaves the store at the last fully applied version.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}

	_, err = tx.Exec(
		`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`,
		m.version, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}

// currentVersion returns the highest recorded schema version, or 0 when the
// schema_version table is empty.
func currentVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}
