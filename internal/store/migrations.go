package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the ledger tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS daily_totals (
			day      TEXT PRIMARY KEY,
			focus_ms INTEGER NOT NULL DEFAULT 0,
			ai_ms    INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS project_daily (
			project  TEXT NOT NULL,
			day      TEXT NOT NULL,
			focus_ms INTEGER NOT NULL DEFAULT 0,
			ai_ms    INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (project, day)
		)`,

		`CREATE TABLE IF NOT EXISTS branch_daily (
			project  TEXT NOT NULL,
			branch   TEXT NOT NULL,
			day      TEXT NOT NULL,
			focus_ms INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (project, branch, day)
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_project_daily_day ON project_daily(day)`,
		`CREATE INDEX IF NOT EXISTS idx_branch_daily_project ON branch_daily(project)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration statement: %w", err)
		}
	}

	if _, err := db.conn.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := db.conn.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	return err
}
