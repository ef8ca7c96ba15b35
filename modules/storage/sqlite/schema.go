package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schema is applied in order. Every statement uses IF NOT EXISTS so an
// interrupted earlier run can be resumed.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS memories (
		id         TEXT PRIMARY KEY,
		content    TEXT    NOT NULL,
		creator    TEXT    NOT NULL DEFAULT '',
		tags       TEXT    NOT NULL DEFAULT '[]',
		votes      INTEGER NOT NULL DEFAULT 0,
		created_at TEXT    NOT NULL,
		updated_at TEXT    NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS votes (
		memory_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
		voter_id  TEXT NOT NULL,
		direction TEXT NOT NULL CHECK (direction IN ('up', 'down')),
		cast_at   TEXT NOT NULL,
		PRIMARY KEY (memory_id, voter_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_votes_memory ON votes(memory_id)`,
}

// migrate brings the database up to schemaVersion. Re-running against a
// current database is a no-op.
func migrate(db *sql.DB) error {
	ctx := context.TODO()

	_, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)")
	if err != nil {
		return fmt.Errorf("sqlite: schema_version table: %w", err)
	}

	var current int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: schema: %w in statement %q", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}
	return nil
}
