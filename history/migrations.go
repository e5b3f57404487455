package history

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 2

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
    id          TEXT PRIMARY KEY,
    created_at  TEXT NOT NULL,
    code        TEXT NOT NULL,
    kind        TEXT NOT NULL
                CHECK(kind IN ('success','application_error','timed_out','output_too_large','malformed_output','rejected')),
    action      TEXT NOT NULL DEFAULT '',
    message     TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at DESC);
`

const schemaV2 = `
ALTER TABLE submissions ADD COLUMN warning TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS idx_submissions_kind ON submissions(kind);
`

func runMigrations(db *sql.DB) error {
	var current int
	row := db.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&current); err != nil {
		// Table doesn't exist or is empty
		current = 0
	}

	if current >= schemaVersion {
		return nil
	}

	steps := []struct {
		version int
		sql     string
	}{
		{1, schemaV1},
		{2, schemaV2},
	}
	for _, step := range steps {
		if current >= step.version {
			continue
		}
		if _, err := db.Exec(step.sql); err != nil {
			return fmt.Errorf("schema v%d: %w", step.version, err)
		}
	}

	_, err := db.Exec(`
		DELETE FROM schema_version;
		INSERT INTO schema_version (version) VALUES (?);
	`, schemaVersion)
	return err
}
