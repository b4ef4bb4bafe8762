package storage

import "database/sql"

// migrateV001 creates the initial punch schema. Frames keep their tags in a
// separate relation so tag membership stays queryable; `position` preserves
// the order tags were given on the command line. Every statement uses
// IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS frames (
			id          TEXT PRIMARY KEY,
			start       DATETIME NOT NULL,
			"end"       DATETIME,
			project     TEXT NOT NULL,
			deleted     BOOLEAN NOT NULL DEFAULT 0,
			last_update DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS frame_tags (
			frame_id TEXT NOT NULL REFERENCES frames(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			tag      TEXT NOT NULL,
			PRIMARY KEY (frame_id, position)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_frames_start       ON frames(start)`,
		`CREATE INDEX IF NOT EXISTS idx_frames_project     ON frames(project)`,
		`CREATE INDEX IF NOT EXISTS idx_frames_deleted_end ON frames(deleted, "end")`,
		`CREATE INDEX IF NOT EXISTS idx_frame_tags_tag     ON frame_tags(tag)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
