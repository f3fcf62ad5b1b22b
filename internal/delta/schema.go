package delta

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS file_deltas (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	turn_id     INTEGER NOT NULL,
	file_path   TEXT NOT NULL,
	op          TEXT NOT NULL,
	old_content BLOB,
	created     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_file_deltas_turn ON file_deltas(session_id, turn_id);
`

// EnsureSchema creates the file_deltas table if it does not already
// exist. Callers share the same *sql.DB as internal/store.Cache (or
// their own), so this must run once before any Tracker method.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
