package delta

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return db
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("second EnsureSchema call: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO file_deltas (session_id, turn_id, file_path, op, old_content, created)
		VALUES ('s1', 1, '/tmp/a.txt', 'modify', NULL, 1)`); err != nil {
		t.Fatalf("insert into file_deltas: %v", err)
	}
}
