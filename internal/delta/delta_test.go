package delta

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordModifyAndUndo(t *testing.T) {
	db := openTestDB(t)
	tr := New(db)
	tr.SetSession("sess-1")
	tr.BeginTurn(1)

	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("new contents"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tr.RecordModify(path, []byte("original contents"))

	affected, err := tr.Undo("sess-1", 1)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(affected) != 1 || affected[0] != path {
		t.Fatalf("affected = %v, want [%s]", affected, path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "original contents" {
		t.Fatalf("content after undo = %q, want %q", got, "original contents")
	}
}

func TestRecordModifyOnlyFirstSnapshotKept(t *testing.T) {
	db := openTestDB(t)
	tr := New(db)
	tr.SetSession("sess-1")
	tr.BeginTurn(1)

	path := filepath.Join(t.TempDir(), "a.txt")
	tr.RecordModify(path, []byte("first snapshot"))
	tr.RecordModify(path, []byte("second snapshot"))

	if err := os.WriteFile(path, []byte("whatever is on disk now"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := tr.Undo("sess-1", 1); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "first snapshot" {
		t.Fatalf("content after undo = %q, want the first recorded snapshot", got)
	}
}

func TestRecordCreateUndoRemovesFile(t *testing.T) {
	db := openTestDB(t)
	tr := New(db)
	tr.SetSession("sess-1")
	tr.BeginTurn(1)

	path := filepath.Join(t.TempDir(), "created.txt")
	if err := os.WriteFile(path, []byte("hi"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tr.RecordCreate(path)

	if _, err := tr.Undo("sess-1", 1); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected created file to be removed by undo, stat err = %v", err)
	}
}

func TestDeleteTurnClearsDeltas(t *testing.T) {
	db := openTestDB(t)
	tr := New(db)
	tr.SetSession("sess-1")
	tr.BeginTurn(1)

	path := filepath.Join(t.TempDir(), "a.txt")
	tr.RecordModify(path, []byte("original"))
	tr.DeleteTurn("sess-1", 1)

	affected, err := tr.Undo("sess-1", 1)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(affected) != 0 {
		t.Fatalf("expected no deltas after DeleteTurn, got %v", affected)
	}
}

func TestBeginTurnSetsTurnID(t *testing.T) {
	db := openTestDB(t)
	tr := New(db)
	tr.BeginTurn(42)
	if tr.TurnID() != 42 {
		t.Fatalf("TurnID() = %d, want 42", tr.TurnID())
	}
}
