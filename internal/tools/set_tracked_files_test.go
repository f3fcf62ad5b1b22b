package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/xonecas/symbcore/internal/contextbuild"
)

func TestSetTrackedFilesExecutorReplacesSet(t *testing.T) {
	tracked := contextbuild.NewTrackedFiles(t.TempDir())
	ex := NewSetTrackedFilesExecutor(tracked)

	args, _ := json.Marshal(map[string][]string{"paths": {"a.go", "b.go"}})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := handle.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := tracked.Paths(); len(got) != 2 {
		t.Fatalf("Paths() = %v, want 2 entries", got)
	}

	args2, _ := json.Marshal(map[string][]string{"paths": {"c.go"}})
	handle2, err := ex.Process(context.Background(), makeRequest("call-2", args2))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := handle2.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := tracked.Paths(); len(got) != 1 || got[0] != "c.go" {
		t.Fatalf("Paths() = %v, want [c.go] (full replacement)", got)
	}
}
