package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xonecas/symbcore/internal/treesitter"
)

func newBuiltIndex(t *testing.T, files map[string]string) *treesitter.Index {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}
	idx := treesitter.NewIndex(dir)
	if err := idx.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestSearchTypesExecutorFindsSymbol(t *testing.T) {
	idx := newBuiltIndex(t, map[string]string{
		"a.go": "package a\n\nfunc NeedleFunc() {}\n",
	})

	ex := NewSearchTypesExecutor(idx)
	args, _ := json.Marshal(map[string]string{"query": "needle"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.IsError {
		t.Fatalf("unexpected error: %s", out.Content)
	}
	if !strings.Contains(strings.ToLower(out.Content), "needlefunc") {
		t.Fatalf("Content = %q, want a match for NeedleFunc", out.Content)
	}
}

func TestSearchTypesExecutorNoMatches(t *testing.T) {
	idx := newBuiltIndex(t, map[string]string{
		"a.go": "package a\n\nfunc SomeFunc() {}\n",
	})

	ex := NewSearchTypesExecutor(idx)
	args, _ := json.Marshal(map[string]string{"query": "totally-absent-xyz"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Content != "(no matching symbols)" {
		t.Fatalf("Content = %q", out.Content)
	}
}

func TestSearchTypesExecutorRejectsEmptyQuery(t *testing.T) {
	idx := newBuiltIndex(t, map[string]string{"a.go": "package a\n"})
	ex := NewSearchTypesExecutor(idx)
	args, _ := json.Marshal(map[string]string{"query": ""})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected an error result for an empty query")
	}
}
