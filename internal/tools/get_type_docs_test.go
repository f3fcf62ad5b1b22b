package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestGetTypeDocsExecutorFindsExactSymbol(t *testing.T) {
	idx := newBuiltIndex(t, map[string]string{
		"a.go": "package a\n\ntype Widget struct {\n\tName string\n}\n",
	})

	ex := NewGetTypeDocsExecutor(idx)
	args, _ := json.Marshal(map[string]string{"type_name": "Widget"})
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
	if !strings.Contains(out.Content, "Widget") {
		t.Fatalf("Content = %q, want it to mention Widget", out.Content)
	}
}

func TestGetTypeDocsExecutorUnknownSymbol(t *testing.T) {
	idx := newBuiltIndex(t, map[string]string{"a.go": "package a\n"})
	ex := NewGetTypeDocsExecutor(idx)
	args, _ := json.Marshal(map[string]string{"type_name": "DoesNotExist"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected an error result for an unknown symbol name")
	}
}

func TestGetTypeDocsExecutorRejectsEmptyName(t *testing.T) {
	idx := newBuiltIndex(t, map[string]string{"a.go": "package a\n"})
	ex := NewGetTypeDocsExecutor(idx)
	args, _ := json.Marshal(map[string]string{"type_name": ""})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected an error result for an empty type_name")
	}
}
