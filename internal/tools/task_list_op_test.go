package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func TestTaskListOpExecutorUpdatesScratchpad(t *testing.T) {
	pad := &Scratchpad{}
	ex := NewTaskListOpExecutor(pad)

	args, _ := json.Marshal(map[string]string{"content": "1. do a thing\n2. do another"})
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
	if pad.Content() != "1. do a thing\n2. do another" {
		t.Fatalf("Content() = %q", pad.Content())
	}
}

func TestTaskListOpExecutorRejectsEmptyContent(t *testing.T) {
	pad := &Scratchpad{}
	ex := NewTaskListOpExecutor(pad)

	args, _ := json.Marshal(map[string]string{"content": ""})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected an error result for empty content")
	}
	if pad.Content() != "" {
		t.Fatal("scratchpad should not be updated on a rejected write")
	}
}

func TestTaskListOpExecutorReplacesEntirely(t *testing.T) {
	pad := &Scratchpad{}
	pad.set("old plan")
	ex := NewTaskListOpExecutor(pad)

	args, _ := json.Marshal(map[string]string{"content": "new plan"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := handle.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if pad.Content() != "new plan" {
		t.Fatalf("Content() = %q, want full replacement", pad.Content())
	}
}
