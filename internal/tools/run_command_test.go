package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/xonecas/symbcore/internal/shell"
)

func newTestRunCommandExecutor(t *testing.T) *RunCommandExecutor {
	t.Helper()
	dir := t.TempDir()
	sh := shell.New(dir, shell.DefaultBlockFuncs())
	return NewRunCommandExecutor(sh, nil)
}

func TestRunCommandExecutorSuccess(t *testing.T) {
	ex := newTestRunCommandExecutor(t)
	args, _ := json.Marshal(map[string]any{"command": "echo hello", "description": "say hello"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.IsError {
		t.Fatalf("expected success, got error output: %s", out.Content)
	}
	if out.Content != "hello\n" {
		t.Fatalf("Content = %q, want %q", out.Content, "hello\n")
	}
}

func TestRunCommandExecutorNonZeroExit(t *testing.T) {
	ex := newTestRunCommandExecutor(t)
	args, _ := json.Marshal(map[string]any{"command": "exit 3", "description": "fail on purpose"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected IsError for a non-zero exit code")
	}
}

func TestRunCommandExecutorRejectsEmptyCommand(t *testing.T) {
	ex := newTestRunCommandExecutor(t)
	args, _ := json.Marshal(map[string]any{"command": "", "description": "nothing"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected an error result for an empty command")
	}
}

func TestRunCommandExecutorValidatedDefaultsTimeout(t *testing.T) {
	ex := newTestRunCommandExecutor(t)
	args, _ := json.Marshal(map[string]any{"command": "echo hi", "description": "d"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	v := handle.Validated()
	if v.TimeoutSec != runCommandDefaultTimeoutSec {
		t.Fatalf("TimeoutSec = %d, want default %d", v.TimeoutSec, runCommandDefaultTimeoutSec)
	}
}

func TestRunCommandExecutorValidatedClampsTimeout(t *testing.T) {
	ex := newTestRunCommandExecutor(t)
	args, _ := json.Marshal(map[string]any{"command": "echo hi", "description": "d", "timeout": 10000})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	v := handle.Validated()
	if v.TimeoutSec != runCommandMaxTimeoutSec {
		t.Fatalf("TimeoutSec = %d, want clamped max %d", v.TimeoutSec, runCommandMaxTimeoutSec)
	}
}
