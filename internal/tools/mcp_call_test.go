package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/xonecas/symbcore/internal/mcp"
)

func TestMcpCallExecutorSuccess(t *testing.T) {
	servers := map[string]*mcp.Proxy{
		"test": mcp.NewProxy(mcp.NewStubClient()),
	}
	ex := NewMcpCallExecutor(servers)

	args, _ := json.Marshal(map[string]string{"server": "test", "tool": "get_status"})
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
	if out.Content == "" {
		t.Fatal("expected non-empty content")
	}
}

func TestMcpCallExecutorUnknownServer(t *testing.T) {
	ex := NewMcpCallExecutor(map[string]*mcp.Proxy{})
	args, _ := json.Marshal(map[string]string{"server": "nope", "tool": "x"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected an error result for an unknown server")
	}
}

func TestMcpCallExecutorRequiresServerAndTool(t *testing.T) {
	ex := NewMcpCallExecutor(map[string]*mcp.Proxy{})
	args, _ := json.Marshal(map[string]string{"server": "", "tool": ""})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected an error result when server/tool are empty")
	}
}

func TestMcpCallExecutorUnknownToolFromStub(t *testing.T) {
	servers := map[string]*mcp.Proxy{
		"test": mcp.NewProxy(mcp.NewStubClient()),
	}
	ex := NewMcpCallExecutor(servers)
	args, _ := json.Marshal(map[string]string{"server": "test", "tool": "does_not_exist"})
	handle, err := ex.Process(context.Background(), makeRequest("call-1", args))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := handle.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.IsError {
		t.Fatal("expected an error result for a tool the upstream doesn't implement")
	}
}
