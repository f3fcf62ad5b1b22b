package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/mcp"
	"github.com/xonecas/symbcore/internal/registry"
)

type mcpCallArgs struct {
	Server string          `json:"server"`
	Tool   string          `json:"tool"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// McpCallExecutor implements "mcp_call": forwards a tool invocation to
// one of several configured MCP proxies, grounded on the teacher's
// internal/mcp package (Proxy.CallTool, upstream retry-with-backoff).
// Servers is keyed by the name the agent addresses in the "server"
// argument; each value is an independently configured *mcp.Proxy
// (local tools, upstream connection, or both).
type McpCallExecutor struct {
	Servers map[string]*mcp.Proxy
}

func NewMcpCallExecutor(servers map[string]*mcp.Proxy) *McpCallExecutor {
	return &McpCallExecutor{Servers: servers}
}

func (e *McpCallExecutor) Name() string { return "mcp_call" }

func (e *McpCallExecutor) Description() string {
	return "Call a tool exposed by a configured MCP server."
}

func (e *McpCallExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"server": {"type": "string", "description": "Name of the configured MCP server"},
			"tool":   {"type": "string", "description": "Name of the tool to invoke"},
			"args":   {"type": "object", "description": "Arguments to pass to the tool"}
		},
		"required": ["server", "tool"]
	}`)
}

func (e *McpCallExecutor) Category() convo.Category { return convo.CategoryExecution }

func (e *McpCallExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args mcpCallArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &mcpCallHandle{callID: req.ToolCallID, args: args, servers: e.Servers}, nil
}

type mcpCallHandle struct {
	callID  string
	args    mcpCallArgs
	servers map[string]*mcp.Proxy
}

func (h *mcpCallHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{
		Kind: convo.VMcpCall, CallID: h.callID,
		McpServer: h.args.Server, McpTool: h.args.Tool, McpArgs: h.args.Args,
	}
}

func (h *mcpCallHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "mcp_call", ToolType: "mcp_call", Args: h.args.Args}
}

func (h *mcpCallHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	if h.args.Server == "" || h.args.Tool == "" {
		return errResult("server and tool are required"), nil
	}
	proxy, ok := h.servers[h.args.Server]
	if !ok {
		return errResult(fmt.Sprintf("unknown MCP server %q", h.args.Server)), nil
	}

	result, err := proxy.CallTool(ctx, h.args.Tool, h.args.Args)
	if err != nil {
		return errResult(fmt.Sprintf("mcp call failed: %v", err)), nil
	}

	var b strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
			if !strings.HasSuffix(block.Text, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	content := b.String()
	if content == "" {
		content = "(no output)"
	}

	return convo.ToolOutput{Kind: convo.OutResult, Content: content, IsError: result.IsError, Continuation: convo.ContinueLoop}, nil
}
