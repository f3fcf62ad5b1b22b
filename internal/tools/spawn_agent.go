package tools

import (
	"context"
	"encoding/json"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
)

type spawnAgentArgs struct {
	Agent string `json:"agent"`
	Task  string `json:"task"`
}

// SpawnAgentExecutor implements "spawn_agent": pushes a new agent onto
// the stack seeded with Task. Whether Agent is actually reachable from
// the caller's level is enforced by the turn engine's runBatch against
// the caller's Definition.SpawnAllowlist, not here — Process only
// validates the argument shape (spec.md §4.4).
type SpawnAgentExecutor struct{}

func NewSpawnAgentExecutor() *SpawnAgentExecutor { return &SpawnAgentExecutor{} }

func (e *SpawnAgentExecutor) Name() string { return "spawn_agent" }

func (e *SpawnAgentExecutor) Description() string {
	return "Spawn a sub-agent to handle a focused piece of work. Which agent names you may spawn depends on your own role; an unauthorized target is rejected. The sub-agent's complete_task result is returned to you as a tool result."
}

func (e *SpawnAgentExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"agent": {"type": "string", "description": "Catalog name of the agent to spawn (e.g. \"coder\", \"planner\", \"recon\")."},
			"task":  {"type": "string", "description": "The task to hand to the spawned agent, as a self-contained instruction."}
		},
		"required": ["agent", "task"]
	}`)
}

func (e *SpawnAgentExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *SpawnAgentExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args spawnAgentArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &spawnAgentHandle{callID: req.ToolCallID, agent: args.Agent, task: args.Task}, nil
}

type spawnAgentHandle struct {
	callID string
	agent  string
	task   string
}

func (h *spawnAgentHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VPushAgent, CallID: h.callID, SpawnAgent: h.agent, SpawnTask: h.task}
}

func (h *spawnAgentHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "spawn_agent", ToolType: "spawn_agent"}
}

func (h *spawnAgentHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	return convo.ToolOutput{Kind: convo.OutPushAgent, SpawnAgent: h.agent, SpawnTask: h.task}, nil
}
