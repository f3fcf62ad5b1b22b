package tools

import (
	"context"
	"encoding/json"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/stack"
)

type completeTaskArgs struct {
	Result string `json:"result"`
}

// CompleteTaskExecutor implements "complete_task". At stack depth > 1
// it pops the current agent and hands Result to its parent
// (spawn_agent's counterpart); at depth 1 (root) there is nothing to
// pop, so it just ends the turn with Result as the displayed reply.
type CompleteTaskExecutor struct {
	Stack *stack.Stack
}

func NewCompleteTaskExecutor(st *stack.Stack) *CompleteTaskExecutor {
	return &CompleteTaskExecutor{Stack: st}
}

func (e *CompleteTaskExecutor) Name() string { return "complete_task" }

func (e *CompleteTaskExecutor) Description() string {
	return "Signal that the current task is finished. If you were spawned by another agent this returns your result to it; for the root agent it ends the turn."
}

func (e *CompleteTaskExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"result": {"type": "string", "description": "Summary of what was accomplished, or the answer to the assigned task."}
		},
		"required": ["result"]
	}`)
}

func (e *CompleteTaskExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *CompleteTaskExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args completeTaskArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &completeTaskHandle{callID: req.ToolCallID, result: args.Result, isChild: e.Stack.Depth() > 1}, nil
}

type completeTaskHandle struct {
	callID  string
	result  string
	isChild bool
}

func (h *completeTaskHandle) Validated() convo.ValidatedToolCall {
	if h.isChild {
		return convo.ValidatedToolCall{Kind: convo.VPopAgent, CallID: h.callID, PopSuccess: true, PopResult: h.result}
	}
	return convo.ValidatedToolCall{Kind: convo.VNoOp, CallID: h.callID}
}

func (h *completeTaskHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "complete_task", ToolType: "complete_task"}
}

func (h *completeTaskHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	if h.isChild {
		return convo.ToolOutput{Kind: convo.OutPopAgent, PopSuccess: true, PopResult: h.result}, nil
	}
	return convo.ToolOutput{Kind: convo.OutResult, Content: h.result, Continuation: convo.ContinueStop}, nil
}
