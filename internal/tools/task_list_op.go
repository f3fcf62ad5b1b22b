package tools

import (
	"context"
	"encoding/json"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
)

type taskListOpArgs struct {
	Content string `json:"content"`
}

// TaskListOpExecutor implements "task_list_op", adapted from the
// teacher's TodoWrite tool: it replaces the agent's scratchpad
// entirely (no partial edits) with Content.
type TaskListOpExecutor struct {
	Pad *Scratchpad
}

func NewTaskListOpExecutor(pad *Scratchpad) *TaskListOpExecutor {
	return &TaskListOpExecutor{Pad: pad}
}

func (e *TaskListOpExecutor) Name() string { return "task_list_op" }

func (e *TaskListOpExecutor) Description() string {
	return "Write or update your working plan/scratchpad. The content replaces any previous plan entirely and is kept visible at the end of your context. Use for tasks with 3+ steps; skip for simple ones."
}

func (e *TaskListOpExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"content": {"type": "string", "description": "Your current plan, todo list, or working notes. Replaces the previous content entirely."}
		},
		"required": ["content"]
	}`)
}

func (e *TaskListOpExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *TaskListOpExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args taskListOpArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &taskListOpHandle{callID: req.ToolCallID, content: args.Content, pad: e.Pad}, nil
}

type taskListOpHandle struct {
	callID  string
	content string
	pad     *Scratchpad
}

func (h *taskListOpHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VTaskListOp, CallID: h.callID, TaskOp: h.content}
}

func (h *taskListOpHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "task_list_op", ToolType: "task_list_op"}
}

func (h *taskListOpHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	if h.content == "" {
		return convo.ToolOutput{Kind: convo.OutResult, Content: "content cannot be empty", IsError: true, Continuation: convo.ContinueLoop}, nil
	}
	h.pad.set(h.content)
	return convo.ToolOutput{Kind: convo.OutResult, Content: "plan updated", Continuation: convo.ContinueLoop}, nil
}
