package tools

import (
	"context"
	"encoding/json"

	"github.com/xonecas/symbcore/internal/contextbuild"
	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
)

type setTrackedFilesArgs struct {
	Paths []string `json:"paths"`
}

// SetTrackedFilesExecutor implements "set_tracked_files": it replaces
// the set of workspace-relative paths the contextbuild.TrackedFiles
// component renders into every subsequent request (spec.md §3).
type SetTrackedFilesExecutor struct {
	Tracked *contextbuild.TrackedFiles
}

func NewSetTrackedFilesExecutor(tracked *contextbuild.TrackedFiles) *SetTrackedFilesExecutor {
	return &SetTrackedFilesExecutor{Tracked: tracked}
}

func (e *SetTrackedFilesExecutor) Name() string { return "set_tracked_files" }

func (e *SetTrackedFilesExecutor) Description() string {
	return "Replace the set of files whose full contents are kept visible in your context on every turn. Pass an empty list to stop tracking everything."
}

func (e *SetTrackedFilesExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"paths": {"type": "array", "items": {"type": "string"}, "description": "Workspace-relative file paths to track."}
		},
		"required": ["paths"]
	}`)
}

func (e *SetTrackedFilesExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *SetTrackedFilesExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args setTrackedFilesArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &setTrackedFilesHandle{callID: req.ToolCallID, paths: args.Paths, tracked: e.Tracked}, nil
}

type setTrackedFilesHandle struct {
	callID  string
	paths   []string
	tracked *contextbuild.TrackedFiles
}

func (h *setTrackedFilesHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VSetTrackedFiles, CallID: h.callID, TrackedPaths: h.paths}
}

func (h *setTrackedFilesHandle) ToolRequest() event.ToolRequestEvent {
	args, _ := json.Marshal(h.paths)
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "set_tracked_files", ToolType: "set_tracked_files", Args: args}
}

func (h *setTrackedFilesHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	h.tracked.Set(h.paths)
	return convo.ToolOutput{Kind: convo.OutResult, Content: "tracked files updated", Continuation: convo.ContinueLoop}, nil
}
