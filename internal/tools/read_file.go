package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/treesitter"
)

type readFileArgs struct {
	File  string `json:"file"`
	Start int    `json:"start,omitempty"`
	End   int    `json:"end,omitempty"`
}

// ReadFileExecutor implements "read_file", grounded on the teacher's
// Read tool. It returns plain line-numbered content rather than the
// teacher's hash-anchored form, since edits here are matched by exact
// text (see FileModificationExecutor) instead of by hashline anchor.
type ReadFileExecutor struct {
	TSIndex *treesitter.Index // optional; nil disables incremental re-parse on read
}

func NewReadFileExecutor(tsIndex *treesitter.Index) *ReadFileExecutor {
	return &ReadFileExecutor{TSIndex: tsIndex}
}

func (e *ReadFileExecutor) Name() string { return "read_file" }

func (e *ReadFileExecutor) Description() string {
	return "Read a file (optionally a line range) and return its content with 1-indexed line numbers."
}

func (e *ReadFileExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file":  {"type": "string", "description": "Path to the file to read"},
			"start": {"type": "integer", "description": "Optional starting line number (1-indexed, inclusive)"},
			"end":   {"type": "integer", "description": "Optional ending line number (1-indexed, inclusive)"}
		},
		"required": ["file"]
	}`)
}

func (e *ReadFileExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *ReadFileExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args readFileArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &readFileHandle{callID: req.ToolCallID, args: args, tsIndex: e.TSIndex}, nil
}

type readFileHandle struct {
	callID  string
	args    readFileArgs
	tsIndex *treesitter.Index
}

func (h *readFileHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VNoOp, CallID: h.callID}
}

func (h *readFileHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "read_file", ToolType: "read_file"}
}

func (h *readFileHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	if h.args.File == "" {
		return errResult("file path cannot be empty"), nil
	}
	absPath, err := validatePath(h.args.File)
	if err != nil {
		return errResult(err.Error()), nil
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return errResult(fmt.Sprintf("failed to read file: %v", err)), nil
	}
	if h.tsIndex != nil {
		go h.tsIndex.UpdateFile(absPath)
	}

	lines := strings.Split(string(content), "\n")
	start, end := h.args.Start, h.args.End
	if start <= 0 && end <= 0 {
		start, end = 1, len(lines)
	} else {
		if start <= 0 {
			start = 1
		}
		if start > len(lines) {
			return errResult(fmt.Sprintf("start line %d out of range (file has %d lines)", start, len(lines))), nil
		}
		if end <= 0 || end > len(lines) {
			end = len(lines)
		}
		if start > end {
			return errResult(fmt.Sprintf("invalid range: start (%d) > end (%d)", start, end)), nil
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (lines %d-%d of %d):\n\n", h.args.File, start, end, len(lines))
	for i := start; i <= end; i++ {
		fmt.Fprintf(&b, "%d: %s\n", i, lines[i-1])
	}

	return convo.ToolOutput{Kind: convo.OutResult, Content: b.String(), Continuation: convo.ContinueLoop}, nil
}

func errResult(msg string) convo.ToolOutput {
	return convo.ToolOutput{Kind: convo.OutResult, Content: msg, IsError: true, Continuation: convo.ContinueLoop}
}
