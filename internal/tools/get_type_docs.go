package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/treesitter"
)

type getTypeDocsArgs struct {
	TypeName string `json:"type_name"`
}

// GetTypeDocsExecutor implements "get_type_docs": returns the full
// signature and location of every indexed symbol exactly matching
// TypeName, plus its children (struct fields, interface methods),
// grounded on the same treesitter.Index as SearchTypesExecutor.
type GetTypeDocsExecutor struct {
	Index *treesitter.Index
}

func NewGetTypeDocsExecutor(idx *treesitter.Index) *GetTypeDocsExecutor {
	return &GetTypeDocsExecutor{Index: idx}
}

func (e *GetTypeDocsExecutor) Name() string { return "get_type_docs" }

func (e *GetTypeDocsExecutor) Description() string {
	return "Look up the full signature and members of a named type, function, or method in the project's symbol index."
}

func (e *GetTypeDocsExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"type_name": {"type": "string", "description": "Exact symbol name to look up"}
		},
		"required": ["type_name"]
	}`)
}

func (e *GetTypeDocsExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *GetTypeDocsExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args getTypeDocsArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &getTypeDocsHandle{callID: req.ToolCallID, typeName: args.TypeName, index: e.Index}, nil
}

type getTypeDocsHandle struct {
	callID   string
	typeName string
	index    *treesitter.Index
}

func (h *getTypeDocsHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VGetTypeDocs, CallID: h.callID, TypeName: h.typeName}
}

func (h *getTypeDocsHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "get_type_docs", ToolType: "get_type_docs"}
}

func (h *getTypeDocsHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	if h.typeName == "" {
		return errResult("type_name cannot be empty"), nil
	}
	snap := h.index.Snapshot()

	var b strings.Builder
	found := 0
	for path, syms := range snap {
		for _, s := range flattenSymbols(syms) {
			if s.Name != h.typeName {
				continue
			}
			found++
			fmt.Fprintf(&b, "%s:%d-%d: %s %s\n", path, s.StartLine, s.EndLine, s.Kind.String(), s.Signature)
			for _, c := range s.Children {
				fmt.Fprintf(&b, "  %s: %s\n", c.Kind.String(), c.Signature)
			}
		}
	}
	if found == 0 {
		return convo.ToolOutput{Kind: convo.OutResult, Content: fmt.Sprintf("no symbol named %q found", h.typeName), IsError: true, Continuation: convo.ContinueLoop}, nil
	}
	return convo.ToolOutput{Kind: convo.OutResult, Content: b.String(), Continuation: convo.ContinueLoop}, nil
}
