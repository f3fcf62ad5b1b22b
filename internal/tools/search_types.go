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

type searchTypesArgs struct {
	Query string `json:"query"`
}

// SearchTypesExecutor implements "search_types": scans the tree-sitter
// symbol index for names containing Query, grounded on the teacher's
// internal/treesitter package built for the project outline context
// component (contextbuild's equivalent of treesitter.FormatOutline).
type SearchTypesExecutor struct {
	Index *treesitter.Index
}

func NewSearchTypesExecutor(idx *treesitter.Index) *SearchTypesExecutor {
	return &SearchTypesExecutor{Index: idx}
}

func (e *SearchTypesExecutor) Name() string { return "search_types" }

func (e *SearchTypesExecutor) Description() string {
	return "Search the project's indexed symbols (functions, types, methods) for names containing a query substring."
}

func (e *SearchTypesExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Substring to search for in symbol names"}
		},
		"required": ["query"]
	}`)
}

func (e *SearchTypesExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *SearchTypesExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args searchTypesArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &searchTypesHandle{callID: req.ToolCallID, query: args.Query, index: e.Index}, nil
}

type searchTypesHandle struct {
	callID string
	query  string
	index  *treesitter.Index
}

func (h *searchTypesHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VSearchTypes, CallID: h.callID, SearchQuery: h.query}
}

func (h *searchTypesHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "search_types", ToolType: "search_types"}
}

func (h *searchTypesHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	if h.query == "" {
		return errResult("query cannot be empty"), nil
	}
	snap := h.index.Snapshot()
	q := strings.ToLower(h.query)

	var b strings.Builder
	matches := 0
	for path, syms := range snap {
		for _, s := range flattenSymbols(syms) {
			if !strings.Contains(strings.ToLower(s.Name), q) {
				continue
			}
			fmt.Fprintf(&b, "%s:%d: %s %s\n", path, s.StartLine, s.Kind.String(), s.Signature)
			matches++
		}
	}
	if matches == 0 {
		return convo.ToolOutput{Kind: convo.OutResult, Content: "(no matching symbols)", Continuation: convo.ContinueLoop}, nil
	}
	return convo.ToolOutput{Kind: convo.OutResult, Content: b.String(), Continuation: convo.ContinueLoop}, nil
}

func flattenSymbols(syms []treesitter.Symbol) []treesitter.Symbol {
	out := make([]treesitter.Symbol, 0, len(syms))
	for _, s := range syms {
		out = append(out, s)
		out = append(out, flattenSymbols(s.Children)...)
	}
	return out
}
