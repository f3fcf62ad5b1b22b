package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/filesearch"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/store"
)

type grepArgs struct {
	Pattern       string `json:"pattern"`
	FilenamesOnly bool   `json:"filenames_only,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
}

const grepDefaultMaxResults = 200

// GrepExecutor implements "grep": gitignore-aware filename/content
// search over the workspace, grounded on the teacher's subagent.go
// reference to a "Grep" tool and the internal/filesearch package it
// and WebFetch/WebSearch's siblings share. Cache is the teacher's
// WebFetch/WebSearch result cache (internal/store), repurposed here as
// the grep result cache since this codebase has no web tools for it to
// serve: Cache.GetSearch/SetSearch key on the search's full option set,
// not just the query text, since a grep's meaning depends on
// ContentSearch/RootDir/MaxResults too. Optional: nil disables caching.
type GrepExecutor struct {
	Searcher *filesearch.Searcher
	Root     string
	Cache    *store.Cache
}

func NewGrepExecutor(searcher *filesearch.Searcher, root string) *GrepExecutor {
	return &GrepExecutor{Searcher: searcher, Root: root}
}

// NewGrepExecutorWithCache is NewGrepExecutor plus a result cache.
func NewGrepExecutorWithCache(searcher *filesearch.Searcher, root string, cache *store.Cache) *GrepExecutor {
	return &GrepExecutor{Searcher: searcher, Root: root, Cache: cache}
}

func (e *GrepExecutor) Name() string { return "grep" }

func (e *GrepExecutor) Description() string {
	return "Search the workspace for a pattern, either by filename or file content (gitignore-aware)."
}

func (e *GrepExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"pattern":         {"type": "string", "description": "Regular expression to search for"},
			"filenames_only":  {"type": "boolean", "description": "If true, match file paths instead of file contents"},
			"max_results":     {"type": "integer", "description": "Maximum number of results (default 200)"}
		},
		"required": ["pattern"]
	}`)
}

func (e *GrepExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *GrepExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args grepArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &grepHandle{callID: req.ToolCallID, args: args, searcher: e.Searcher, root: e.Root, cache: e.Cache}, nil
}

type grepHandle struct {
	callID   string
	args     grepArgs
	searcher *filesearch.Searcher
	root     string
	cache    *store.Cache
}

// cacheKey identifies a grep call's full option set, not just its
// pattern text, since filenames_only/max_results/root all change the
// result set a cache hit would otherwise silently reuse.
func (h *grepHandle) cacheKey() string {
	return fmt.Sprintf("grep:%s:%t:%d:%s", h.args.Pattern, h.args.FilenamesOnly, h.args.MaxResults, h.root)
}

func (h *grepHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VNoOp, CallID: h.callID}
}

func (h *grepHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "grep", ToolType: "grep"}
}

func (h *grepHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	if h.args.Pattern == "" {
		return errResult("pattern cannot be empty"), nil
	}
	max := h.args.MaxResults
	if max <= 0 {
		max = grepDefaultMaxResults
	}

	key := h.cacheKey()
	if cached, hit := h.cache.GetSearch(key); hit {
		return convo.ToolOutput{Kind: convo.OutResult, Content: cached, Continuation: convo.ContinueLoop}, nil
	}

	results, err := h.searcher.Search(ctx, filesearch.Options{
		Pattern:       h.args.Pattern,
		ContentSearch: !h.args.FilenamesOnly,
		MaxResults:    max,
		RootDir:       h.root,
	})
	if err != nil {
		return errResult(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		h.cache.SetSearch(key, "(no matches)")
		return convo.ToolOutput{Kind: convo.OutResult, Content: "(no matches)", Continuation: convo.ContinueLoop}, nil
	}

	var b strings.Builder
	for _, r := range results {
		if r.Line > 0 {
			fmt.Fprintf(&b, "%s:%d: %s\n", r.Path, r.Line, r.Content)
		} else {
			fmt.Fprintf(&b, "%s\n", r.Path)
		}
	}
	content := b.String()
	h.cache.SetSearch(key, content)
	return convo.ToolOutput{Kind: convo.OutResult, Content: content, Continuation: convo.ContinueLoop}, nil
}
