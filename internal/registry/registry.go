// Package registry implements the two-phase tool contract (spec.md
// §4.1) and the tool registry that dispatches a tool call to its
// executor (spec.md §4.2).
//
// Grounded on the teacher's internal/mcp.Proxy (ordered tool map,
// dispatch-by-name), generalized from the teacher's single-phase
// ToolHandler into process()->Handle, handle.execute()->ToolOutput so
// a future approval flow can insert between the two, and so UI can
// render "about to do X" before any side effect runs.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
)

// Request is what the turn engine hands to Registry.Dispatch for one
// extracted tool call.
type Request struct {
	ToolCallID string
	Arguments  json.RawMessage
}

// Handle captures everything needed to execute a validated tool call.
// It is produced by Executor.Process and never performs a side effect
// itself.
type Handle interface {
	// Validated is the already-validated form; the security gate and
	// turn engine act on this without re-parsing JSON.
	Validated() convo.ValidatedToolCall
	// ToolRequest produces the user-facing description of what is
	// about to happen, for UI display before Execute runs.
	ToolRequest() event.ToolRequestEvent
	// Execute performs the side effect. Must observe ctx cancellation
	// at every suspension point.
	Execute(ctx context.Context) (convo.ToolOutput, error)
}

// Executor is one tool's implementation.
type Executor interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Category() convo.Category
	// Process validates arguments against the declared schema
	// semantics, may perform read-only lookups, and returns a Handle.
	Process(ctx context.Context, req Request) (Handle, error)
}

type compiledExecutor struct {
	Executor
	schema    *jsonschema.Schema
	schemaDoc any
}

// Registry maps tool name to executor. The map itself is unordered;
// Definitions and the unknown-tool message sort names alphabetically.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*compiledExecutor
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{tools: map[string]*compiledExecutor{}}
}

// Register adds an executor, compiling its declared input schema once
// so every Dispatch call reuses the compiled form rather than
// re-parsing JSON Schema per call.
func (r *Registry) Register(ex Executor) error {
	compiler := jsonschema.NewCompiler()
	schemaBytes := ex.InputSchema()
	if len(schemaBytes) == 0 {
		schemaBytes = json.RawMessage(`{"type":"object"}`)
	}
	url := "mem://" + ex.Name() + ".json"
	doc := jsonSchemaResource(schemaBytes)
	if err := compiler.AddResource(url, doc); err != nil {
		return fmt.Errorf("registry: compile schema for %s: %w", ex.Name(), err)
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("registry: compile schema for %s: %w", ex.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[ex.Name()] = &compiledExecutor{Executor: ex, schema: sch, schemaDoc: doc}
	return nil
}

// Definitions returns the tool schemas for the intersection of
// registered tools and allowlist, plus any tool whose name begins with
// the reserved plugin prefix, in deterministic alphabetical order.
func (r *Registry) Definitions(allowlist map[string]bool) []ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []ToolDef
	for _, name := range names {
		if !allowed(name, allowlist) {
			continue
		}
		ex := r.tools[name]
		out = append(out, ToolDef{
			Name:        ex.Name(),
			Description: ex.Description(),
			InputSchema: ex.InputSchema(),
		})
	}
	return out
}

// ToolDef is a tool's JSON-schema definition, as handed to the
// provider for one request.
type ToolDef struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

func allowed(name string, allowlist map[string]bool) bool {
	const pluginPrefix = "mcp__"
	if len(name) >= len(pluginPrefix) && name[:len(pluginPrefix)] == pluginPrefix {
		return true
	}
	return allowlist[name]
}

// Dispatch looks up name, rejects if not in allowlist (with the
// plugin-prefix exception), coerces arguments against the compiled
// schema, and calls Process. An unknown tool name produces a synthetic
// error Handle rather than a Go error, so the model can recover (spec.md
// §4.2 edge case).
func (r *Registry) Dispatch(ctx context.Context, name string, allowlist map[string]bool, req Request) (Handle, error) {
	r.mu.RLock()
	ex, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return unknownToolHandle(name, r.availableNames(), req.ToolCallID), nil
	}
	if !allowed(name, allowlist) {
		return unknownToolHandle(name, r.availableNames(), req.ToolCallID), nil
	}

	coerced, err := Coerce(ex.schemaDoc, ex.schema, req.Arguments)
	if err != nil {
		// Argument-coercion failure: synthetic soft error, turn loops
		// (spec.md §7).
		return softErrorHandle(req.ToolCallID, fmt.Sprintf("invalid arguments for %s: %v", name, err)), nil
	}
	req.Arguments = coerced

	return ex.Process(ctx, req)
}

func (r *Registry) availableNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func jsonSchemaResource(b []byte) any {
	var v any
	_ = json.Unmarshal(b, &v)
	return v
}
