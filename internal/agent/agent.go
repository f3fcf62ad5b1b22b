// Package agent defines agent definitions and the immutable catalog of
// them, plus the hierarchical spawn-permission rule the spawn module
// enforces.
//
// Grounded on the teacher's internal/subagent package (which hardcodes
// one anonymous depth-1 sub-agent) and original_source/'s
// tycode-core/src/agents/catalog.rs, which names a full catalog of
// agents with distinct roles and levels — supplemented here per
// SPEC_FULL.md §4.4.
package agent

// Level is an agent's position in the spawn hierarchy. Lower is more
// privileged. root=0, coordinator=1, coder=2, leaves=3.
type Level int

const (
	LevelRoot        Level = 0
	LevelCoordinator Level = 1
	LevelCoder       Level = 2
	LevelLeaf        Level = 3
)

// SelectionKind discriminates the prompt/context component selection
// filter an agent declares.
type SelectionKind string

const (
	SelectAll     SelectionKind = "all"
	SelectOnly    SelectionKind = "only"
	SelectExclude SelectionKind = "exclude"
	SelectNone    SelectionKind = "none"
)

// Selection filters which prompt/context components apply to an agent.
type Selection struct {
	Kind SelectionKind
	IDs  map[string]bool // meaningful for SelectOnly / SelectExclude
}

// Includes reports whether component id is selected.
func (s Selection) Includes(id string) bool {
	switch s.Kind {
	case SelectAll:
		return true
	case SelectNone:
		return false
	case SelectOnly:
		return s.IDs[id]
	case SelectExclude:
		return !s.IDs[id]
	default:
		return true
	}
}

// All is the selection that includes every component.
func All() Selection { return Selection{Kind: SelectAll} }

// None is the selection that includes no components.
func None() Selection { return Selection{Kind: SelectNone} }

// Only selects exactly the named component IDs.
func Only(ids ...string) Selection {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return Selection{Kind: SelectOnly, IDs: m}
}

// Exclude selects every component except the named IDs.
func Exclude(ids ...string) Selection {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return Selection{Kind: SelectExclude, IDs: m}
}

// Definition is a named role: prompt, tool allowlist, and selection
// filters. Definitions are shared and immutable once the catalog is
// built; ActiveAgent instances on the stack reference them by pointer.
type Definition struct {
	Name               string
	Description        string
	CorePrompt         string
	Level              Level
	ToolAllowlist      map[string]bool
	PromptSelection    Selection
	ContextSelection   Selection
	RequiresToolUse    bool
	// SpawnAllowlist is the set of catalog agent names this agent may
	// spawn via the spawn_agent tool. Computed at catalog-build time
	// from Level (see Catalog.SpawnTargetsFor) and stored here so the
	// turn engine need not recompute it per turn.
	SpawnAllowlist map[string]bool
}

// AllowsTool reports whether name is in this agent's tool allowlist, or
// begins with the reserved plugin-tool prefix (always allowed for
// every agent per spec.md §4.2).
func (d *Definition) AllowsTool(name string) bool {
	const pluginPrefix = "mcp__"
	if len(name) >= len(pluginPrefix) && name[:len(pluginPrefix)] == pluginPrefix {
		return true
	}
	return d.ToolAllowlist[name]
}
