package agent

// Catalog is the immutable registry of agent definitions built at
// startup. Nothing mutates it after Build returns.
type Catalog struct {
	byName map[string]*Definition
	order  []string // insertion order, for deterministic listing
}

// Get looks up a definition by name. Per spec.md §4.4, an unknown name
// is treated as the most restrictive role (leaf) by callers — Get
// itself just reports ok=false and lets the caller apply that default.
func (c *Catalog) Get(name string) (*Definition, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Names returns every catalog agent name in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// SpawnTargetsFor returns the names of every agent the named agent is
// permitted to spawn: every catalog agent whose Level is strictly
// greater than from's Level. Unknown from names get the leaf level's
// empty spawn set (leaves spawn nothing).
func (c *Catalog) SpawnTargetsFor(from string) []string {
	d, ok := c.byName[from]
	level := LevelLeaf
	if ok {
		level = d.Level
	}
	var out []string
	for _, name := range c.order {
		if c.byName[name].Level > level {
			out = append(out, name)
		}
	}
	return out
}

const (
	AgentRoot             = "root"
	AgentCoordinator      = "coordinator"
	AgentCoder            = "coder"
	AgentPlanner          = "planner"
	AgentDebugger         = "debugger"
	AgentCodeReview       = "code_review"
	AgentRecon            = "recon"
	AgentFileWriter       = "file_writer"
	AgentMemoryManager    = "memory_manager"
	AgentMemorySummarizer = "memory_summarizer"
	AgentAutoPR           = "auto_pr"
)

var readOnlyTools = map[string]bool{
	"read_file": true, "grep": true, "search_types": true, "get_type_docs": true,
	"complete_task": true, "set_tracked_files": true,
}

func withTools(base map[string]bool, extra ...string) map[string]bool {
	m := make(map[string]bool, len(base)+len(extra))
	for k := range base {
		m[k] = true
	}
	for _, e := range extra {
		m[e] = true
	}
	return m
}

// BuildCatalog constructs the full agent catalog described in
// SPEC_FULL.md §4.4, supplementing the distilled spec's single generic
// sub-agent with the named roles original_source/'s catalog.rs defines.
// Spawn allowlists are computed here, once, from level — so the
// spawn-permission monotonicity property (spec.md §8 property 5) holds
// by construction rather than by runtime check.
func BuildCatalog() *Catalog {
	c := &Catalog{byName: map[string]*Definition{}}

	add := func(d *Definition) {
		c.byName[d.Name] = d
		c.order = append(c.order, d.Name)
	}

	add(&Definition{
		Name: AgentRoot, Level: LevelRoot,
		Description:     "Drives the conversation directly with the user; full tool access.",
		CorePrompt:      "You are the primary assistant. Help the user accomplish their task, delegating to sub-agents when a task is large enough to benefit from isolation.",
		ToolAllowlist:   withTools(readOnlyTools, "file_modification", "run_command", "mcp_call", "spawn_agent", "ask_user_question", "task_list_op"),
		PromptSelection: All(), ContextSelection: All(),
	})
	add(&Definition{
		Name: AgentCoordinator, Level: LevelCoordinator,
		Description:     "Plans and delegates work to sub-agents without editing files itself.",
		CorePrompt:      "You are a coordinator. Break the task into steps and delegate each to the right sub-agent via spawn_agent. Do not edit files or run commands yourself.",
		ToolAllowlist:   withTools(readOnlyTools, "spawn_agent", "ask_user_question"),
		PromptSelection: All(), ContextSelection: All(),
	})
	add(&Definition{
		Name: AgentCoder, Level: LevelCoder,
		Description:     "Edits code to implement an agreed change.",
		CorePrompt:      "You are a coder. Implement the requested change, running tests as needed, and call complete_task when done.",
		ToolAllowlist:   withTools(readOnlyTools, "file_modification", "run_command", "spawn_agent"),
		PromptSelection: All(), ContextSelection: All(), RequiresToolUse: true,
	})
	add(&Definition{
		Name: AgentPlanner, Level: LevelCoder,
		Description:     "Produces a plan as its completion result without touching files.",
		CorePrompt:      "You are a planner. Produce a concrete step-by-step plan and return it via complete_task. Do not modify files or run commands.",
		ToolAllowlist:   readOnlyTools,
		PromptSelection: All(), ContextSelection: All(),
	})
	add(&Definition{
		Name: AgentDebugger, Level: LevelCoder,
		Description:     "Reproduces and narrows down a failure.",
		CorePrompt:      "You are a debugger. Reproduce the reported failure, narrow down its cause, and report findings via complete_task.",
		ToolAllowlist:   withTools(readOnlyTools, "run_command"),
		PromptSelection: All(), ContextSelection: All(),
	})
	add(&Definition{
		Name: AgentCodeReview, Level: LevelCoder,
		Description:     "Reviews a diff and reports findings without editing.",
		CorePrompt:      "You are a code reviewer. Review the current diff for correctness, clarity, and risk; report findings via complete_task. Do not modify files.",
		ToolAllowlist:   readOnlyTools,
		PromptSelection: All(), ContextSelection: All(),
	})
	add(&Definition{
		Name: AgentRecon, Level: LevelLeaf,
		Description:     "Greps, reads, and searches types only; cannot spawn.",
		CorePrompt:      "You are a recon agent. Investigate the codebase using read-only tools and report back via complete_task.",
		ToolAllowlist:   readOnlyTools,
		PromptSelection: All(), ContextSelection: All(),
	})
	add(&Definition{
		Name: AgentFileWriter, Level: LevelLeaf,
		Description:     "Applies one previously-agreed file modification and completes.",
		CorePrompt:      "You are a file writer. Apply exactly the agreed modification using file_modification, then call complete_task.",
		ToolAllowlist:   withTools(readOnlyTools, "file_modification"),
		PromptSelection: All(), ContextSelection: All(), RequiresToolUse: true,
	})
	add(&Definition{
		Name: AgentMemoryManager, Level: LevelCoordinator,
		Description:     "Curates the memory log, delegating summarization of large batches.",
		CorePrompt:      "You are the memory manager. Curate the memory log: prune stale entries, and delegate summarization of large batches to memory_summarizer.",
		ToolAllowlist:   withTools(readOnlyTools, "task_list_op", "spawn_agent"),
		PromptSelection: All(), ContextSelection: All(),
	})
	add(&Definition{
		Name: AgentMemorySummarizer, Level: LevelLeaf,
		Description:     "Summarizes a batch of memory entries into one.",
		CorePrompt:      "You are the memory summarizer. Summarize the given batch of memory entries into a single, shorter entry, then call complete_task.",
		ToolAllowlist:   readOnlyTools,
		PromptSelection: All(), ContextSelection: All(),
	})
	add(&Definition{
		Name: AgentAutoPR, Level: LevelCoordinator,
		Description:     "Drafts a PR description from the session's diff.",
		CorePrompt:      "You are the PR drafter. Summarize the session's changes into a PR title and description, then call complete_task.",
		ToolAllowlist:   readOnlyTools,
		PromptSelection: All(), ContextSelection: All(),
	})

	for _, name := range c.order {
		d := c.byName[name]
		targets := c.SpawnTargetsFor(name)
		allow := make(map[string]bool, len(targets))
		for _, t := range targets {
			allow[t] = true
		}
		d.SpawnAllowlist = allow
	}

	return c
}
