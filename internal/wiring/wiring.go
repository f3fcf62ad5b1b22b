// Package wiring assembles one turnengine.Engine + actor.Actor from
// Settings: the tool registry, prompt/context builders, agent catalog,
// provider set, and ambient infrastructure (tree-sitter index, file
// search, SQLite caches, LSP manager). This is the composition root
// cmd/symbcore builds on; nothing here is exercised directly by the
// orchestration core itself.
package wiring

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/symbcore/internal/actor"
	"github.com/xonecas/symbcore/internal/agent"
	"github.com/xonecas/symbcore/internal/config"
	"github.com/xonecas/symbcore/internal/contextbuild"
	"github.com/xonecas/symbcore/internal/delta"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/filesearch"
	"github.com/xonecas/symbcore/internal/lsp"
	"github.com/xonecas/symbcore/internal/mcp"
	"github.com/xonecas/symbcore/internal/modulebundle"
	"github.com/xonecas/symbcore/internal/promptbuild"
	"github.com/xonecas/symbcore/internal/provider"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/sessionlog"
	"github.com/xonecas/symbcore/internal/shell"
	"github.com/xonecas/symbcore/internal/stack"
	"github.com/xonecas/symbcore/internal/store"
	"github.com/xonecas/symbcore/internal/tools"
	"github.com/xonecas/symbcore/internal/treesitter"
	"github.com/xonecas/symbcore/internal/turnengine"
)

func newProjectShell(root string) *shell.Shell {
	return shell.New(root, shell.DefaultBlockFuncs())
}

// projectOutlineComponent renders the tree-sitter symbol index as a
// compact project outline, grounded on treesitter.FormatOutline.
type projectOutlineComponent struct {
	index *treesitter.Index
}

func (p *projectOutlineComponent) ID() string { return "project_outline" }

func (p *projectOutlineComponent) Render() string {
	snap := p.index.Snapshot()
	if len(snap) == 0 {
		return ""
	}
	return treesitter.FormatOutline(snap)
}

// App bundles everything wiring constructs, so cmd/symbcore can shut it
// down cleanly and reach the ambient infra (cache, delta tracker) for
// commands that aren't plain chat (e.g. sessions list).
type App struct {
	Actor       *actor.Actor
	Bus         *event.Bus
	Cache       *store.Cache
	DeltaTrack  *delta.Tracker
	TSIndex     *treesitter.Index
	Scratchpad  *tools.Scratchpad
	TrackedFile *contextbuild.TrackedFiles
	Settings    *config.Settings
	Sessions    *sessionlog.Store
	DataDir     string
}

// Build constructs an App rooted at projectRoot, using the given
// Settings and Anthropic API key (credentials are resolved by the
// caller, per spec.md's config/credentials split).
func Build(projectRoot string, settings *config.Settings, anthropicAPIKey string) (*App, error) {
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return nil, fmt.Errorf("wiring: ensure data dir: %w", err)
	}

	cache, err := store.Open(filepath.Join(dataDir, "cache.db"), time.Duration(settings.Cache.CacheTTLOrDefault())*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("wiring: open cache: %w", err)
	}

	deltaDB, err := sql.Open("sqlite", filepath.Join(dataDir, "deltas.db"))
	if err != nil {
		return nil, fmt.Errorf("wiring: open delta db: %w", err)
	}
	if err := delta.EnsureSchema(deltaDB); err != nil {
		return nil, fmt.Errorf("wiring: delta schema: %w", err)
	}
	deltaTracker := delta.New(deltaDB)

	tsIndex := treesitter.NewIndex(projectRoot)
	if err := tsIndex.Build(); err != nil {
		log.Warn().Err(err).Msg("initial tree-sitter index build failed; continuing with an empty index")
	}

	searcher, err := filesearch.NewSearcher(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("wiring: new searcher: %w", err)
	}

	lspMgr := lsp.NewManager()

	reg := registry.New()
	scratchpad := &tools.Scratchpad{}
	trackedFiles := contextbuild.NewTrackedFiles(projectRoot)

	mcpServers := map[string]*mcp.Proxy{}
	for name, serverCfg := range settings.MCP.Servers {
		var upstream mcp.UpstreamClient
		if serverCfg.Upstream != "" {
			upstream = mcp.NewClient(serverCfg.Upstream)
		}
		proxy := mcp.NewProxy(upstream)
		if upstream != nil {
			if err := proxy.Initialize(context.Background()); err != nil {
				log.Warn().Err(err).Str("mcp_server", name).Msg("MCP upstream init failed")
			}
		}
		mcpServers[name] = proxy
	}

	catalog := agent.BuildCatalog()
	root, ok := catalog.Get(agent.AgentRoot)
	if !ok {
		return nil, fmt.Errorf("wiring: catalog missing root agent")
	}
	st := stack.New(root)

	var fileTree contextbuild.Component
	if ft, err := contextbuild.NewFileTree(projectRoot); err != nil {
		log.Warn().Err(err).Msg("file tree context component disabled")
	} else {
		fileTree = ft
	}

	// Deployable units per spec.md §2/§4.4: each Module bundles the
	// tools, prompt components, and context components one concern
	// contributes, installed together rather than registered item by
	// item. complete_task needs the real *stack.Stack (to tell whether
	// the active agent is a child — see tools.CompleteTaskExecutor.
	// Process), which only exists after the catalog lookup above, so
	// the coordination module is built last.
	filesystemModule := modulebundle.Module{
		Name: "filesystem",
		Tools: []registry.Executor{
			tools.NewReadFileExecutor(tsIndex),
			tools.NewGrepExecutorWithCache(searcher, projectRoot, cache),
			tools.NewSearchTypesExecutor(tsIndex),
			tools.NewGetTypeDocsExecutor(tsIndex),
			tools.NewSetTrackedFilesExecutor(trackedFiles),
			tools.NewFileModificationExecutor(deltaTracker, lspMgr, tsIndex),
		},
		ContextComponents: nonNilComponents(trackedFiles, fileTree, &projectOutlineComponent{index: tsIndex}),
	}

	executionModule := modulebundle.Module{
		Name: "execution",
		Tools: []registry.Executor{
			tools.NewRunCommandExecutor(newProjectShell(projectRoot), deltaTracker),
			tools.NewMcpCallExecutor(mcpServers),
		},
	}

	coordinationModule := modulebundle.Module{
		Name: "coordination",
		Tools: []registry.Executor{
			tools.NewCompleteTaskExecutor(st),
			tools.NewSpawnAgentExecutor(),
			tools.NewAskUserQuestionExecutor(),
			tools.NewTaskListOpExecutor(scratchpad),
		},
		ContextComponents: []contextbuild.Component{&contextbuild.TaskListComponent{Reader: scratchpad}},
	}

	promptBuilder := promptbuild.NewBuilder()
	contextBuilder := contextbuild.NewBuilder()
	for _, m := range []modulebundle.Module{filesystemModule, executionModule, coordinationModule} {
		if err := m.Install(promptBuilder, contextBuilder, reg); err != nil {
			return nil, fmt.Errorf("wiring: install module %s: %w", m.Name, err)
		}
	}

	providers := map[string]provider.Provider{}
	anthropicFactory := provider.NewAnthropicFactory(anthropicAPIKey)
	for _, modelName := range distinctModels(settings) {
		providers[modelName] = anthropicFactory.Create(modelName, provider.Options{Temperature: 0.7})
	}

	bus := event.NewBus()
	engine := &turnengine.Engine{
		Registry:       reg,
		PromptBuilder:  promptBuilder,
		ContextBuilder: contextBuilder,
		Catalog:        catalog,
		Bus:            bus,
		Providers:      providers,
	}

	turnSettings := turnengine.Settings{
		SecurityMode: settings.SecurityMode,
		ModelByAgent: settings.ModelByAgent,
		DefaultModel: settings.DefaultModel,
		Retry:        settings.Retry.Resolve(),
	}

	a := actor.New(engine, st, turnSettings)
	a.FileModAPI = settings.Tweaks.Resolve().FileModAPI

	sessions := sessionlog.New(dataDir)

	return &App{
		Actor:       a,
		Bus:         bus,
		Cache:       cache,
		DeltaTrack:  deltaTracker,
		TSIndex:     tsIndex,
		Scratchpad:  scratchpad,
		TrackedFile: trackedFiles,
		Settings:    settings,
		Sessions:    sessions,
		DataDir:     dataDir,
	}, nil
}

// nonNilComponents filters out nil Component interface values so an
// optional component (e.g. file tree, when NewFileTree failed) can be
// passed straight into a Module literal without a conditional append.
func nonNilComponents(cs ...contextbuild.Component) []contextbuild.Component {
	var out []contextbuild.Component
	for _, c := range cs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func distinctModels(settings *config.Settings) []string {
	seen := map[string]bool{}
	var out []string
	add := func(m string) {
		if m != "" && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	add(settings.DefaultModel)
	for _, m := range settings.ModelByAgent {
		add(m)
	}
	return out
}
