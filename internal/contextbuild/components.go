package contextbuild

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xonecas/symbcore/internal/filesearch"
)

// TrackedFiles renders the latest contents of every tracked,
// workspace-relative path. wiring.Build creates one per App and hands it
// to the set_tracked_files tool, the only caller that changes the set;
// the actor does not hold it, and /compact does not clear it.
type TrackedFiles struct {
	mu    sync.RWMutex
	root  string
	paths []string
}

func NewTrackedFiles(root string) *TrackedFiles {
	return &TrackedFiles{root: root}
}

func (t *TrackedFiles) ID() string { return "tracked_files" }

func (t *TrackedFiles) Set(paths []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append([]string(nil), paths...)
}

func (t *TrackedFiles) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = nil
}

func (t *TrackedFiles) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.paths...)
}

func (t *TrackedFiles) Render() string {
	paths := t.Paths()
	if len(paths) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Tracked files:\n")
	for _, p := range paths {
		data, err := os.ReadFile(t.root + string(os.PathSeparator) + p)
		b.WriteString(fmt.Sprintf("\n--- %s ---\n", p))
		if err != nil {
			b.WriteString(fmt.Sprintf("(could not read: %v)\n", err))
			continue
		}
		b.Write(data)
		b.WriteString("\n")
	}
	return b.String()
}

// FileTree renders a gitignore-aware listing of workspace paths, up to
// Builder.FileTreeByteCap bytes (enforced by Builder.Build, not here).
type FileTree struct {
	root     *filesearch.Searcher
	rootPath string
}

func NewFileTree(rootPath string) (*FileTree, error) {
	s, err := filesearch.NewSearcher(rootPath)
	if err != nil {
		return nil, err
	}
	return &FileTree{root: s, rootPath: rootPath}, nil
}

func (f *FileTree) ID() string { return "file_tree" }

func (f *FileTree) Render() string {
	results, err := f.root.Search(context.Background(), filesearch.Options{
		Pattern: ".", RootDir: f.rootPath, MaxResults: 0,
	})
	if err != nil || len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Workspace files:\n")
	for _, r := range results {
		b.WriteString(r.Path)
		b.WriteString("\n")
	}
	return b.String()
}

// TaskListComponent renders the current scratchpad/plan, kept visible
// at the tail of context so the agent's goals stay in the model's
// recent attention window (grounded on teacher's mcptools.Scratchpad).
type TaskListComponent struct {
	Reader interface{ Content() string }
}

func (t *TaskListComponent) ID() string { return "task_list" }

func (t *TaskListComponent) Render() string {
	if t.Reader == nil {
		return ""
	}
	content := t.Reader.Content()
	if content == "" {
		return ""
	}
	return "Current plan:\n" + content
}
