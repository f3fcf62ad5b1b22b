// Package contextbuild implements the context builder (spec.md §4.3):
// an ordered collection of components re-rendered every turn and
// appended as a single text block to the last user message — never
// stored in the conversation (spec.md invariant 5).
//
// Grounded on the teacher's tracked-file rendering in internal/llm and
// the file-tree enumeration in internal/filesearch, generalized into a
// component list so modules can contribute context sections
// independently of the prompt builder.
package contextbuild

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/symbcore/internal/agent"
)

// Component contributes one dynamic context section, rendered fresh
// every turn.
type Component interface {
	ID() string
	Render() string
}

// Builder is the ordered collection of registered context components.
type Builder struct {
	components []Component
	// FileTreeByteCap bounds how many bytes of file-tree listing the
	// file-tree component (if registered) may contribute before
	// truncating and emitting a warning (spec.md §4.3).
	FileTreeByteCap int
}

func NewBuilder() *Builder {
	return &Builder{FileTreeByteCap: 8192}
}

func (b *Builder) Register(c Component) {
	b.components = append(b.components, c)
}

// Build renders every component selected by def.ContextSelection, in
// registration order, skipping components that render empty, and
// returns the composed context text (or "" if nothing rendered).
func (b *Builder) Build(def *agent.Definition) string {
	var parts []string
	for _, c := range b.components {
		if !def.ContextSelection.Includes(c.ID()) {
			continue
		}
		text := c.Render()
		if text == "" {
			continue
		}
		if c.ID() == "file_tree" && len(text) > b.FileTreeByteCap {
			text = text[:b.FileTreeByteCap]
			log.Warn().Str("component", "file_tree").Int("cap", b.FileTreeByteCap).
				Msg("file tree context truncated; tighten ignore files to see more")
			text += "\n[... truncated; tighten ignore files to see the rest ...]"
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

// AppendToLastUserText appends context (if non-empty) to base, the
// text of the last user message, returning the combined text. The
// caller is responsible for only using the result in the in-memory
// request copy, never persisting it (spec.md invariant 5).
func AppendToLastUserText(base, context string) string {
	if context == "" {
		return base
	}
	return base + "\n\n" + context
}
