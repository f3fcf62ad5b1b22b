// Package promptbuild implements the prompt builder (spec.md §4.3): an
// ordered collection of components, each rendered once per request and
// filtered by the current agent's prompt-component selection.
//
// Grounded on the teacher's internal/llm.BuildSystemPrompt, generalized
// from a flat string-concatenation of embedded files into an ordered,
// filterable component list so modules (internal/modulebundle) can
// contribute components independently.
package promptbuild

import (
	"strings"

	"github.com/xonecas/symbcore/internal/agent"
)

// Component contributes one section of the system prompt.
type Component interface {
	ID() string
	// Render returns the section's text, or "" to be skipped.
	Render() string
}

// StaticComponent is the common case: a fixed string.
type StaticComponent struct {
	id   string
	text string
}

func NewStatic(id, text string) StaticComponent { return StaticComponent{id: id, text: text} }
func (s StaticComponent) ID() string             { return s.id }
func (s StaticComponent) Render() string          { return s.text }

// Builder is the ordered collection of registered components.
type Builder struct {
	components []Component
}

func NewBuilder() *Builder { return &Builder{} }

// Register appends a component in registration order.
func (b *Builder) Register(c Component) {
	b.components = append(b.components, c)
}

// Build renders the system prompt for def: def's core prompt first,
// then every registered component selected by def.PromptSelection, in
// registration order, skipping components that render empty.
func (b *Builder) Build(def *agent.Definition) string {
	var parts []string
	if def.CorePrompt != "" {
		parts = append(parts, def.CorePrompt)
	}
	for _, c := range b.components {
		if !def.PromptSelection.Includes(c.ID()) {
			continue
		}
		if text := c.Render(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
