// Package modulebundle defines Module, spec.md §2/§4.4's bundle of
// prompt components, context components, tools, and an optional
// session-state serializer, all deployed together as one unit.
package modulebundle

import (
	"github.com/xonecas/symbcore/internal/contextbuild"
	"github.com/xonecas/symbcore/internal/promptbuild"
	"github.com/xonecas/symbcore/internal/registry"
)

// StateSerializer is the interface for a module's slice of session
// state: a top-level JSON key plus marshal/unmarshal hooks. Nothing
// calls these methods: Install ignores Module.State, sessionlog.Session
// has no module-state fields, and no module built in wiring sets
// State, so module state is neither saved nor restored.
type StateSerializer interface {
	// Key is the top-level JSON key for this module's state.
	Key() string
	MarshalState() (any, error)
	UnmarshalState(v any) error
}

// Module bundles everything one deployable unit contributes to the
// actor: prompt components, context components, tools, and optionally
// a session-state serializer.
type Module struct {
	Name             string
	PromptComponents []promptbuild.Component
	ContextComponents []contextbuild.Component
	Tools            []registry.Executor
	State            StateSerializer // nil if the module is stateless
}

// Install registers every component the module contributes into the
// given builders/registry.
func (m Module) Install(pb *promptbuild.Builder, cb *contextbuild.Builder, reg *registry.Registry) error {
	for _, c := range m.PromptComponents {
		pb.Register(c)
	}
	for _, c := range m.ContextComponents {
		cb.Register(c)
	}
	for _, t := range m.Tools {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
