// Package stack implements the agent stack machine: a LIFO stack of
// active agents, each with its own private conversation. Spawning
// pushes a fresh agent seeded with a task message; completion pops it
// and the driver injects the child's completion_result back into the
// parent's conversation.
//
// Grounded on the teacher's internal/subagent package, generalized from
// a single fixed depth-1 sub-agent to an arbitrary-depth stack with
// hierarchical spawn permissions (see internal/agent.Catalog).
package stack

import (
	"errors"

	"github.com/xonecas/symbcore/internal/agent"
	"github.com/xonecas/symbcore/internal/convo"
)

// ErrStackEmpty names the empty-stack condition. No Stack method
// returns it: the stack is constructed non-empty and never popped
// below depth 1.
var ErrStackEmpty = errors.New("stack: agent stack is empty")

// ErrPopRoot is returned by Pop when called at depth 1 (the root agent
// is never popped).
var ErrPopRoot = errors.New("stack: cannot pop the root agent")

// ActiveAgent is one instance of an AgentDefinition, present on the
// stack, with its own private conversation. No sibling or parent agent
// ever reads this conversation directly.
type ActiveAgent struct {
	Agent            *agent.Definition
	Conversation     []convo.Message
	CompletionResult *string

	// SpawnedByCallID is the tool-use ID of the spawn_agent call that
	// pushed this agent, used by PopAgent handling to locate the
	// matching tool-use block in the parent's conversation. Empty for
	// the root agent.
	SpawnedByCallID string

	// NoToolUseStrikes counts consecutive assistant turns with no
	// extracted tool call while RequiresToolUse is set (spec.md §4.7
	// step 8); reset whenever a tool call is produced.
	NoToolUseStrikes int
}

// Stack is a non-empty, ordered sequence of ActiveAgents, LIFO. The
// bottom element is the root agent chosen at construction; it is never
// popped. Invariant: len(entries) >= 1 at all times.
type Stack struct {
	entries []*ActiveAgent
}

// New constructs a Stack with a single root ActiveAgent whose
// conversation starts empty.
func New(root *agent.Definition) *Stack {
	return &Stack{entries: []*ActiveAgent{{Agent: root}}}
}

// Depth returns the current stack depth (>= 1).
func (s *Stack) Depth() int {
	return len(s.entries)
}

// CurrentName returns the name of the top-of-stack agent.
func (s *Stack) CurrentName() string {
	return s.entries[len(s.entries)-1].Agent.Name
}

// WithCurrent gives read access to the top-of-stack ActiveAgent.
func (s *Stack) WithCurrent(f func(a *ActiveAgent)) {
	f(s.entries[len(s.entries)-1])
}

// WithCurrentMut gives mutable access to the top-of-stack ActiveAgent.
func (s *Stack) WithCurrentMut(f func(a *ActiveAgent)) {
	f(s.entries[len(s.entries)-1])
}

// WithRoot gives read access to the bottom-of-stack (root) ActiveAgent.
func (s *Stack) WithRoot(f func(a *ActiveAgent)) {
	f(s.entries[0])
}

// WithRootMut gives mutable access to the root ActiveAgent.
func (s *Stack) WithRootMut(f func(a *ActiveAgent)) {
	f(s.entries[0])
}

// Push pushes a fresh ActiveAgent for def, seeding its conversation
// with one user message equal to task. spawnCallID is the tool-use ID
// of the spawn_agent call responsible, used later by PopAgent handling
// to locate the matching tool-use block in the parent. The root agent
// is never pushed; New creates it.
func (s *Stack) Push(def *agent.Definition, task, spawnCallID string) {
	child := &ActiveAgent{
		Agent: def,
		Conversation: []convo.Message{
			{Role: convo.RoleUser, Content: []convo.Block{{Type: convo.BlockText, Text: task}}},
		},
		SpawnedByCallID: spawnCallID,
	}
	s.entries = append(s.entries, child)
}

// Pop removes the top-of-stack agent and returns it, unless depth == 1
// (the root agent), in which case it returns ErrPopRoot and leaves the
// stack unchanged.
func (s *Stack) Pop() (*ActiveAgent, error) {
	if len(s.entries) <= 1 {
		return nil, ErrPopRoot
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return top, nil
}

// Parent returns the ActiveAgent directly below the top of stack, or
// nil if depth == 1.
func (s *Stack) Parent() *ActiveAgent {
	if len(s.entries) < 2 {
		return nil
	}
	return s.entries[len(s.entries)-2]
}
