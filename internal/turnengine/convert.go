// Package turnengine implements the turn engine (spec.md §4.7): the
// heart of the system. One call to ProcessTurn assembles a request,
// streams a response, extracts tool calls, validates them, gates them
// on security, executes them, and decides whether to loop again or
// yield.
//
// Grounded on the teacher's internal/llm.ProcessTurn, generalized from
// a fixed MaxDepth=1 sub-agent loop into the full agent-stack-driven
// loop spec.md describes.
package turnengine

import (
	"strings"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/provider"
)

// toProviderMessages flattens an agent's block-structured conversation
// into the flat Message shape the provider abstraction speaks.
func toProviderMessages(conversation []convo.Message) []provider.Message {
	var out []provider.Message
	for _, m := range conversation {
		out = append(out, toProviderMessage(m)...)
	}
	return out
}

func toProviderMessage(m convo.Message) []provider.Message {
	switch m.Role {
	case convo.RoleUser:
		return []provider.Message{{Role: "user", Content: m.Text()}}
	case convo.RoleSystemToolResult:
		var out []provider.Message
		for _, b := range m.Content {
			if b.Type == convo.BlockToolResult {
				out = append(out, provider.Message{
					Role:       "tool",
					Content:    b.ToolResultText,
					ToolCallID: b.ToolResultForID,
				})
			}
		}
		return out
	case convo.RoleAssistant:
		var text strings.Builder
		var calls []provider.ToolCall
		for _, b := range m.Content {
			switch b.Type {
			case convo.BlockText:
				text.WriteString(b.Text)
			case convo.BlockToolUse:
				calls = append(calls, provider.ToolCall{ID: b.ToolUseID, Name: b.ToolName, Arguments: b.ToolArgs})
			}
		}
		return []provider.Message{{Role: "assistant", Content: text.String(), ToolCalls: calls}}
	default:
		return nil
	}
}

// appendContextToLastUser returns a copy of messages with ctx appended
// to the last user message's content, per spec.md invariant 5 — this
// copy is only used for the in-flight request, never persisted.
func appendContextToLastUser(messages []provider.Message, ctxText string) []provider.Message {
	if ctxText == "" {
		return messages
	}
	out := make([]provider.Message, len(messages))
	copy(out, messages)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Role == "user" {
			out[i].Content = out[i].Content + "\n\n" + ctxText
			break
		}
	}
	return out
}
