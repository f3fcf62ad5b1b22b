package actor

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/provider"
	"github.com/xonecas/symbcore/internal/stack"
)

// pairingHolds checks spec.md §8 property 2: every tool-use block in an
// assistant message has a matching tool-result block later in the
// conversation. The conversation's last message is not checked
// (rollbackUnmatched runs inside the cancelled Recv before it returns,
// so a cancellation does not depend on this exemption).
func pairingHolds(conv []convo.Message) bool {
	for i, m := range conv {
		if m.Role != convo.RoleAssistant {
			continue
		}
		if i == len(conv)-1 {
			continue
		}
		if convo.HasUnmatchedToolUse(conv, i) {
			return false
		}
	}
	return true
}

func genActorActions() gopter.Gen {
	return gen.SliceOfN(10, gen.OneConstOf("message", "cancel"))
}

// TestActorStackAndPairingInvariantsProperty verifies spec.md §8
// properties 1 (stack non-empty) and 2 (tool-use/result pairing) hold
// after any sequence of user messages and cancellations fed to a
// single Actor.
//
// Grounded on the pack's gopter property-test style
// (goadesign-goa-ai/runtime/registry/manager_property_test.go):
// gopter.DefaultTestParameters + prop.ForAll over a generated slice,
// with the checked property collapsed to a bool-returning closure.
func TestActorStackAndPairingInvariantsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("stack depth stays >= 1 and tool-use/result stays paired", prop.ForAll(
		func(actions []string) bool {
			a := newTestActor(provider.NewMock("mock", "ack"))
			for _, action := range actions {
				var msg Message
				switch action {
				case "message":
					msg = Message{Kind: KindUserMessage, Text: "hi"}
				case "cancel":
					msg = Message{Kind: KindCancel}
				}
				if err := a.Recv(context.Background(), msg); err != nil {
					return false
				}
				if a.Stack.Depth() < 1 {
					return false
				}
				var conv []convo.Message
				a.Stack.WithCurrent(func(ag *stack.ActiveAgent) { conv = ag.Conversation })
				if !pairingHolds(conv) {
					return false
				}
			}
			return true
		},
		genActorActions(),
	))

	properties.TestingRun(t)
}

// TestCancelThenUserMessagePreservesInvariantsProperty verifies spec.md
// §8 property 8 (cancellation safety): for a random in-flight delay,
// cancelling a slow request and immediately sending a new user message
// still leaves the stack non-empty and tool-use/result pairing intact.
func TestCancelThenUserMessagePreservesInvariantsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("cancel followed by a new message preserves the stack/pairing invariants", prop.ForAll(
		func(delayMs int) bool {
			mock := provider.NewMock("mock", "too slow").SetDelay(time.Duration(delayMs) * time.Millisecond)
			a := newTestActor(mock)

			done := make(chan struct{})
			go func() {
				_ = a.Recv(context.Background(), Message{Kind: KindUserMessage, Text: "slow request"})
				close(done)
			}()
			time.Sleep(time.Millisecond)
			if err := a.Recv(context.Background(), Message{Kind: KindCancel}); err != nil {
				return false
			}
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				return false
			}

			a.Engine.Providers[testModel] = provider.NewMock("mock", "recovered")
			if err := a.Recv(context.Background(), Message{Kind: KindUserMessage, Text: "retry"}); err != nil {
				return false
			}

			if a.Stack.Depth() < 1 {
				return false
			}
			var conv []convo.Message
			a.Stack.WithCurrent(func(ag *stack.ActiveAgent) { conv = ag.Conversation })
			return pairingHolds(conv)
		},
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

// TestRollbackUnmatchedIsIdempotentProperty exercises rollbackUnmatched
// directly (no actor/provider involved) across conversations of random
// depth built by buildConversation, checking that a second rollback
// removes nothing the first one kept. The testify/require checks are in
// TestRollbackUnmatchedRequireStyleAssertion below.
func TestRollbackUnmatchedIsIdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("rollbackUnmatched is idempotent", prop.ForAll(
		func(depth int) bool {
			conv := buildConversation(depth)
			once := rollbackUnmatched(conv)
			twice := rollbackUnmatched(once)
			return len(once) == len(twice)
		},
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

func buildConversation(depth int) []convo.Message {
	conv := []convo.Message{{Role: convo.RoleUser, Content: []convo.Block{{Type: convo.BlockText, Text: "hi"}}}}
	for i := 0; i < depth; i++ {
		callID := "call"
		conv = append(conv, convo.Message{Role: convo.RoleAssistant, Content: []convo.Block{{Type: convo.BlockToolUse, ToolUseID: callID, ToolName: "x"}}})
		if i%2 == 0 {
			conv = append(conv, convo.Message{Role: convo.RoleSystemToolResult, Content: []convo.Block{{Type: convo.BlockToolResult, ToolResultForID: callID}}})
		}
	}
	return conv
}

func TestRollbackUnmatchedRequireStyleAssertion(t *testing.T) {
	conv := buildConversation(3)
	out := rollbackUnmatched(conv)
	require.NotEmpty(t, out, "rollbackUnmatched must never drop the root user message")
	require.Equal(t, convo.RoleUser, out[0].Role)
}
