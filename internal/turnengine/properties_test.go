package turnengine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/provider"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/stack"
)

// toolStub is a minimal always-allowed registry.Executor used only to
// populate the registry with a variable number of tools for the
// schema-determinism property below.
type toolStub struct{ name string }

func newToolStub(i int) toolStub { return toolStub{name: fmt.Sprintf("stub_%d", i)} }

func (s toolStub) Name() string                 { return s.name }
func (s toolStub) Description() string          { return "stub tool" }
func (s toolStub) InputSchema() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (s toolStub) Category() convo.Category     { return convo.CategoryAlwaysAllowed }
func (s toolStub) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	return stubHandle{id: req.ToolCallID}, nil
}

type stubHandle struct{ id string }

func (h stubHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VNoOp, CallID: h.id}
}
func (h stubHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.id, ToolName: "stub", ToolType: "stub"}
}
func (h stubHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	return convo.ToolOutput{Kind: convo.OutResult, Content: "ok", Continuation: convo.ContinueStop}, nil
}

// TestRetryAttemptCountNeverExceedsConfiguredMaximumProperty verifies
// spec.md §8 property 7: for a request whose provider always fails
// with a Retryable error, the number of RetryAttempt events the engine
// emits never exceeds MaxAttempts-1 (the final attempt fails terminally
// without a further retry announcement).
func TestRetryAttemptCountNeverExceedsConfiguredMaximumProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("RetryAttempt events never exceed MaxAttempts-1", prop.ForAll(
		func(maxAttempts int) bool {
			mock := provider.NewMock("mock", "").WithStreamError(provider.NewRetryable(errRetryableTest))
			eng, root := newTestEngine(t, mock)
			st := stack.New(root)

			sub := eng.Bus.Subscribe()
			settings := settingsFor()
			settings.Retry = provider.BackoffPolicy{MaxAttempts: maxAttempts, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

			_, err := eng.ProcessTurn(context.Background(), st, settings)
			if err == nil {
				return false
			}

			retries := 0
		drain:
			for {
				select {
				case ev := <-sub:
					if ev.Kind == event.RetryAttempt {
						retries++
					}
				default:
					break drain
				}
			}
			return retries <= maxAttempts-1
		},
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

// TestToolSchemaOrderIsDeterministicProperty verifies spec.md §8
// property 6: for a fixed allowlist, Registry.Definitions returns the
// tool schemas in the same order on every call, for registries of 1 to
// 8 tools registered in a fixed order.
func TestToolSchemaOrderIsDeterministicProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("Definitions order is stable across repeated calls", prop.ForAll(
		func(n int) bool {
			mock := provider.NewMock("mock", "hi")
			execs := make([]registry.Executor, n)
			allow := map[string]bool{}
			for i := range execs {
				ts := newToolStub(i)
				execs[i] = ts
				allow[ts.Name()] = true
			}
			eng, _ := newTestEngine(t, mock, execs...)

			first := eng.Registry.Definitions(allow)
			for i := 0; i < 5; i++ {
				again := eng.Registry.Definitions(allow)
				if len(again) != len(first) {
					return false
				}
				for j := range first {
					if again[j].Name != first[j].Name {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}

func TestRetryAttemptCountRequireStyleAssertion(t *testing.T) {
	mock := provider.NewMock("mock", "").WithStreamError(provider.NewRetryable(errRetryableTest))
	eng, root := newTestEngine(t, mock)
	st := stack.New(root)
	settings := settingsFor()
	settings.Retry = provider.BackoffPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	_, err := eng.ProcessTurn(context.Background(), st, settings)
	require.Error(t, err, "a provider that always fails must surface a terminal error once attempts are exhausted")
}

var errRetryableTest = errRetryable{}

type errRetryable struct{}

func (errRetryable) Error() string { return "simulated retryable failure" }
