package turnengine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/symbcore/internal/agent"
	"github.com/xonecas/symbcore/internal/contextbuild"
	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/extraction"
	"github.com/xonecas/symbcore/internal/promptbuild"
	"github.com/xonecas/symbcore/internal/provider"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/security"
	"github.com/xonecas/symbcore/internal/stack"
)

// Outcome tells the driver (chat actor) what to do after ProcessTurn
// returns.
type Outcome int

const (
	// OutcomeYield: the turn ended with nothing further to do; wait
	// for the next UserMessage.
	OutcomeYield Outcome = iota
	// OutcomeContinueStack: the stack top changed (push or pop); the
	// driver should call ProcessTurn again immediately.
	OutcomeContinueStack
	// OutcomePromptUser: a tool requested user input; wait for the
	// next UserMessage (same as Yield from the driver's point of view,
	// kept distinct for event-emission clarity).
	OutcomePromptUser
)

// consecutiveNoToolUseLimit is the threshold after which a
// requires-tool-use agent's repeated failure to call a tool becomes a
// terminal error (spec.md §4.7 step 8).
const consecutiveNoToolUseLimit = 3

// loopBoundDefault is the hard upper bound on consecutive assistant
// messages within one call to ProcessTurn (spec.md §4.7, "a hard upper
// bound ... prevents runaway loops").
const loopBoundDefault = 200

// Settings is the subset of actor/session settings the turn engine
// needs per call, snapshotted at the start of each request per spec.md
// §4.7 step 1. ModelByAgent maps an agent name to a key into Engine's
// Providers map; agents absent from the map use DefaultModel.
type Settings struct {
	SecurityMode security.Mode
	ModelByAgent map[string]string
	DefaultModel string
	Retry        provider.BackoffPolicy
	LoopBound    int
}

// Engine is the turn engine: one instance per chat actor. Providers is
// keyed by the same model identifiers Settings.ModelByAgent and
// DefaultModel reference; wiring.Build constructs one Provider per
// distinct model in use rather than the engine switching transport
// mid-turn. No per-model tweaks are resolved or applied to these
// providers.
type Engine struct {
	Registry       *registry.Registry
	PromptBuilder  *promptbuild.Builder
	ContextBuilder *contextbuild.Builder
	Catalog        *agent.Catalog
	Bus            *event.Bus
	Providers      map[string]provider.Provider
}

// ProcessTurn runs spec.md §4.7's algorithm against the current
// top-of-stack agent, looping internally across assistant round-trips
// until a condition in step 8/9/10 causes it to end, and returns what
// the driver should do next.
func (e *Engine) ProcessTurn(ctx context.Context, st *stack.Stack, settings Settings) (Outcome, error) {
	loopBound := settings.LoopBound
	if loopBound <= 0 {
		loopBound = loopBoundDefault
	}

	for iter := 0; iter < loopBound; iter++ {
		var current *stack.ActiveAgent
		st.WithCurrent(func(a *stack.ActiveAgent) { current = a })

		modelKey := settings.ModelByAgent[current.Agent.Name]
		if modelKey == "" {
			modelKey = settings.DefaultModel
		}
		prov, ok := e.Providers[modelKey]
		if !ok {
			return OutcomeYield, fmt.Errorf("turn engine: no provider configured for model %q (agent %q)", modelKey, current.Agent.Name)
		}

		systemPrompt := e.PromptBuilder.Build(current.Agent)
		contextText := e.ContextBuilder.Build(current.Agent)

		reqMessages := toProviderMessages(current.Conversation)
		reqMessages = append([]provider.Message{{Role: "system", Content: systemPrompt}}, reqMessages...)
		reqMessages = appendContextToLastUser(reqMessages, contextText)
		toolDefs := e.Registry.Definitions(current.Agent.ToolAllowlist)
		tools := make([]provider.Tool, len(toolDefs))
		for i, td := range toolDefs {
			tools[i] = provider.Tool{Name: td.Name, Description: td.Description, Parameters: td.InputSchema}
		}

		e.Bus.Emit(event.Event{Kind: event.TypingStatusChanged, Typing: true})
		assistantText, reasoning, native, usage, err := e.streamOne(ctx, prov, reqMessages, tools, settings.Retry)
		e.Bus.Emit(event.Event{Kind: event.TypingStatusChanged, Typing: false})
		if err != nil {
			e.Bus.Emit(event.Event{Kind: event.ErrorEvent, ErrorMessage: err.Error()})
			return OutcomeYield, err
		}

		extracted := extraction.Extract(assistantText, native)
		for _, d := range extracted.Diagnostics {
			log.Warn().Str("channel", string(d.Channel)).Str("message", d.Message).Msg("soft tool-call parse diagnostic")
		}

		assistantMsg := buildAssistantMessage(extracted.DisplayText, reasoning, extracted.ToolCalls)
		st.WithCurrentMut(func(a *stack.ActiveAgent) { a.Conversation = append(a.Conversation, assistantMsg) })

		e.Bus.Emit(event.Event{Kind: event.StreamEnd, Message: &event.ChatMessage{
			Sender: current.Agent.Name, Content: extracted.DisplayText, Reasoning: reasoning,
			TokenUsage: &event.TokenUsage{InputTokens: usage.in, OutputTokens: usage.out},
		}})

		if len(extracted.ToolCalls) == 0 {
			if current.Agent.RequiresToolUse && iter > 0 {
				var strikes int
				st.WithCurrentMut(func(a *stack.ActiveAgent) {
					a.NoToolUseStrikes++
					strikes = a.NoToolUseStrikes
				})
				if strikes > consecutiveNoToolUseLimit {
					return OutcomeYield, fmt.Errorf("turn engine: %d consecutive assistant turns without a tool call (limit %d)", strikes, consecutiveNoToolUseLimit)
				}
				st.WithCurrentMut(func(a *stack.ActiveAgent) {
					a.Conversation = append(a.Conversation, convo.Message{
						Role:    convo.RoleUser,
						Content: []convo.Block{{Type: convo.BlockText, Text: "You must call a tool."}},
					})
				})
				continue
			}
			return OutcomeYield, nil
		}
		st.WithCurrentMut(func(a *stack.ActiveAgent) { a.NoToolUseStrikes = 0 })

		outcome, done, err := e.runBatch(ctx, st, current, extracted.ToolCalls, settings.SecurityMode)
		if err != nil {
			return OutcomeYield, err
		}
		if done {
			return outcome, nil
		}
		// Otherwise loop: same agent, same turn index, next request
		// lets the model react to the tool results just appended.
	}
	return OutcomeYield, fmt.Errorf("turn engine: loop bound %d exceeded", loopBound)
}

type usageInfo struct{ in, out int }

// streamOne submits one request and accumulates its streamed response,
// retrying on Retryable provider errors with the configured backoff
// policy (spec.md §4.9).
func (e *Engine) streamOne(ctx context.Context, prov provider.Provider, messages []provider.Message, tools []provider.Tool, retry provider.BackoffPolicy) (text, reasoning string, native []extraction.NativeCall, usage usageInfo, err error) {
	maxAttempts := retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, reasoning, native, usage, err = e.streamAttempt(ctx, prov, messages, tools)
		if err == nil {
			return text, reasoning, native, usage, nil
		}
		if !provider.IsRetryable(err) || attempt == maxAttempts {
			return "", "", nil, usageInfo{}, err
		}
		backoff := retry.Delay(attempt)
		e.Bus.Emit(event.Event{Kind: event.RetryAttempt, Attempt: attempt, MaxRetries: maxAttempts, RetryError: err.Error(), BackoffMs: backoff.Milliseconds()})
		select {
		case <-ctx.Done():
			return "", "", nil, usageInfo{}, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", "", nil, usageInfo{}, err
}

func (e *Engine) streamAttempt(ctx context.Context, prov provider.Provider, messages []provider.Message, tools []provider.Tool) (string, string, []extraction.NativeCall, usageInfo, error) {
	ch, err := prov.ChatStream(ctx, messages, tools)
	if err != nil {
		return "", "", nil, usageInfo{}, err
	}

	var text, reasoning string
	var usage usageInfo
	byIndex := map[int]*extraction.NativeCall{}
	var order []int

	for {
		select {
		case <-ctx.Done():
			return "", "", nil, usageInfo{}, ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return text, reasoning, flattenNative(byIndex, order), usage, nil
			}
			switch ev.Type {
			case provider.EventContentDelta:
				text += ev.Content
				e.Bus.Emit(event.Event{Kind: event.StreamDelta, Text: ev.Content})
			case provider.EventReasoningDelta:
				reasoning += ev.Content
			case provider.EventToolCallBegin:
				nc := &extraction.NativeCall{ID: ev.ToolCallID, Name: ev.ToolCallName}
				byIndex[ev.ToolCallIndex] = nc
				order = append(order, ev.ToolCallIndex)
			case provider.EventToolCallDelta:
				if nc, ok := byIndex[ev.ToolCallIndex]; ok {
					nc.Arguments += ev.ToolCallArgs
				}
			case provider.EventUsage:
				if ev.InputTokens > 0 {
					usage.in = ev.InputTokens
				}
				if ev.OutputTokens > 0 {
					usage.out = ev.OutputTokens
				}
			case provider.EventDone:
				return text, reasoning, flattenNative(byIndex, order), usage, nil
			case provider.EventError:
				return "", "", nil, usageInfo{}, ev.Err
			}
		}
	}
}

func flattenNative(byIndex map[int]*extraction.NativeCall, order []int) []extraction.NativeCall {
	out := make([]extraction.NativeCall, 0, len(order))
	seen := map[int]bool{}
	for _, idx := range order {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, *byIndex[idx])
	}
	return out
}

func buildAssistantMessage(text, reasoning string, calls []convo.ToolCall) convo.Message {
	var blocks []convo.Block
	if text != "" {
		blocks = append(blocks, convo.Block{Type: convo.BlockText, Text: text})
	}
	for _, c := range calls {
		blocks = append(blocks, convo.Block{
			Type: convo.BlockToolUse, ToolUseID: c.ID, ToolName: c.Name, ToolArgs: c.RawArguments, ToolSource: c.Source,
		})
	}
	_ = reasoning // carried on the event, not persisted as a block (spec.md has no reasoning block type)
	return convo.Message{Role: convo.RoleAssistant, Content: blocks}
}

func toolResultBlock(callID, text string, isError bool) convo.Block {
	return convo.Block{Type: convo.BlockToolResult, ToolResultForID: callID, ToolResultText: text, ToolResultError: isError}
}

func marshalArgs(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return json.RawMessage(`{}`)
	}
	return v
}
