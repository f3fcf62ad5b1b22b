package turnengine

import (
	"context"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/security"
	"github.com/xonecas/symbcore/internal/stack"
)

// runBatch validates, gates, and executes one batch of tool calls
// extracted from a single assistant message (spec.md §4.6). It mutates
// st in place (appending tool-result messages, pushing/popping agents)
// and reports whether the caller should keep looping within the
// current agent (done=false) or stop and return outcome to the driver
// (done=true).
func (e *Engine) runBatch(ctx context.Context, st *stack.Stack, current *stack.ActiveAgent, calls []convo.ToolCall, mode security.Mode) (outcome Outcome, done bool, err error) {
	handles := make([]registry.Handle, 0, len(calls))
	validated := make([]convo.ValidatedToolCall, 0, len(calls))

	for _, c := range calls {
		h, dispatchErr := e.Registry.Dispatch(ctx, c.Name, current.Agent.ToolAllowlist, registry.Request{
			ToolCallID: c.ID,
			Arguments:  c.RawArguments,
		})
		if dispatchErr != nil {
			return OutcomeYield, true, dispatchErr
		}
		handles = append(handles, h)
		validated = append(validated, h.Validated())
	}

	if denials := security.Gate(mode, validated); len(denials) > 0 {
		reasonByID := map[string]string{}
		for _, d := range denials {
			reasonByID[d.CallID] = d.Reason
		}
		blocks := make([]convo.Block, 0, len(calls))
		for _, v := range validated {
			reason, wasDenied := reasonByID[v.CallID]
			if !wasDenied {
				reason = "blocked: another call in this batch was denied"
			}
			blocks = append(blocks, toolResultBlock(v.CallID, reason, true))
		}
		st.WithCurrentMut(func(a *stack.ActiveAgent) {
			a.Conversation = append(a.Conversation, convo.Message{Role: convo.RoleSystemToolResult, Content: blocks})
		})
		return OutcomeYield, false, nil
	}

	var plainBlocks []convo.Block
	var pendingOutcome Outcome
	var stop bool

	for i, h := range handles {
		e.Bus.Emit(event.Event{Kind: event.ToolRequest, ToolReq: ptrToolReq(h.ToolRequest())})
		out, execErr := h.Execute(ctx)
		callID := validated[i].CallID
		if execErr != nil {
			e.Bus.Emit(event.Event{Kind: event.ToolExecutionCompleted, ToolCallID: callID, Success: false, ToolError: execErr.Error()})
			plainBlocks = append(plainBlocks, toolResultBlock(callID, execErr.Error(), true))
			continue
		}

		switch out.Kind {
		case convo.OutPushAgent:
			if stop {
				plainBlocks = append(plainBlocks, toolResultBlock(callID, "ignored: a prior call in this batch already changed the agent stack", true))
				continue
			}
			def, ok := e.Catalog.Get(out.SpawnAgent)
			if !ok || !current.Agent.SpawnAllowlist[def.Name] {
				plainBlocks = append(plainBlocks, toolResultBlock(callID, "agent \""+out.SpawnAgent+"\" cannot be spawned from \""+current.Agent.Name+"\"", true))
				continue
			}
			e.Bus.Emit(event.Event{Kind: event.ToolExecutionCompleted, ToolCallID: callID, Success: true})
			if len(plainBlocks) > 0 {
				st.WithCurrentMut(func(a *stack.ActiveAgent) {
					a.Conversation = append(a.Conversation, convo.Message{Role: convo.RoleSystemToolResult, Content: plainBlocks})
				})
				plainBlocks = nil
			}
			st.Push(def, out.SpawnTask, callID)
			pendingOutcome, stop = OutcomeContinueStack, true

		case convo.OutPopAgent:
			if stop {
				plainBlocks = append(plainBlocks, toolResultBlock(callID, "ignored: a prior call in this batch already changed the agent stack", true))
				continue
			}
			e.Bus.Emit(event.Event{Kind: event.ToolExecutionCompleted, ToolCallID: callID, Success: out.PopSuccess, ToolResult: out.PopResult})
			if len(plainBlocks) > 0 {
				st.WithCurrentMut(func(a *stack.ActiveAgent) {
					a.Conversation = append(a.Conversation, convo.Message{Role: convo.RoleSystemToolResult, Content: plainBlocks})
				})
				plainBlocks = nil
			}
			popped, popErr := st.Pop()
			if popErr != nil {
				plainBlocks = append(plainBlocks, toolResultBlock(callID, popErr.Error(), true))
				continue
			}
			spawnCallID := popped.SpawnedByCallID
			st.WithCurrentMut(func(a *stack.ActiveAgent) {
				a.Conversation = append(a.Conversation, convo.Message{
					Role:    convo.RoleSystemToolResult,
					Content: []convo.Block{toolResultBlock(spawnCallID, out.PopResult, !out.PopSuccess)},
				})
			})
			pendingOutcome, stop = OutcomeContinueStack, true

		case convo.OutPromptUser:
			if stop {
				continue
			}
			e.Bus.Emit(event.Event{Kind: event.ToolExecutionCompleted, ToolCallID: callID, Success: true})
			pendingOutcome, stop = OutcomePromptUser, true

		default: // OutResult
			e.Bus.Emit(event.Event{Kind: event.ToolExecutionCompleted, ToolCallID: callID, Success: !out.IsError, ToolResult: out.UIResult})
			plainBlocks = append(plainBlocks, toolResultBlock(callID, out.Content, out.IsError))
			if out.Continuation == convo.ContinueStop && !stop {
				pendingOutcome, stop = OutcomeYield, true
			}
		}
	}

	if len(plainBlocks) > 0 {
		st.WithCurrentMut(func(a *stack.ActiveAgent) {
			a.Conversation = append(a.Conversation, convo.Message{Role: convo.RoleSystemToolResult, Content: plainBlocks})
		})
	}

	if stop {
		return pendingOutcome, true, nil
	}
	return OutcomeYield, false, nil
}

func ptrToolReq(ev event.ToolRequestEvent) *event.ToolRequestEvent {
	return &ev
}
