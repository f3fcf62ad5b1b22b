package registry

import (
	"context"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
)

// syntheticHandle is used for the "unknown tool" and "argument
// coercion failed" edge cases (spec.md §4.2, §7): it never performs a
// side effect, it just returns a soft tool-result error so the model
// can recover.
type syntheticHandle struct {
	callID  string
	message string
}

func (h *syntheticHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VError, CallID: h.callID, ErrorMessage: h.message}
}

func (h *syntheticHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "error", ToolType: "error"}
}

func (h *syntheticHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	return convo.ToolOutput{
		Kind:         convo.OutResult,
		Content:      h.message,
		IsError:      true,
		Continuation: convo.ContinueLoop,
	}, nil
}

func unknownToolHandle(name string, available []string, callID string) Handle {
	msg := "Unknown tool: " + name + ". Available: "
	for i, n := range available {
		if i > 0 {
			msg += ", "
		}
		msg += n
	}
	return &syntheticHandle{callID: callID, message: msg}
}

func softErrorHandle(callID, message string) Handle {
	return &syntheticHandle{callID: callID, message: message}
}
