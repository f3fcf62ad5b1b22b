package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
)

type echoHandle struct {
	v convo.ValidatedToolCall
}

func (h echoHandle) Validated() convo.ValidatedToolCall { return h.v }
func (h echoHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.v.CallID, ToolName: "echo"}
}
func (h echoHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	return convo.ToolOutput{Kind: convo.OutResult, Content: "ok", Continuation: convo.ContinueLoop}, nil
}

type echoExecutor struct{}

func (echoExecutor) Name() string        { return "echo" }
func (echoExecutor) Description() string { return "echoes arguments" }
func (echoExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"n":{"type":"number"}},"required":["n"]}`)
}
func (echoExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }
func (echoExecutor) Process(ctx context.Context, req Request) (Handle, error) {
	return echoHandle{v: convo.ValidatedToolCall{Kind: convo.VNoOp, CallID: req.ToolCallID}}, nil
}

type alphaExecutor struct{ echoExecutor }

func (alphaExecutor) Name() string { return "alpha" }

func TestDispatchCoercesStringNumber(t *testing.T) {
	r := New()
	if err := r.Register(echoExecutor{}); err != nil {
		t.Fatal(err)
	}
	allow := map[string]bool{"echo": true}
	h, err := r.Dispatch(context.Background(), "echo", allow, Request{ToolCallID: "1", Arguments: json.RawMessage(`{"n":"3"}`)})
	if err != nil {
		t.Fatal(err)
	}
	if h.Validated().Kind != convo.VNoOp {
		t.Fatalf("expected coercion to succeed, got %+v", h.Validated())
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := New()
	h, err := r.Dispatch(context.Background(), "nope", map[string]bool{}, Request{ToolCallID: "1"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := h.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsError {
		t.Fatal("expected unknown tool to produce a soft error")
	}
}

func TestDefinitionsAreAlphabeticallyOrdered(t *testing.T) {
	r := New()
	_ = r.Register(echoExecutor{})
	_ = r.Register(alphaExecutor{})
	defs := r.Definitions(map[string]bool{"echo": true, "alpha": true})
	if len(defs) != 2 || defs[0].Name != "alpha" || defs[1].Name != "echo" {
		t.Fatalf("unexpected definitions: %+v", defs)
	}
}
