package tools

import (
	"context"
	"encoding/json"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
)

type askUserQuestionArgs struct {
	Question string `json:"question"`
}

// AskUserQuestionExecutor implements "ask_user_question": it yields
// the turn back to the user with Question displayed, rather than
// continuing the assistant loop (spec.md §4.7 OutcomePromptUser).
type AskUserQuestionExecutor struct{}

func NewAskUserQuestionExecutor() *AskUserQuestionExecutor { return &AskUserQuestionExecutor{} }

func (e *AskUserQuestionExecutor) Name() string { return "ask_user_question" }

func (e *AskUserQuestionExecutor) Description() string {
	return "Ask the user a clarifying question and wait for their reply before continuing."
}

func (e *AskUserQuestionExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {"type": "string", "description": "The question to ask the user."}
		},
		"required": ["question"]
	}`)
}

func (e *AskUserQuestionExecutor) Category() convo.Category { return convo.CategoryAlwaysAllowed }

func (e *AskUserQuestionExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args askUserQuestionArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &askUserQuestionHandle{callID: req.ToolCallID, question: args.Question}, nil
}

type askUserQuestionHandle struct {
	callID   string
	question string
}

func (h *askUserQuestionHandle) Validated() convo.ValidatedToolCall {
	return convo.ValidatedToolCall{Kind: convo.VPromptUser, CallID: h.callID, Question: h.question}
}

func (h *askUserQuestionHandle) ToolRequest() event.ToolRequestEvent {
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "ask_user_question", ToolType: "ask_user_question"}
}

func (h *askUserQuestionHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	return convo.ToolOutput{Kind: convo.OutPromptUser, Question: h.question}, nil
}
