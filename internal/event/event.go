// Package event defines the strongly-typed event stream the chat actor
// emits to any number of front-end consumers, and a small fan-out bus
// to deliver it.
package event

import "encoding/json"

// Kind discriminates the Event sum type.
type Kind string

const (
	TypingStatusChanged     Kind = "typing_status_changed"
	MessageAdded            Kind = "message_added"
	StreamDelta             Kind = "stream_delta"
	StreamEnd               Kind = "stream_end"
	ToolRequest              Kind = "tool_request"
	ToolExecutionCompleted   Kind = "tool_execution_completed"
	RetryAttempt             Kind = "retry_attempt"
	ErrorEvent               Kind = "error"
	TaskUpdate               Kind = "task_update"
)

// ChatMessage is the front-end-facing rendering of a convo.Message,
// enriched with the fields MessageAdded carries per spec (model info,
// token usage, reasoning, tool calls, images).
type ChatMessage struct {
	Sender     string          `json:"sender"`
	Content    string          `json:"content"`
	Reasoning  string          `json:"reasoning,omitempty"`
	ToolCalls  []ToolCallInfo  `json:"tool_calls,omitempty"`
	ModelInfo  string          `json:"model_info,omitempty"`
	TokenUsage *TokenUsage     `json:"token_usage,omitempty"`
	Images     []string        `json:"images,omitempty"`
}

type ToolCallInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ToolRequestEvent is the user-facing description of a tool about to
// execute, produced by Handle.ToolRequest before any side effect.
type ToolRequestEvent struct {
	ToolCallID string          `json:"tool_call_id"`
	ToolName   string          `json:"tool_name"`
	ToolType   string          `json:"tool_type"`
	Args       json.RawMessage `json:"args"`
}

// TaskList is the front-end's view of the current scratchpad/plan.
type TaskList struct {
	Content string `json:"content"`
}

// Event is one immutable item on the bus.
type Event struct {
	Kind Kind `json:"kind"`

	// TypingStatusChanged
	Typing bool `json:"typing,omitempty"`

	// MessageAdded / StreamEnd
	Message *ChatMessage `json:"message,omitempty"`

	// StreamDelta
	Text string `json:"text,omitempty"`

	// ToolRequest
	ToolReq *ToolRequestEvent `json:"tool_request,omitempty"`

	// ToolExecutionCompleted
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	Success    bool   `json:"success,omitempty"`
	ToolResult string `json:"tool_result,omitempty"`
	ToolError  string `json:"tool_error,omitempty"`

	// RetryAttempt
	Attempt    int    `json:"attempt,omitempty"`
	MaxRetries int    `json:"max_retries,omitempty"`
	RetryError string `json:"retry_error,omitempty"`
	BackoffMs  int64  `json:"backoff_ms,omitempty"`

	// ErrorEvent
	ErrorMessage string `json:"error_message,omitempty"`

	// TaskUpdate
	Tasks *TaskList `json:"tasks,omitempty"`
}
