// Package extraction implements the three-parallel-channel tool-call
// extractor (spec.md §4.5): native structured blocks delivered by the
// provider stream, XML <function_calls> blocks in text, and JSON
// {tool_use:{...}} objects in the remaining text, merged in that
// order.
//
// The teacher's turn loop (internal/llm/loop.go) only implements the
// native channel, via its streaming tool-call accumulator. The XML and
// JSON channels are supplemented here, grounded on
// original_source/'s chat/tool_extraction.rs behavior (soft,
// non-fatal per-block parse errors; display text has every parsed
// region stripped).
package extraction

import (
	"github.com/google/uuid"
	"github.com/xonecas/symbcore/internal/convo"
)

// Diagnostic is a soft, non-fatal parse error from one channel.
type Diagnostic struct {
	Channel convo.ToolCallSource
	Message string
}

// Result is the outcome of running all three channels over one
// assistant message.
type Result struct {
	ToolCalls   []convo.ToolCall
	DisplayText string
	Diagnostics []Diagnostic
}

// NativeCall is one tool-use block the provider stream already
// delivered as a structured event (EventToolCallBegin/Delta), distinct
// from text the model also produced.
type NativeCall struct {
	ID        string
	Name      string
	Arguments string
}

// Extract runs the three channels over assistantText (the accumulated
// EventContentDelta text for one assistant message) plus any native
// calls the stream already produced, merging native, then XML (in
// document order), then JSON (in document order).
func Extract(assistantText string, native []NativeCall) Result {
	var res Result
	var diags []Diagnostic

	for _, n := range native {
		res.ToolCalls = append(res.ToolCalls, convo.ToolCall{
			ID:           orNewID(n.ID),
			Name:         n.Name,
			RawArguments: []byte(n.Arguments),
			Source:       convo.SourceNative,
		})
	}

	xmlCalls, afterXML, xmlDiags := extractXML(assistantText)
	res.ToolCalls = append(res.ToolCalls, xmlCalls...)
	diags = append(diags, xmlDiags...)

	jsonCalls, afterJSON, jsonDiags := extractJSON(afterXML)
	res.ToolCalls = append(res.ToolCalls, jsonCalls...)
	diags = append(diags, jsonDiags...)

	res.DisplayText = afterJSON
	res.Diagnostics = diags
	return res
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
