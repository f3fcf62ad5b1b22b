package extraction

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/xonecas/symbcore/internal/convo"
)

// toolUseEnvelope is the {"tool_use": {"name":..., "arguments":...}}
// shape spec.md §4.5 names for the JSON channel.
type toolUseEnvelope struct {
	ToolUse *struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"tool_use"`
}

// extractJSON scans text for the marker "\"tool_use\"" and, at each
// occurrence, walks back to the '{' enclosing it and brace-matches
// forward to the end of that JSON object, then decodes it with
// encoding/json. Malformed objects are left as display text with a soft
// diagnostic; a marker with no enclosing object is left as display text.
func extractJSON(text string) ([]convo.ToolCall, string, []Diagnostic) {
	const marker = `"tool_use"`

	var calls []convo.ToolCall
	var diags []Diagnostic
	var out strings.Builder

	rest := text
	for {
		markerIdx := strings.Index(rest, marker)
		if markerIdx == -1 {
			out.WriteString(rest)
			break
		}
		// Walk backward from the marker to the nearest unmatched '{'.
		objStart := findEnclosingBraceStart(rest, markerIdx)
		if objStart == -1 {
			out.WriteString(rest[:markerIdx+len(marker)])
			rest = rest[markerIdx+len(marker):]
			continue
		}
		objEnd := findMatchingBraceEnd(rest, objStart)
		if objEnd == -1 {
			out.WriteString(rest[:markerIdx+len(marker)])
			rest = rest[markerIdx+len(marker):]
			continue
		}

		out.WriteString(rest[:objStart])
		block := rest[objStart : objEnd+1]
		rest = rest[objEnd+1:]

		var env toolUseEnvelope
		if err := json.Unmarshal([]byte(block), &env); err != nil || env.ToolUse == nil {
			diags = append(diags, Diagnostic{Channel: convo.SourceJSON, Message: "malformed tool_use JSON block"})
			out.WriteString(block)
			continue
		}
		calls = append(calls, convo.ToolCall{
			ID:           uuid.NewString(),
			Name:         env.ToolUse.Name,
			RawArguments: env.ToolUse.Arguments,
			Source:       convo.SourceJSON,
		})
	}
	return calls, out.String(), diags
}

// findEnclosingBraceStart walks backward from idx to find the '{' that
// opens the object containing position idx, accounting for nested
// braces.
func findEnclosingBraceStart(s string, idx int) int {
	depth := 0
	for i := idx; i >= 0; i-- {
		switch s[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// findMatchingBraceEnd walks forward from the '{' at start to find its
// matching '}', respecting string literals so braces inside JSON
// string values don't confuse the count.
func findMatchingBraceEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
