package extraction

import (
	"encoding/json"
	"encoding/xml"
	"strings"

	"github.com/google/uuid"
	"github.com/xonecas/symbcore/internal/convo"
)

// xmlFunctionCalls is the <function_calls> root element models using
// the XML tool-call style emit: one or more <invoke name="...">
// elements, each with <parameter name="...">value</parameter> children.
type xmlFunctionCalls struct {
	XMLName xml.Name     `xml:"function_calls"`
	Invokes []xmlInvoke  `xml:"invoke"`
}

type xmlInvoke struct {
	Name       string          `xml:"name,attr"`
	Parameters []xmlParameter  `xml:"parameter"`
}

type xmlParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// extractXML scans text for <function_calls>...</function_calls>
// blocks, parses each with encoding/xml, and returns the resulting
// tool calls, the text with every parsed block region removed, and any
// soft per-block diagnostics.
func extractXML(text string) ([]convo.ToolCall, string, []Diagnostic) {
	const open = "<function_calls>"
	const close = "</function_calls>"

	var calls []convo.ToolCall
	var diags []Diagnostic
	var out strings.Builder

	rest := text
	for {
		start := strings.Index(rest, open)
		if start == -1 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], close)
		if end == -1 {
			// Unterminated block: leave it as display text rather than
			// guessing at a boundary.
			out.WriteString(rest)
			break
		}
		end += start + len(close)

		out.WriteString(rest[:start])
		block := rest[start:end]
		rest = rest[end:]

		parsed, err := parseXMLBlock(block)
		if err != nil {
			diags = append(diags, Diagnostic{Channel: convo.SourceXML, Message: err.Error()})
			continue
		}
		calls = append(calls, parsed...)
	}
	return calls, out.String(), diags
}

func parseXMLBlock(block string) ([]convo.ToolCall, error) {
	var fc xmlFunctionCalls
	if err := xml.Unmarshal([]byte(block), &fc); err != nil {
		return nil, err
	}
	var calls []convo.ToolCall
	for _, inv := range fc.Invokes {
		args := map[string]string{}
		for _, p := range inv.Parameters {
			args[p.Name] = strings.TrimSpace(p.Value)
		}
		argJSON, err := json.Marshal(args)
		if err != nil {
			continue
		}
		calls = append(calls, convo.ToolCall{
			ID:           uuid.NewString(),
			Name:         inv.Name,
			RawArguments: argJSON,
			Source:       convo.SourceXML,
		})
	}
	return calls, nil
}
