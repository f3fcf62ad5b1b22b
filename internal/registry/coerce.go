package registry

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Coerce adapts loosely-typed model output (string "3" where the
// schema wants a number, a JSON-array-shaped string where the schema
// wants an array, etc.) to the declared schema before validating, per
// spec.md §4.1. Coercion walks the tool's raw schema document (plain
// decoded JSON, not the compiled representation) so it only depends on
// the JSON Schema keywords themselves ("type", "properties", "items"),
// then validates the coerced value with the compiled schema and
// returns the re-marshaled, schema-conformant JSON.
func Coerce(schemaDoc any, compiled *jsonschema.Schema, raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("not valid JSON: %w", err)
	}

	coerced := coerceValue(schemaDoc, v)

	if err := compiled.Validate(coerced); err != nil {
		return nil, err
	}

	out, err := json.Marshal(coerced)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// coerceValue walks v, attempting string->number, string->bool, and
// string-containing-JSON-array/object->array/object coercions at every
// level against the matching JSON Schema sub-document. It never
// errors; a value it cannot coerce is passed through unchanged and
// left for schema validation to reject.
func coerceValue(schemaDoc any, v any) any {
	schema, _ := schemaDoc.(map[string]any)
	types := schemaTypeNames(schema)

	if s, ok := v.(string); ok {
		if wants(types, "number") || wants(types, "integer") {
			var n float64
			if _, err := fmt.Sscanf(s, "%g", &n); err == nil {
				return n
			}
		}
		if wants(types, "boolean") {
			switch s {
			case "true":
				return true
			case "false":
				return false
			}
		}
		if wants(types, "array") || wants(types, "object") {
			var parsed any
			if err := json.Unmarshal([]byte(s), &parsed); err == nil {
				return parsed
			}
		}
		return s
	}

	if m, ok := v.(map[string]any); ok {
		props, _ := schema["properties"].(map[string]any)
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = coerceValue(props[k], val)
		}
		return out
	}

	if arr, ok := v.([]any); ok {
		items := schema["items"]
		out := make([]any, len(arr))
		for i, val := range arr {
			out[i] = coerceValue(items, val)
		}
		return out
	}

	return v
}

func schemaTypeNames(schema map[string]any) []string {
	if schema == nil {
		return nil
	}
	switch t := schema["type"].(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func wants(types []string, t string) bool {
	if len(types) == 0 {
		return true // no declared type: permissive
	}
	for _, got := range types {
		if got == t {
			return true
		}
	}
	return false
}
