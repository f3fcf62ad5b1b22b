package tools

import (
	"encoding/json"

	"github.com/xonecas/symbcore/internal/registry"
)

// makeRequest builds a registry.Request for a tool executor test,
// bypassing the registry's own JSON-Schema coercion (exercised
// separately in internal/registry).
func makeRequest(callID string, args json.RawMessage) registry.Request {
	return registry.Request{ToolCallID: callID, Arguments: args}
}
