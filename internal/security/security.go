// Package security implements the three-mode security gate (spec.md
// §4.6): RunCommand and McpCall require "all"; FileModification
// requires "auto" or "all"; every other category is always allowed.
//
// Grounded on the teacher's internal/shell command-name blocklisting,
// generalized per spec.md into a coarse category gate layered above
// it — the teacher's finer-grained command/argument blocklist
// (internal/shell/block.go) is kept as an additional in-shell safety
// net exercised by the run_command tool itself (see internal/tools),
// not replaced by this gate.
package security

import "github.com/xonecas/symbcore/internal/convo"

// Mode is one of the three coarse trust levels.
type Mode string

const (
	ModeReadOnly Mode = "readonly"
	ModeAuto     Mode = "auto"
	ModeAll      Mode = "all"
)

// ParseMode parses a mode string, as accepted by the /security slash
// command.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeReadOnly, ModeAuto, ModeAll:
		return Mode(s), true
	default:
		return "", false
	}
}

// Denial describes why a batch of calls was rejected.
type Denial struct {
	CallID string
	Reason string
}

// Gate checks a batch of validated tool calls against mode. If any
// call is denied, the whole batch is rejected (spec.md §4.6: "If the
// batch fails, none of the calls execute") and Gate returns one Denial
// per denied call; the caller is responsible for injecting a synthetic
// error tool-result for every call in the batch, not just the denied
// ones.
func Gate(mode Mode, batch []convo.ValidatedToolCall) []Denial {
	var denials []Denial
	for _, call := range batch {
		if reason, denied := checkOne(mode, call); denied {
			denials = append(denials, Denial{CallID: call.CallID, Reason: reason})
		}
	}
	return denials
}

// displayName renders a Mode the way denial messages cite it (spec.md
// §8 S3: "Security mode Auto does not allow command execution.").
func displayName(mode Mode) string {
	switch mode {
	case ModeReadOnly:
		return "Readonly"
	case ModeAuto:
		return "Auto"
	case ModeAll:
		return "All"
	default:
		return string(mode)
	}
}

func checkOne(mode Mode, call convo.ValidatedToolCall) (string, bool) {
	category := convo.CategoryOf(call.Kind)
	switch category {
	case convo.CategoryExecution:
		if mode != ModeAll {
			return "Security mode " + displayName(mode) + " does not allow command execution. `/security set all` to allow", true
		}
	case convo.CategoryModification:
		if mode != ModeAuto && mode != ModeAll {
			return "Security mode " + displayName(mode) + " does not allow file modification. `/security set auto` or `/security set all` to allow", true
		}
	}
	return "", false
}
