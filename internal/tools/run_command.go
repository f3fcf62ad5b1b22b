package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xonecas/symbcore/internal/convo"
	"github.com/xonecas/symbcore/internal/delta"
	"github.com/xonecas/symbcore/internal/event"
	"github.com/xonecas/symbcore/internal/registry"
	"github.com/xonecas/symbcore/internal/shell"
)

type runCommandArgs struct {
	Command     string `json:"command"`
	Description string `json:"description"`
	Timeout     int    `json:"timeout,omitempty"`
}

const (
	runCommandDefaultTimeoutSec = 60
	runCommandMaxTimeoutSec     = 600
	runCommandMaxOutputChars    = 30000
)

// RunCommandExecutor implements "run_command": runs a command in an
// in-process POSIX shell, grounded on the teacher's Shell tool
// (internal/mcptools/shell.go). The in-shell blocklist (shell.Shell's
// BlockFuncs) is a second, independent layer beneath the security
// gate's "all" requirement for this category — the gate decides
// whether the agent may run commands at all, the blocklist still
// vetoes specific dangerous invocations even once that's granted.
type RunCommandExecutor struct {
	Shell *shell.Shell
	Delta *delta.Tracker // optional
}

func NewRunCommandExecutor(sh *shell.Shell, dt *delta.Tracker) *RunCommandExecutor {
	return &RunCommandExecutor{Shell: sh, Delta: dt}
}

func (e *RunCommandExecutor) Name() string { return "run_command" }

func (e *RunCommandExecutor) Description() string {
	return `Execute a shell command in an in-process POSIX interpreter.
Commands run inside the project working directory. Shell state (cwd, env vars) persists across calls within the same session.
Dangerous commands (network, sudo, package managers, system modification) are blocked.
Use this for: running builds, tests, linters, git operations, file manipulation, and inspecting project state.`
}

func (e *RunCommandExecutor) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"command":     {"type": "string", "description": "The shell command to execute"},
			"description": {"type": "string", "description": "Brief description of what this command does (5-10 words)"},
			"timeout":     {"type": "integer", "description": "Timeout in seconds (default 60, max 600)"}
		},
		"required": ["command", "description"]
	}`)
}

func (e *RunCommandExecutor) Category() convo.Category { return convo.CategoryExecution }

func (e *RunCommandExecutor) Process(ctx context.Context, req registry.Request) (registry.Handle, error) {
	var args runCommandArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, err
	}
	return &runCommandHandle{callID: req.ToolCallID, args: args, sh: e.Shell, delta: e.Delta}, nil
}

type runCommandHandle struct {
	callID string
	args   runCommandArgs
	sh     *shell.Shell
	delta  *delta.Tracker
}

func (h *runCommandHandle) Validated() convo.ValidatedToolCall {
	timeout := h.args.Timeout
	if timeout <= 0 {
		timeout = runCommandDefaultTimeoutSec
	}
	if timeout > runCommandMaxTimeoutSec {
		timeout = runCommandMaxTimeoutSec
	}
	return convo.ValidatedToolCall{
		Kind: convo.VRunCommand, CallID: h.callID,
		Command: h.args.Command, Cwd: h.sh.Dir(), TimeoutSec: timeout,
	}
}

func (h *runCommandHandle) ToolRequest() event.ToolRequestEvent {
	args, _ := json.Marshal(map[string]string{"command": h.args.Command, "description": h.args.Description})
	return event.ToolRequestEvent{ToolCallID: h.callID, ToolName: "run_command", ToolType: "run_command", Args: args}
}

func (h *runCommandHandle) Execute(ctx context.Context) (convo.ToolOutput, error) {
	if h.args.Command == "" {
		return errResult("command cannot be empty"), nil
	}

	timeout := h.args.Timeout
	if timeout <= 0 {
		timeout = runCommandDefaultTimeoutSec
	}
	if timeout > runCommandMaxTimeoutSec {
		timeout = runCommandMaxTimeoutSec
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	shellCwd := h.sh.Dir()
	trackDeltas := h.delta != nil && h.delta.TurnID() > 0
	var preSnap map[string]delta.FileSnapshot
	if trackDeltas {
		preSnap = delta.SnapshotDir(shellCwd)
	}

	var stdout, stderr bytes.Buffer
	execErr := h.sh.ExecStream(ctx, h.args.Command, &stdout, &stderr)

	if trackDeltas {
		postSnap := delta.SnapshotDir(shellCwd)
		delta.RecordDeltas(h.delta, shellCwd, preSnap, postSnap)
	}

	exitCode := shell.ExitCode(execErr)
	output := formatCommandOutput(stdout.String(), stderr.String(), exitCode, ctx.Err())
	if output == "" {
		output = "(no output)\n"
	}
	if len([]rune(output)) > runCommandMaxOutputChars {
		output = truncateOutputMiddle(output, runCommandMaxOutputChars)
	}

	return convo.ToolOutput{
		Kind: convo.OutResult, Content: output, IsError: exitCode != 0, Continuation: convo.ContinueLoop,
	}, nil
}

func formatCommandOutput(stdout, stderr string, exitCode int, ctxErr error) string {
	var b strings.Builder
	if stdout != "" {
		b.WriteString(stdout)
		if !strings.HasSuffix(stdout, "\n") {
			b.WriteByte('\n')
		}
	}
	if stderr != "" {
		b.WriteString(stderr)
		if !strings.HasSuffix(stderr, "\n") {
			b.WriteByte('\n')
		}
	}
	if ctxErr != nil {
		fmt.Fprintf(&b, "[timed out]\n")
	}
	if exitCode != 0 {
		fmt.Fprintf(&b, "[exit code: %d]\n", exitCode)
	}
	return b.String()
}

func truncateOutputMiddle(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	half := maxChars / 2
	return string(runes[:half]) + "\n\n... [truncated] ...\n\n" + string(runes[len(runes)-half:])
}
