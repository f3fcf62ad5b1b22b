package convo

import "encoding/json"

// ValidatedKind discriminates the ValidatedToolCall sum type.
type ValidatedKind string

const (
	VNoOp            ValidatedKind = "noop"
	VPromptUser      ValidatedKind = "prompt_user"
	VPushAgent       ValidatedKind = "push_agent"
	VPopAgent        ValidatedKind = "pop_agent"
	VFileModification ValidatedKind = "file_modification"
	VRunCommand      ValidatedKind = "run_command"
	VMcpCall         ValidatedKind = "mcp_call"
	VSetTrackedFiles ValidatedKind = "set_tracked_files"
	VTaskListOp      ValidatedKind = "task_list_op"
	VSearchTypes     ValidatedKind = "search_types"
	VGetTypeDocs     ValidatedKind = "get_type_docs"
	VError           ValidatedKind = "error"
)

// FileModOp discriminates the kind of file edit a FileModification
// ValidatedToolCall carries.
type FileModOp string

const (
	FileOpReplace FileModOp = "replace"
	FileOpInsert  FileModOp = "insert"
	FileOpDelete  FileModOp = "delete"
	FileOpCreate  FileModOp = "create"
)

// ValidatedToolCall is the output of a successful Executor.Process: the
// tool call's arguments have already been schema-validated and coerced
// into a concrete, typed variant the turn engine's security gate and
// executor can act on without re-parsing JSON.
type ValidatedToolCall struct {
	Kind ValidatedKind
	CallID string

	// VNoOp
	ResultJSON json.RawMessage

	// VPromptUser
	Question string

	// VPushAgent
	SpawnAgent string
	SpawnTask  string

	// VPopAgent
	PopSuccess bool
	PopResult  string

	// VFileModification
	FilePath string
	FileOp   FileModOp
	FileOld  string
	FileNew  string

	// VRunCommand
	Command    string
	Cwd        string
	TimeoutSec int

	// VMcpCall
	McpServer string
	McpTool   string
	McpArgs   json.RawMessage

	// VSetTrackedFiles
	TrackedPaths []string

	// VTaskListOp
	TaskOp string

	// VSearchTypes / VGetTypeDocs
	SearchQuery string
	TypeName    string

	// VError
	ErrorMessage string
}

// Category classifies a ValidatedToolCall for the security gate.
type Category string

const (
	CategoryExecution     Category = "execution"
	CategoryModification  Category = "modification"
	CategoryMeta          Category = "meta"
	CategoryAlwaysAllowed Category = "always_allowed"
)

// CategoryOf returns the security-gate category for a validated call's
// kind, per spec: RunCommand and McpCall require "all"; FileModification
// requires "auto" or "all"; everything else is always allowed.
func CategoryOf(kind ValidatedKind) Category {
	switch kind {
	case VRunCommand, VMcpCall:
		return CategoryExecution
	case VFileModification:
		return CategoryModification
	default:
		return CategoryAlwaysAllowed
	}
}

// Continuation is a per-tool hint telling the turn engine whether to
// immediately request another assistant message after this tool's
// result is appended.
type Continuation string

const (
	ContinueLoop Continuation = "continue"
	ContinueStop Continuation = "stop"
)

// OutputKind discriminates the ToolOutput sum type returned by a Handle's
// Execute.
type OutputKind string

const (
	OutResult    OutputKind = "result"
	OutPushAgent OutputKind = "push_agent"
	OutPopAgent  OutputKind = "pop_agent"
	OutPromptUser OutputKind = "prompt_user"
)

// ToolOutput is what Handle.Execute produces.
type ToolOutput struct {
	Kind OutputKind

	// OutResult
	Content      string
	IsError      bool
	Continuation Continuation
	UIResult     string

	// OutPushAgent
	SpawnAgent string
	SpawnTask  string

	// OutPopAgent
	PopSuccess bool
	PopResult  string

	// OutPromptUser
	Question string
}
