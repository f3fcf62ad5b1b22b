package provider

// ToolCallStyle is a model's preferred tool-call syntax (spec.md §4.5,
// §4.9).
type ToolCallStyle string

const (
	StyleNative ToolCallStyle = "native"
	StyleXML    ToolCallStyle = "xml"
	StyleJSON   ToolCallStyle = "json"
)

// FileModAPI is a model's preferred file-modification tool variant.
type FileModAPI string

const (
	FileModPatch       FileModAPI = "patch"
	FileModFindReplace FileModAPI = "findreplace"
)

// Tweaks holds per-model defaults, resolved at request-assembly time
// and overridable by Settings (spec.md §4.9).
type Tweaks struct {
	ToolCallStyle ToolCallStyle
	FileModAPI    FileModAPI
}

// defaultTweaksByModel is the hand-maintained table of per-model
// defaults. Unknown models fall back to DefaultTweaks.
var defaultTweaksByModel = map[string]Tweaks{
	"claude": {ToolCallStyle: StyleNative, FileModAPI: FileModPatch},
	"gpt":    {ToolCallStyle: StyleNative, FileModAPI: FileModFindReplace},
	"gemini": {ToolCallStyle: StyleNative, FileModAPI: FileModFindReplace},
	"qwen":   {ToolCallStyle: StyleXML, FileModAPI: FileModFindReplace},
}

// DefaultTweaks is used for models with no entry in the table.
var DefaultTweaks = Tweaks{ToolCallStyle: StyleJSON, FileModAPI: FileModFindReplace}

// ResolveTweaks looks up modelFamily's defaults, falling back to
// DefaultTweaks, then applies any non-empty override fields from
// settingsOverride.
func ResolveTweaks(modelFamily string, settingsOverride Tweaks) Tweaks {
	t, ok := defaultTweaksByModel[modelFamily]
	if !ok {
		t = DefaultTweaks
	}
	if settingsOverride.ToolCallStyle != "" {
		t.ToolCallStyle = settingsOverride.ToolCallStyle
	}
	if settingsOverride.FileModAPI != "" {
		t.FileModAPI = settingsOverride.FileModAPI
	}
	return t
}
