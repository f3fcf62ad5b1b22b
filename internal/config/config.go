// Package config handles Settings loading from TOML files, with
// environment variable overrides and backup-on-parse-failure recovery
// (spec.md §5).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/symbcore/internal/provider"
	"github.com/xonecas/symbcore/internal/security"
)

// Settings is the root configuration structure: spec.md §3's "relevant
// subset" (security mode, file-modification-API preference,
// tool-call-style override, per-agent model override, retry/backoff
// parameters, autonomy level, auto-context byte cap, memory config).
type Settings struct {
	SecurityMode security.Mode `toml:"security_mode"`
	Autonomy     string        `toml:"autonomy"`

	DefaultModel string            `toml:"default_model"`
	ModelByAgent map[string]string `toml:"model_by_agent"`

	Tweaks ProviderTweaks `toml:"tweaks"`

	Retry RetryConfig `toml:"retry"`

	AutoContextByteCap int `toml:"auto_context_byte_cap"`

	Memory MemoryConfig `toml:"memory"`

	MCP   MCPConfig             `toml:"mcp"`
	Cache CacheConfig           `toml:"cache"`
}

// ProviderTweaks is Settings' override layer over provider.DefaultTweaks
// (spec.md §4.9: "Settings can override").
type ProviderTweaks struct {
	ToolCallStyle string `toml:"tool_call_style"`
	FileModAPI    string `toml:"file_mod_api"`
}

// Resolve converts the TOML-facing override strings into a
// provider.Tweaks value, leaving fields empty (so ResolveTweaks leaves
// the per-model default alone) where unset.
func (t ProviderTweaks) Resolve() provider.Tweaks {
	return provider.Tweaks{
		ToolCallStyle: provider.ToolCallStyle(t.ToolCallStyle),
		FileModAPI:    provider.FileModAPI(t.FileModAPI),
	}
}

// RetryConfig mirrors provider.BackoffPolicy in TOML-friendly form.
type RetryConfig struct {
	MaxAttempts   int `toml:"max_attempts"`
	BaseDelayMs   int `toml:"base_delay_ms"`
	MaxDelayMs    int `toml:"max_delay_ms"`
}

// Resolve falls back to provider.DefaultBackoffPolicy for any unset field.
func (r RetryConfig) Resolve() provider.BackoffPolicy {
	p := provider.DefaultBackoffPolicy()
	if r.MaxAttempts > 0 {
		p.MaxAttempts = r.MaxAttempts
	}
	if r.BaseDelayMs > 0 {
		p.BaseDelay = time.Duration(r.BaseDelayMs) * time.Millisecond
	}
	if r.MaxDelayMs > 0 {
		p.MaxDelay = time.Duration(r.MaxDelayMs) * time.Millisecond
	}
	return p
}

// MemoryConfig controls the JSON memory log (spec.md §6).
type MemoryConfig struct {
	MaxEntries       int `toml:"max_entries"`
	CompactThreshold int `toml:"compact_threshold"`
}

// MCPConfig holds MCP proxy settings, keyed by server name so Settings
// can configure more than one upstream (internal/tools.McpCallExecutor
// addresses servers by these same names).
type MCPConfig struct {
	Servers map[string]MCPServerConfig `toml:"servers"`
}

type MCPServerConfig struct {
	Upstream string `toml:"upstream"`
}

// CacheConfig holds fetch/search cache settings (internal/store.Cache).
type CacheConfig struct {
	TTLHours int `toml:"ttl_hours"`
}

// CacheTTLOrDefault returns the configured TTL or 24 hours if unset.
func (c CacheConfig) CacheTTLOrDefault() int {
	if c.TTLHours <= 0 {
		return 24
	}
	return c.TTLHours
}

const defaultAutoContextByteCap = 32 * 1024

// AutoContextByteCapOrDefault returns the configured cap or 32KiB if unset.
func (s Settings) AutoContextByteCapOrDefault() int {
	if s.AutoContextByteCap <= 0 {
		return defaultAutoContextByteCap
	}
	return s.AutoContextByteCap
}

func defaultSettings() *Settings {
	return &Settings{
		SecurityMode: security.ModeAuto,
		Autonomy:     "auto",
		ModelByAgent: make(map[string]string),
		Retry:        RetryConfig{},
	}
}

// Load reads Settings from a TOML file, applying environment variable
// overrides. If path exists but fails to parse, the broken file is
// renamed to "<path>.backup" and a fresh default Settings (with the
// file re-written) is returned instead of failing the whole process —
// spec.md §5: "on parse failure, the broken file is renamed to
// .backup and a default is written."
func Load(path string) (*Settings, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s := defaultSettings()
		if err := Save(path, s); err != nil {
			return nil, fmt.Errorf("write default settings: %w", err)
		}
		applyEnvOverrides(s)
		return s, s.Validate()
	}

	s := defaultSettings()
	if _, err := toml.DecodeFile(path, s); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("settings file failed to parse, backing up and resetting to default")
		if renameErr := os.Rename(path, path+".backup"); renameErr != nil {
			return nil, fmt.Errorf("failed to parse config (%v) and failed to back up broken file: %w", err, renameErr)
		}
		s = defaultSettings()
		if err := Save(path, s); err != nil {
			return nil, fmt.Errorf("write default settings after backup: %w", err)
		}
	}

	applyEnvOverrides(s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes Settings to path as TOML.
func Save(path string, s *Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(s)
}

// Validate returns an error if the configuration is invalid.
func (s *Settings) Validate() error {
	var errs []error

	if _, ok := security.ParseMode(string(s.SecurityMode)); !ok {
		errs = append(errs, fmt.Errorf("security_mode=%q is invalid", s.SecurityMode))
	}
	switch s.Autonomy {
	case "manual", "auto", "full":
	default:
		errs = append(errs, fmt.Errorf("autonomy=%q must be one of manual, auto, full", s.Autonomy))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to Settings.
func applyEnvOverrides(s *Settings) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"SYMBCORE_SECURITY_MODE", func(v string) {
			if v != "" {
				s.SecurityMode = security.Mode(v)
			}
		}},
		{"SYMBCORE_DEFAULT_MODEL", func(v string) {
			if v != "" {
				s.DefaultModel = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to the symbcore data directory (~/.config/symbcore).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "symbcore"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
