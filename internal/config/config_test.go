package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Autonomy != "auto" {
		t.Fatalf("Autonomy = %q, want %q", s.Autonomy, "auto")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	s := defaultSettings()
	s.DefaultModel = "claude-test"
	s.Autonomy = "manual"
	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DefaultModel != "claude-test" {
		t.Fatalf("DefaultModel = %q, want %q", loaded.DefaultModel, "claude-test")
	}
	if loaded.Autonomy != "manual" {
		t.Fatalf("Autonomy = %q, want %q", loaded.Autonomy, "manual")
	}
}

func TestLoadBacksUpOnParseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("this is not valid toml [[["), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Autonomy != "auto" {
		t.Fatalf("expected default settings after parse failure, got Autonomy=%q", s.Autonomy)
	}

	if _, err := os.Stat(path + ".backup"); err != nil {
		t.Fatalf("expected broken file to be backed up: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected a fresh default file to be written: %v", err)
	}
}

func TestValidateRejectsBadAutonomy(t *testing.T) {
	s := defaultSettings()
	s.Autonomy = "yolo"
	if err := s.Validate(); err == nil {
		t.Fatal("expected Validate to reject an unknown autonomy level")
	}
}

func TestValidateRejectsBadSecurityMode(t *testing.T) {
	s := defaultSettings()
	s.SecurityMode = "not-a-mode"
	if err := s.Validate(); err == nil {
		t.Fatal("expected Validate to reject an unknown security mode")
	}
}

func TestAutoContextByteCapOrDefault(t *testing.T) {
	s := Settings{}
	if got := s.AutoContextByteCapOrDefault(); got != defaultAutoContextByteCap {
		t.Fatalf("AutoContextByteCapOrDefault() = %d, want %d", got, defaultAutoContextByteCap)
	}
	s.AutoContextByteCap = 4096
	if got := s.AutoContextByteCapOrDefault(); got != 4096 {
		t.Fatalf("AutoContextByteCapOrDefault() = %d, want 4096", got)
	}
}

func TestRetryConfigResolveFallsBackToDefaults(t *testing.T) {
	r := RetryConfig{}
	p := r.Resolve()
	if p.MaxAttempts <= 0 {
		t.Fatalf("expected a positive default MaxAttempts, got %d", p.MaxAttempts)
	}

	r.MaxAttempts = 7
	p = r.Resolve()
	if p.MaxAttempts != 7 {
		t.Fatalf("MaxAttempts = %d, want 7", p.MaxAttempts)
	}
}
