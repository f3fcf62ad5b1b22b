package security

import (
	"testing"

	"github.com/xonecas/symbcore/internal/convo"
)

func TestRunCommandRequiresAll(t *testing.T) {
	batch := []convo.ValidatedToolCall{{Kind: convo.VRunCommand, CallID: "1"}}
	if d := Gate(ModeAuto, batch); len(d) != 1 {
		t.Fatalf("expected denial under auto mode, got %v", d)
	}
	if d := Gate(ModeAll, batch); len(d) != 0 {
		t.Fatalf("expected no denial under all mode, got %v", d)
	}
}

// TestDenialMessageMatchesScenarioS3 pins the literal denial text spec.md
// §8 scenario S3 requires: under auto mode, a command-execution call is
// rejected with "Security mode Auto does not allow command execution.
// `/security set all` to allow" — capitalized mode token included.
func TestDenialMessageMatchesScenarioS3(t *testing.T) {
	batch := []convo.ValidatedToolCall{{Kind: convo.VRunCommand, CallID: "1"}}
	d := Gate(ModeAuto, batch)
	if len(d) != 1 {
		t.Fatalf("expected exactly one denial, got %v", d)
	}
	want := "Security mode Auto does not allow command execution. `/security set all` to allow"
	if d[0].Reason != want {
		t.Fatalf("Reason = %q, want %q", d[0].Reason, want)
	}
}

func TestFileModificationRequiresAutoOrAll(t *testing.T) {
	batch := []convo.ValidatedToolCall{{Kind: convo.VFileModification, CallID: "1"}}
	if d := Gate(ModeReadOnly, batch); len(d) != 1 {
		t.Fatalf("expected denial under readonly mode, got %v", d)
	}
	if d := Gate(ModeAuto, batch); len(d) != 0 {
		t.Fatalf("expected no denial under auto mode, got %v", d)
	}
	if d := Gate(ModeAll, batch); len(d) != 0 {
		t.Fatalf("expected no denial under all mode, got %v", d)
	}
}

func TestAlwaysAllowedNeverDenied(t *testing.T) {
	batch := []convo.ValidatedToolCall{{Kind: convo.VNoOp, CallID: "1"}, {Kind: convo.VSetTrackedFiles, CallID: "2"}}
	if d := Gate(ModeReadOnly, batch); len(d) != 0 {
		t.Fatalf("expected no denial for always-allowed categories, got %v", d)
	}
}
