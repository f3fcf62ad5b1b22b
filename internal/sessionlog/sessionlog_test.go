package sessionlog

import (
	"testing"

	"github.com/xonecas/symbcore/internal/convo"
)

func TestNewSessionAndLoad(t *testing.T) {
	s := New(t.TempDir())

	id, err := s.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	sess, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.ID != id {
		t.Fatalf("ID = %q, want %q", sess.ID, id)
	}
	if len(sess.Messages) != 0 {
		t.Fatalf("expected empty session, got %d messages", len(sess.Messages))
	}
}

func TestAppendMessages(t *testing.T) {
	s := New(t.TempDir())
	id, err := s.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	msg := convo.Message{Role: convo.RoleUser, Content: []convo.Block{{Type: convo.BlockText, Text: "hi"}}}
	if err := s.AppendMessages(id, msg); err != nil {
		t.Fatalf("AppendMessages: %v", err)
	}

	sess, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sess.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sess.Messages))
	}
	if sess.Messages[0].Text() != "hi" {
		t.Fatalf("Text() = %q, want %q", sess.Messages[0].Text(), "hi")
	}

	// Append again, accumulates rather than overwrites.
	if err := s.AppendMessages(id, msg); err != nil {
		t.Fatalf("AppendMessages (2nd): %v", err)
	}
	sess, err = s.Load(id)
	if err != nil {
		t.Fatalf("Load (2nd): %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sess.Messages))
	}
}

func TestList(t *testing.T) {
	s := New(t.TempDir())

	if summaries, err := s.List(); err != nil || len(summaries) != 0 {
		t.Fatalf("expected empty list before any session, got %v, err=%v", summaries, err)
	}

	id1, _ := s.NewSession()
	id2, _ := s.NewSession()

	summaries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(summaries))
	}
	seen := map[string]bool{}
	for _, sum := range summaries {
		seen[sum.ID] = true
	}
	if !seen[id1] || !seen[id2] {
		t.Fatalf("List missing a session: %v", summaries)
	}
}

func TestLoadMissingSession(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("does-not-exist"); err == nil {
		t.Fatal("expected error loading a missing session")
	}
}
