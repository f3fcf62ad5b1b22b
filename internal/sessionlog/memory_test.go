package sessionlog

import "testing"

func TestAppendMemoryMonotonicSequence(t *testing.T) {
	s := New(t.TempDir())

	e1, err := s.AppendMemory("first fact", 1000)
	if err != nil {
		t.Fatalf("AppendMemory: %v", err)
	}
	if e1.Seq != 1 {
		t.Fatalf("first entry Seq = %d, want 1", e1.Seq)
	}

	e2, err := s.AppendMemory("second fact", 1001)
	if err != nil {
		t.Fatalf("AppendMemory: %v", err)
	}
	if e2.Seq != 2 {
		t.Fatalf("second entry Seq = %d, want 2", e2.Seq)
	}

	log, err := s.LoadMemory()
	if err != nil {
		t.Fatalf("LoadMemory: %v", err)
	}
	if len(log.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(log.Entries))
	}
	if log.Entries[0].Seq >= log.Entries[1].Seq {
		t.Fatalf("sequence numbers not strictly increasing: %d, %d", log.Entries[0].Seq, log.Entries[1].Seq)
	}
}

func TestCompactPreservesNextSeq(t *testing.T) {
	s := New(t.TempDir())
	s.AppendMemory("a", 1)
	s.AppendMemory("b", 2)
	s.AppendMemory("c", 3)

	if err := s.Compact([]MemoryEntry{{Seq: 3, Created: 3, Text: "summary of a+b+c"}}); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	e, err := s.AppendMemory("d", 4)
	if err != nil {
		t.Fatalf("AppendMemory after compact: %v", err)
	}
	if e.Seq != 4 {
		t.Fatalf("Seq after compact = %d, want 4 (NextSeq must survive compaction)", e.Seq)
	}

	log, err := s.LoadMemory()
	if err != nil {
		t.Fatalf("LoadMemory: %v", err)
	}
	if len(log.Entries) != 2 {
		t.Fatalf("expected 2 entries after compact+append, got %d", len(log.Entries))
	}
}

func TestShouldCompact(t *testing.T) {
	log := &MemoryLog{Entries: make([]MemoryEntry, 5)}
	if log.ShouldCompact(0) {
		t.Fatal("threshold <= 0 should never trigger compaction")
	}
	if log.ShouldCompact(10) {
		t.Fatal("5 entries should not exceed a threshold of 10")
	}
	if !log.ShouldCompact(4) {
		t.Fatal("5 entries should exceed a threshold of 4")
	}
}
