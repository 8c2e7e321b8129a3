package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndLast(t *testing.T) {
	s := openStore(t)

	entries := []Entry{
		{RunID: "aaa", Command: "fmt:check", Profile: "host", ExitCode: 0,
			Duration: 120 * time.Millisecond, StartedAt: time.Now().Add(-time.Minute)},
		{RunID: "bbb", Command: "test:unit", Profile: "container",
			Fingerprint: "deadbeef", ExitCode: 1,
			Duration: 3 * time.Second, StartedAt: time.Now()},
	}
	for _, e := range entries {
		if err := s.Record(e); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	got, err := s.Last(5)
	if err != nil {
		t.Fatalf("Last error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Last returned %d entries, want 2", len(got))
	}
	if got[0].RunID != "bbb" {
		t.Errorf("newest entry = %q, want bbb", got[0].RunID)
	}
	if got[0].ExitCode != 1 || got[0].Fingerprint != "deadbeef" {
		t.Errorf("entry round-trip lost fields: %+v", got[0])
	}
	if got[0].Duration != 3*time.Second {
		t.Errorf("duration = %v, want 3s", got[0].Duration)
	}
	if got[1].Command != "fmt:check" {
		t.Errorf("older entry command = %q, want fmt:check", got[1].Command)
	}
}

func TestLastLimits(t *testing.T) {
	s := openStore(t)

	for i := 0; i < 8; i++ {
		e := Entry{RunID: string(rune('a' + i)), Command: "build", Profile: "host",
			StartedAt: time.Now()}
		if err := s.Record(e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Last(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Errorf("Last(5) returned %d entries", len(got))
	}
}

func TestLastEmpty(t *testing.T) {
	s := openStore(t)

	got, err := s.Last(5)
	if err != nil {
		t.Fatalf("Last error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Last on empty ledger returned %d entries", len(got))
	}
}

func TestOpenIsReentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Record(Entry{RunID: "x", Command: "lint:static", Profile: "host",
		StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s2.Close()

	got, err := s2.Last(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Command != "lint:static" {
		t.Errorf("reopened ledger lost data: %+v", got)
	}
}
