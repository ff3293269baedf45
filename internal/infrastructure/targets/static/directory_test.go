package static

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

const sampleTargets = `targets:
  - id: chrome-1
    title: GitHub - Google Chrome
    process_name: chrome.exe
  - id: notepad-1
    title: Untitled - Notepad
    process_name: notepad.exe
    minimized: true
`

func TestParse(t *testing.T) {
	got, err := Parse([]byte(sampleTargets))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(got))
	}
	want := domain.Candidate{ID: "notepad-1", Title: "Untitled - Notepad", ProcessName: "notepad.exe", Minimized: true}
	if got[1] != want {
		t.Fatalf("expected %+v, got %+v", want, got[1])
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"missing id":   "targets:\n  - title: x\n",
		"duplicate id": "targets:\n  - id: a\n  - id: a\n",
		"not yaml":     "targets: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
}

func TestActivate(t *testing.T) {
	candidates, _ := Parse([]byte(sampleTargets))
	directory := New(candidates)

	ok, err := directory.Activate(context.Background(), "notepad-1")
	if err != nil || !ok {
		t.Fatalf("expected activation, got ok=%v err=%v", ok, err)
	}
	if directory.Active() != "notepad-1" {
		t.Fatalf("expected active notepad-1, got %q", directory.Active())
	}
	listed, _ := directory.ListCandidates(context.Background())
	if listed[1].Minimized {
		t.Fatalf("expected activated target to be restored")
	}

	ok, err = directory.Activate(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("expected false for unknown id, got ok=%v err=%v", ok, err)
	}
	if directory.Active() != "notepad-1" {
		t.Fatalf("unknown id must not change active target")
	}
}

func TestListReturnsCopy(t *testing.T) {
	directory := New([]domain.Candidate{{ID: "a", Title: "A"}})
	listed, _ := directory.ListCandidates(context.Background())
	listed[0].Title = "mutated"
	again, _ := directory.ListCandidates(context.Background())
	if again[0].Title != "A" {
		t.Fatalf("expected directory state to be isolated from callers")
	}
}

func TestWatchReloadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(sampleTargets), 0o600); err != nil {
		t.Fatalf("write targets: %v", err)
	}
	directory, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- directory.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	updated := sampleTargets + "  - id: term-1\n    title: bash - Terminal\n    process_name: terminal\n"
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		// Rewrite until the watcher is registered and picks up a change.
		if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
			t.Fatalf("rewrite targets: %v", err)
		}
		listed, _ := directory.ListCandidates(context.Background())
		if len(listed) == 3 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("expected reload to pick up the third target")
}
