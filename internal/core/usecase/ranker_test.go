package usecase

import (
	"testing"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

func TestRankWebCandidates(t *testing.T) {
	candidates := []domain.Candidate{
		{ID: "1", Title: "Untitled - Notepad", ProcessName: "notepad.exe"},
		{ID: "2", Title: "Internet Explorer", ProcessName: "iexplore.exe"},
		{ID: "3", Title: "Mozilla Firefox", ProcessName: "firefox"},
		{ID: "4", Title: "github.com/foo - Google Chrome", ProcessName: "chrome.exe"},
	}

	got := NewCandidateRanker().Rank(domain.CategoryWeb, "https://github.com/foo", candidates)
	if len(got) != 3 {
		t.Fatalf("expected 3 scored candidates, got %d", len(got))
	}

	wantIDs := []string{"4", "3", "2"}
	wantScores := []float64{1.0, 0.8, 0.5}
	for i := range got {
		if got[i].Candidate.ID != wantIDs[i] {
			t.Fatalf("position %d: expected id %s, got %s", i, wantIDs[i], got[i].Candidate.ID)
		}
		if got[i].Score != wantScores[i] {
			t.Fatalf("position %d: expected score %.2f, got %.2f", i, wantScores[i], got[i].Score)
		}
	}
}

func TestRankKeepsEncounterOrderForTies(t *testing.T) {
	candidates := []domain.Candidate{
		{ID: "a", Title: "Inbox", ProcessName: "chrome.exe"},
		{ID: "b", Title: "Docs", ProcessName: "chrome.exe"},
		{ID: "c", Title: "News", ProcessName: "firefox.exe"},
	}
	got := NewCandidateRanker().Rank(domain.CategoryWeb, "www.example.com", candidates)
	if len(got) != 3 {
		t.Fatalf("expected 3 scored candidates, got %d", len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].Candidate.ID != id {
			t.Fatalf("position %d: expected id %s, got %s", i, id, got[i].Candidate.ID)
		}
	}
}

func TestRankFileCategoryCapsScore(t *testing.T) {
	candidates := []domain.Candidate{
		{ID: "t", Title: "bash", ProcessName: "gnome-terminal-server"},
		{ID: "e", Title: "Documents - File Explorer", ProcessName: "explorer.exe"},
	}
	got := NewCandidateRanker().Rank(domain.CategoryFile, "/home/ann/report.pdf", candidates)
	if len(got) != 2 {
		t.Fatalf("expected 2 scored candidates, got %d", len(got))
	}
	if got[0].Candidate.ID != "e" || got[0].Score != 1.0 {
		t.Fatalf("expected explorer capped at 1.0 first, got %+v", got[0])
	}
	if got[1].Candidate.ID != "t" || got[1].Score != 0.5 {
		t.Fatalf("expected terminal at 0.5 second, got %+v", got[1])
	}
}

func TestRankDropsZeroScores(t *testing.T) {
	candidates := []domain.Candidate{{ID: "1", Title: "Calculator", ProcessName: "calculator.exe"}}
	got := NewCandidateRanker().Rank(domain.CategoryEmail, "Dear Sir,\nthanks\nSincerely", candidates)
	if len(got) != 0 {
		t.Fatalf("expected no scored candidates, got %+v", got)
	}
}

func TestRankUnknownCategory(t *testing.T) {
	candidates := []domain.Candidate{{ID: "1", Title: "x", ProcessName: "chrome.exe"}}
	if got := NewCandidateRanker().Rank(domain.Category("AUDIO"), "x", candidates); len(got) != 0 {
		t.Fatalf("expected empty ranking for unknown category, got %+v", got)
	}
}

func TestNormalizeProcessName(t *testing.T) {
	cases := map[string]string{
		"Code.exe":    "code",
		"Finder.app":  "finder",
		"runner.bin":  "runner",
		" firefox ":   "firefox",
		"archive.zip": "archive.zip",
	}
	for in, want := range cases {
		if got := normalizeProcessName(in); got != want {
			t.Fatalf("normalizeProcessName(%q): expected %q, got %q", in, want, got)
		}
	}
}
