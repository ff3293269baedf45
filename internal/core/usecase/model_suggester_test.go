package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (f *fakeCompleter) Query(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(prompt)
}

func (f *fakeCompleter) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func scoreByApp(scores map[string]string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		for app, reply := range scores {
			if strings.HasPrefix(prompt, app+" for ") {
				return reply, nil
			}
		}
		return "", errors.New("unexpected prompt " + prompt)
	}
}

func browserCandidates() []domain.Candidate {
	return []domain.Candidate{
		{ID: "n", Title: "Untitled - Notepad", ProcessName: "notepad.exe"},
		{ID: "c", Title: "GitHub - Google Chrome", ProcessName: "chrome.exe"},
		{ID: "v", Title: "main.go - Code", ProcessName: "Code.exe"},
	}
}

func TestModelSuggestRanksByScore(t *testing.T) {
	completer := &fakeCompleter{reply: scoreByApp(map[string]string{
		"notepad": "2",
		"chrome":  "5",
		"Code":    "3",
	})}
	suggester := NewModelSuggester(completer, NewContentClassifier())

	got, err := suggester.Suggest(context.Background(), "https://github.com/foo", nil, browserCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(got))
	}
	wantIDs := []string{"c", "v", "n"}
	for i, s := range got {
		if s.Candidate.ID != wantIDs[i] {
			t.Fatalf("position %d: expected %s, got %s", i, wantIDs[i], s.Candidate.ID)
		}
	}
	if got[0].Reason != "AI Rank #1" || got[0].ConfidenceLabel != "Score: 1.00" {
		t.Fatalf("unexpected first suggestion %+v", got[0])
	}

	// The URL classifies with high confidence, so no classification query runs.
	for _, prompt := range completer.calls() {
		if strings.HasPrefix(prompt, "Text:") {
			t.Fatalf("expected no classification query, got %q", prompt)
		}
	}
}

func TestModelSuggestAllQueriesFail(t *testing.T) {
	completer := &fakeCompleter{reply: func(string) (string, error) {
		return "", errors.New("backend down")
	}}
	suggester := NewModelSuggester(completer, NewContentClassifier())

	_, err := suggester.Suggest(context.Background(), "https://github.com/foo", nil, browserCandidates())
	if !errors.Is(err, domain.ErrInsufficientEvidence) {
		t.Fatalf("expected insufficient evidence, got %v", err)
	}
}

func TestModelSuggestSingleScoreIsInsufficient(t *testing.T) {
	completer := &fakeCompleter{reply: scoreByApp(map[string]string{
		"notepad": "banana",
		"chrome":  "4",
		"Code":    "",
	})}
	suggester := NewModelSuggester(completer, NewContentClassifier())

	_, err := suggester.Suggest(context.Background(), "https://github.com/foo", nil, browserCandidates())
	if !errors.Is(err, domain.ErrInsufficientEvidence) {
		t.Fatalf("expected insufficient evidence, got %v", err)
	}
}

func TestModelSuggestQueriesAtMostFiveCandidates(t *testing.T) {
	completer := &fakeCompleter{reply: func(string) (string, error) { return "4", nil }}
	suggester := NewModelSuggester(completer, NewContentClassifier())

	candidates := make([]domain.Candidate, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		candidates = append(candidates, domain.Candidate{ID: id, Title: id, ProcessName: "chrome.exe"})
	}

	got, err := suggester.Suggest(context.Background(), "https://github.com/foo", nil, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(completer.calls()); n != MaxScoredCandidates {
		t.Fatalf("expected %d queries, got %d", MaxScoredCandidates, n)
	}
	if len(got) != MaxSuggestions {
		t.Fatalf("expected %d suggestions, got %d", MaxSuggestions, len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].Candidate.ID != id {
			t.Fatalf("position %d: expected stable order %s, got %s", i, id, got[i].Candidate.ID)
		}
	}
}

func TestModelSuggestSkipsDuplicateCandidates(t *testing.T) {
	completer := &fakeCompleter{reply: func(string) (string, error) { return "3", nil }}
	suggester := NewModelSuggester(completer, NewContentClassifier())

	candidates := []domain.Candidate{
		{ID: "a", ProcessName: "chrome.exe"},
		{ID: "a", ProcessName: "chrome.exe"},
		{ID: "b", ProcessName: "firefox.exe"},
	}
	got, err := suggester.Suggest(context.Background(), "https://github.com/foo", nil, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %+v", got)
	}
	if n := len(completer.calls()); n != 2 {
		t.Fatalf("expected 2 queries, got %d", n)
	}
}

func TestModelClassifyAsksBackendForUncertainText(t *testing.T) {
	completer := &fakeCompleter{reply: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Text:") {
			return "<think>looks like code</think> Code", nil
		}
		if !strings.Contains(prompt, " for code ") {
			return "", errors.New("expected code category in " + prompt)
		}
		return "4", nil
	}}
	suggester := NewModelSuggester(completer, NewContentClassifier())

	_, category, err := suggester.suggest(context.Background(), "hello there", browserCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != domain.CategoryCode {
		t.Fatalf("expected CODE, got %s", category)
	}
	first := completer.calls()[0]
	if first != `Text:"hello there".Most likely: code/web/email/file/data/password/text` {
		t.Fatalf("unexpected classification prompt %q", first)
	}
}

func TestModelClassifyFallsBackToRuleCategory(t *testing.T) {
	completer := &fakeCompleter{reply: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Text:") {
			return "hmm", nil
		}
		return "4", nil
	}}
	suggester := NewModelSuggester(completer, NewContentClassifier())

	_, category, err := suggester.suggest(context.Background(), "hello there", browserCandidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != domain.CategoryText {
		t.Fatalf("expected rule fallback TEXT, got %s", category)
	}
}

func TestModelSuggestDisabled(t *testing.T) {
	suggester := NewModelSuggester(nil, NewContentClassifier())
	if suggester.Enabled() {
		t.Fatalf("expected disabled suggester")
	}
	_, err := suggester.Suggest(context.Background(), "x", nil, browserCandidates())
	if !errors.Is(err, domain.ErrBackendDisabled) {
		t.Fatalf("expected backend disabled, got %v", err)
	}
}

func TestModelSuggestNoCandidates(t *testing.T) {
	completer := &fakeCompleter{reply: func(string) (string, error) { return "5", nil }}
	_, err := NewModelSuggester(completer, NewContentClassifier()).Suggest(context.Background(), "x", nil, nil)
	if !errors.Is(err, domain.ErrInsufficientEvidence) {
		t.Fatalf("expected insufficient evidence, got %v", err)
	}
	if n := len(completer.calls()); n != 0 {
		t.Fatalf("expected no queries, got %d", n)
	}
}

func TestBuildScorePrompt(t *testing.T) {
	got := buildScorePrompt("thunderbird.exe", domain.CategoryEmail)
	if got != "thunderb for email (0-5):" {
		t.Fatalf("unexpected prompt %q", got)
	}
}

func TestAppContext(t *testing.T) {
	cases := map[string]string{
		"chrome.exe":    "browser",
		"notepad++.exe": "code editor",
		"notepad.exe":   "text editor",
		"Thunderbird":   "email client",
		"unknown.bin":   "application",
	}
	for process, want := range cases {
		if got := AppContext(process); got != want {
			t.Fatalf("AppContext(%q): expected %q, got %q", process, want, got)
		}
	}
}

func TestModelClassifyCanceledAbortsModelPath(t *testing.T) {
	completer := &fakeCompleter{reply: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Text:") {
			return "", context.Canceled
		}
		return "5", nil
	}}
	suggester := NewModelSuggester(completer, NewContentClassifier())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suggester.Suggest(ctx, "hello there", nil, browserCandidates())
	if !errors.Is(err, domain.ErrInsufficientEvidence) {
		t.Fatalf("expected insufficient evidence, got %v", err)
	}
	calls := completer.calls()
	if len(calls) != 1 || !strings.HasPrefix(calls[0], "Text:") {
		t.Fatalf("expected only the classification query, got %q", calls)
	}
}
