package usecase

import (
	"context"
	"testing"
)

func TestGroupCounts(t *testing.T) {
	got := GroupCounts([]string{"chrome.exe", "msedge.exe", "Code.exe", "gnome-terminal-server", "EXCEL.EXE", "spotify", "mystery"})
	want := map[string]int{
		"browsers":  2,
		"editors":   1,
		"terminals": 1,
		"office":    1,
		"media":     1,
		"other":     1,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d groups, got %v", len(want), got)
	}
	for group, n := range want {
		if got[group] != n {
			t.Fatalf("group %s: expected %d, got %d", group, n, got[group])
		}
	}
}

func TestDescribeSystem(t *testing.T) {
	directory := &fakeDirectory{candidates: watcherCandidates()}
	watcher := NewClipboardWatcher(&fakeClipboard{}, directory, newTestArbiter(nil, nil), WatcherOptions{
		ExcludedTitles: []string{"multitask helper"},
	})

	info, err := watcher.DescribeSystem(context.Background())
	if err != nil {
		t.Fatalf("DescribeSystem() error = %v", err)
	}
	if info.Targets != 2 || info.ModelEnabled {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Groups["browsers"] != 1 || info.Groups["editors"] != 1 {
		t.Fatalf("unexpected groups %v", info.Groups)
	}
}

func TestTargetsAppliesExclusions(t *testing.T) {
	directory := &fakeDirectory{candidates: watcherCandidates()}
	watcher := NewClipboardWatcher(&fakeClipboard{}, directory, newTestArbiter(nil, nil), WatcherOptions{
		ExcludedTitles: []string{"multitask helper"},
	})

	got, err := watcher.Targets(context.Background())
	if err != nil {
		t.Fatalf("Targets() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "n" {
		t.Fatalf("unexpected targets %+v", got)
	}
}
