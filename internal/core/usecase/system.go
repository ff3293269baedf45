package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

type appGroup struct {
	name    string
	markers []string
}

// Checked in order; a process lands in the first matching group.
var appGroups = []appGroup{
	{"browsers", []string{"chrome", "firefox", "edge", "safari", "opera", "brave"}},
	{"editors", []string{"code", "notepad", "sublime", "atom", "vim", "emacs", "pycharm", "idea"}},
	{"terminals", []string{"cmd", "powershell", "terminal", "bash", "wt"}},
	{"office", []string{"word", "excel", "powerpoint", "outlook", "onenote"}},
	{"media", []string{"vlc", "spotify", "discord", "teams", "zoom"}},
}

const otherGroup = "other"

// SystemInfo summarizes what the helper currently sees.
type SystemInfo struct {
	Targets      int            `json:"targets"`
	Groups       map[string]int `json:"groups"`
	ModelEnabled bool           `json:"model_enabled"`
}

// GroupCounts buckets candidates into application groups. Every group is
// present in the result, including empty ones.
func GroupCounts(processNames []string) map[string]int {
	counts := make(map[string]int, len(appGroups)+1)
	for _, g := range appGroups {
		counts[g.name] = 0
	}
	counts[otherGroup] = 0

	for _, name := range processNames {
		counts[appGroupFor(name)]++
	}
	return counts
}

func appGroupFor(processName string) string {
	lower := strings.ToLower(processName)
	for _, g := range appGroups {
		if containsAny(lower, g.markers) {
			return g.name
		}
	}
	return otherGroup
}

// Targets lists the current candidates without excluded windows.
func (w *ClipboardWatcher) Targets(ctx context.Context) ([]domain.Candidate, error) {
	candidates, err := w.targets.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return ExcludeTitles(candidates, w.opts.ExcludedTitles), nil
}

// DescribeSystem lists the current targets and summarizes them.
func (w *ClipboardWatcher) DescribeSystem(ctx context.Context) (SystemInfo, error) {
	candidates, err := w.Targets(ctx)
	if err != nil {
		return SystemInfo{}, err
	}
	return Summarize(candidates, w.suggester.ModelEnabled()), nil
}

func Summarize(candidates []domain.Candidate, modelEnabled bool) SystemInfo {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.ProcessName)
	}
	return SystemInfo{
		Targets:      len(candidates),
		Groups:       GroupCounts(names),
		ModelEnabled: modelEnabled,
	}
}
