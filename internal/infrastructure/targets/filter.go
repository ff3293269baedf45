package targets

import (
	"sort"
	"strings"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

const minTitleRunes = 3

var (
	// Window titles containing any of these belong to system or UI chrome.
	skipTitleWords = []string{
		"notification", "tooltip", "popup", "menu", "context",
		"gdi+", "dde server", "broadcast", "xaml", "hardware", "power", "paste options",
		"listener", "monitor", "systray", "system", "background", "service",
		"trackmonitors", "endsession", "resourcenotify", "activity center",
		"task host window", "input experience", "handwriting canvas", "clicktodo",
	}

	excludedTitles = map[string]struct{}{
		"program manager": {}, "desktop": {}, "default ime": {}, "msctfime ui": {},
		"hidden window": {}, "gdi+ window": {}, "directuihwnd": {}, "shell_traywnd": {},
		"button": {}, "scrollbar": {}, "combobox": {}, "edit": {}, "static": {}, "window": {},
	}

	excludedProcesses = map[string]struct{}{
		"dwm": {}, "winlogon": {}, "csrss": {}, "smss": {}, "wininit": {}, "services": {},
		"lsass": {}, "svchost": {}, "taskhost": {}, "dllhost": {}, "conhost": {}, "clicktodo": {},
		"gnome-shell": {}, "plasmashell": {}, "xfdesktop": {}, "xfce4-panel": {},
	}

	knownApplications = map[string]struct{}{
		"chrome": {}, "chromium": {}, "firefox": {}, "edge": {}, "msedge": {}, "safari": {}, "opera": {}, "brave": {},
		"code": {}, "notepad": {}, "notepad++": {}, "sublime_text": {}, "pycharm64": {}, "idea64": {},
		"devenv": {}, "atom": {}, "gedit": {}, "kate": {},
		"cmd": {}, "powershell": {}, "windowsterminal": {}, "wt": {}, "gnome-terminal-": {}, "konsole": {}, "alacritty": {},
		"excel": {}, "winword": {}, "powerpnt": {}, "outlook": {}, "msaccess": {}, "mspub": {}, "soffice.bin": {},
		"winmail": {}, "hxmail": {}, "hxoutlook": {}, "outlookforwindows": {}, "olk": {},
		"thunderbird": {}, "mailspring": {}, "spark": {},
		"vlc": {}, "spotify": {}, "discord": {}, "teams": {}, "zoom": {},
		"photoshop": {}, "illustrator": {}, "figma": {}, "steam": {}, "calculator": {}, "mspaint": {},
		"nautilus": {}, "dolphin": {}, "thunar": {},
	}

	documentTitleHints = []string{
		".txt", ".doc", ".pdf", ".jpg", ".png", ".mp4", ".mp3",
		"untitled", "document", "sheet", "presentation",
	}
)

// ApplicationWindows keeps windows a user would plausibly switch to and
// orders them by process name.
func ApplicationWindows(windows []domain.Candidate) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(windows))
	for _, w := range windows {
		if isApplicationWindow(w) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].ProcessName) < strings.ToLower(out[j].ProcessName)
	})
	return out
}

func isApplicationWindow(w domain.Candidate) bool {
	title := strings.TrimSpace(w.Title)
	if len([]rune(title)) < minTitleRunes {
		return false
	}
	lowerTitle := strings.ToLower(title)
	if _, excluded := excludedTitles[lowerTitle]; excluded {
		return false
	}
	for _, word := range skipTitleWords {
		if strings.Contains(lowerTitle, word) {
			return false
		}
	}

	process := processKey(w.ProcessName)
	if _, excluded := excludedProcesses[process]; excluded {
		return false
	}
	if _, known := knownApplications[process]; known {
		return true
	}
	// A title that says more than the process name is usually a document window.
	if len(title) > len(process)+5 {
		return true
	}
	for _, hint := range documentTitleHints {
		if strings.Contains(lowerTitle, hint) {
			return true
		}
	}
	return false
}

func processKey(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".exe")
}
