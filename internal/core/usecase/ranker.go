package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

type affinity struct {
	high     []string
	medium   []string
	keywords []string
}

// affinityTables is read-only after init and shared by every ranking pass.
var affinityTables = map[domain.Category]affinity{
	domain.CategoryCode: {
		high:     []string{"code", "pycharm", "idea", "sublime", "atom", "vim"},
		medium:   []string{"notepad++", "notepad", "wordpad"},
		keywords: []string{"editor", "ide", "development"},
	},
	domain.CategoryWeb: {
		high:     []string{"chrome", "firefox", "edge", "safari", "opera", "brave"},
		medium:   []string{"iexplore"},
		keywords: []string{"browser", "web"},
	},
	domain.CategoryEmail: {
		high:     []string{"outlook", "thunderbird", "mailspring"},
		medium:   []string{"chrome", "firefox", "edge"},
		keywords: []string{"mail", "email"},
	},
	domain.CategoryFile: {
		high:     []string{"explorer", "nautilus", "finder"},
		medium:   []string{"cmd", "powershell", "terminal"},
		keywords: []string{"file", "folder", "directory"},
	},
	domain.CategoryPassword: {
		high:     []string{"chrome", "firefox", "edge", "1password", "bitwarden"},
		medium:   []string{"notepad", "keepass"},
		keywords: []string{"password", "login", "auth"},
	},
	domain.CategoryData: {
		high:     []string{"excel", "calc", "tableau", "powerbi"},
		medium:   []string{"notepad", "word", "chrome"},
		keywords: []string{"data", "spreadsheet", "csv", "table"},
	},
	domain.CategoryText: {
		high:     []string{"notepad", "wordpad", "word", "writer"},
		medium:   []string{"chrome", "firefox", "edge"},
		keywords: []string{"text", "document", "note"},
	},
}

var (
	urlDomainPattern = regexp.MustCompile(`^(?:[a-z][a-z0-9+.-]*://)?(?:www\.)?([^/\s]+)`)

	fileTitleTerms = []string{"file", "folder", "explorer"}
	codeTitleTerms = []string{"code", "editor", "ide"}
	executableExts = []string{".exe", ".app", ".bin"}
)

// CandidateRanker scores candidates against a category using the static
// affinity tables plus a content-derived bonus.
type CandidateRanker struct{}

func NewCandidateRanker() *CandidateRanker {
	return &CandidateRanker{}
}

// Rank drops zero scores and keeps encounter order among equal scores.
func (r *CandidateRanker) Rank(category domain.Category, text string, candidates []domain.Candidate) []domain.ScoredCandidate {
	table, ok := affinityTables[category]
	if !ok {
		return nil
	}

	lowerText := strings.ToLower(strings.TrimSpace(text))
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		score := scoreCandidate(category, table, lowerText, candidate)
		if score > 0 {
			scored = append(scored, domain.ScoredCandidate{Candidate: candidate, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func scoreCandidate(category domain.Category, table affinity, lowerText string, candidate domain.Candidate) float64 {
	process := normalizeProcessName(candidate.ProcessName)
	title := strings.ToLower(candidate.Title)

	score := 0.0
	switch {
	case containsAny(process, table.high):
		score += 0.8
	case containsAny(process, table.medium):
		score += 0.5
	}

	for _, keyword := range table.keywords {
		if strings.Contains(title, keyword) {
			score += 0.2
		}
	}

	score += contentBonus(category, lowerText, title)
	return round2(min(1.0, score))
}

func contentBonus(category domain.Category, lowerText, title string) float64 {
	switch category {
	case domain.CategoryWeb:
		match := urlDomainPattern.FindStringSubmatch(lowerText)
		if len(match) == 2 && match[1] != "" && strings.Contains(title, match[1]) {
			return 0.3
		}
	case domain.CategoryFile:
		if containsAny(title, fileTitleTerms) {
			return 0.2
		}
	case domain.CategoryCode:
		if containsAny(title, codeTitleTerms) {
			return 0.2
		}
	}
	return 0
}

// normalizeProcessName lowercases and strips executable extensions.
func normalizeProcessName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, ext := range executableExts {
		if strings.HasSuffix(lower, ext) {
			return strings.TrimSuffix(lower, ext)
		}
	}
	return lower
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
