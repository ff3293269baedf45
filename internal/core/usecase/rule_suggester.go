package usecase

import (
	"fmt"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

// MaxSuggestions caps every list returned to the shell.
const MaxSuggestions = 3

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
	PriorityRecent = "Recent"
)

// RuleSuggester is the backstop tier: it cannot fail and returns at least one
// suggestion whenever at least one candidate exists.
type RuleSuggester struct {
	classifier *ContentClassifier
	ranker     *CandidateRanker
}

func NewRuleSuggester(classifier *ContentClassifier, ranker *CandidateRanker) *RuleSuggester {
	return &RuleSuggester{
		classifier: classifier,
		ranker:     ranker,
	}
}

func (s *RuleSuggester) Suggest(text string, candidates []domain.Candidate) []domain.Suggestion {
	suggestions, _ := s.suggest(text, candidates)
	return suggestions
}

func (s *RuleSuggester) suggest(text string, candidates []domain.Candidate) ([]domain.Suggestion, domain.Classification) {
	classification := s.classifier.Classify(text)
	if len(candidates) == 0 {
		return []domain.Suggestion{}, classification
	}

	out := make([]domain.Suggestion, 0, MaxSuggestions)
	seen := make(map[string]struct{}, MaxSuggestions)

	for _, scored := range s.ranker.Rank(classification.Category, text, candidates) {
		if len(out) == MaxSuggestions {
			break
		}
		if _, dup := seen[scored.Candidate.ID]; dup {
			continue
		}
		seen[scored.Candidate.ID] = struct{}{}

		priority := priorityForScore(scored.Score)
		out = append(out, domain.Suggestion{
			Reason:          fmt.Sprintf("%s -> %s", classification.Category, scored.Candidate.ProcessName),
			Candidate:       scored.Candidate,
			ConfidenceLabel: fmt.Sprintf("%s (%.2f)", priority, classification.Confidence),
			Priority:        priority,
		})
	}

	out = backfillRecent(out, seen, candidates, false)
	if len(out) == 0 {
		// Every candidate is minimized and none matched the category.
		out = backfillRecent(out, seen, candidates, true)
	}
	return out, classification
}

func backfillRecent(out []domain.Suggestion, seen map[string]struct{}, candidates []domain.Candidate, includeMinimized bool) []domain.Suggestion {
	for _, candidate := range candidates {
		if len(out) >= MaxSuggestions {
			break
		}
		if candidate.Minimized && !includeMinimized {
			continue
		}
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}
		out = append(out, domain.Suggestion{
			Reason:          fmt.Sprintf("Recent -> %s", candidate.ProcessName),
			Candidate:       candidate,
			ConfidenceLabel: PriorityRecent,
			Priority:        PriorityRecent,
		})
	}
	return out
}

func priorityForScore(score float64) string {
	switch {
	case score >= 0.8:
		return PriorityHigh
	case score >= 0.5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
