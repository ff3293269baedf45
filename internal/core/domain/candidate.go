package domain

import "time"

// Candidate is a switchable target owned by the target directory.
type Candidate struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	ProcessName string `json:"process_name" yaml:"process_name"`
	Minimized   bool   `json:"minimized" yaml:"minimized"`
}

type ScoredCandidate struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
}

// Suggestion is one ranked recommendation. Index 0 of a list is the top pick.
type Suggestion struct {
	Reason          string    `json:"reason"`
	Candidate       Candidate `json:"candidate"`
	ConfidenceLabel string    `json:"confidence_label"`
	Priority        string    `json:"priority,omitempty"`
}

type Tier string

const (
	TierModel Tier = "model"
	TierRule  Tier = "rule"
	TierNone  Tier = "none"
)

// Decision carries the suggestions together with the tier that produced them.
type Decision struct {
	Tier        Tier         `json:"tier"`
	Category    Category     `json:"category,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

// SuggestionEvent is delivered to watch listeners after a clipboard change.
type SuggestionEvent struct {
	ID             string       `json:"id"`
	ContentPreview string       `json:"content_preview"`
	Tier           Tier         `json:"tier"`
	Category       Category     `json:"category,omitempty"`
	Suggestions    []Suggestion `json:"suggestions"`
	CreatedAt      time.Time    `json:"created_at"`
}
