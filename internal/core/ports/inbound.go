package ports

import (
	"context"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

// TargetSuggester is the inbound contract used by the shell once per clipboard change.
type TargetSuggester interface {
	Decide(ctx context.Context, content string, current *domain.Candidate, candidates []domain.Candidate) domain.Decision
	Suggest(ctx context.Context, content string, current *domain.Candidate, candidates []domain.Candidate) []domain.Suggestion
	ModelEnabled() bool
}

// WatchListener receives shell notifications from the clipboard watcher.
type WatchListener interface {
	ClipboardChanged(content string)
	SuggestionsReady(event domain.SuggestionEvent)
	StatusChanged(status string)
}
