package ports

import (
	"context"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

// TextCompleter is the single query call into the text-generation backend.
type TextCompleter interface {
	Query(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// TargetDirectory enumerates switchable targets and brings one to the foreground.
type TargetDirectory interface {
	ListCandidates(ctx context.Context) ([]domain.Candidate, error)
	Activate(ctx context.Context, id string) (bool, error)
}

// ClipboardReader returns the current clipboard text.
type ClipboardReader interface {
	Read(ctx context.Context) (string, error)
}

// EventPublisher fans suggestion events out to other processes.
type EventPublisher interface {
	PublishSuggestions(ctx context.Context, event domain.SuggestionEvent) error
}
