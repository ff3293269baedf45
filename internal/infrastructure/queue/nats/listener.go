package nats

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/core/ports"
)

// WatchPublisher forwards watcher results to an EventPublisher. Clipboard
// and status notifications stay local.
type WatchPublisher struct {
	publisher ports.EventPublisher
	timeout   time.Duration
}

func NewWatchPublisher(publisher ports.EventPublisher, timeout time.Duration) *WatchPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &WatchPublisher{publisher: publisher, timeout: timeout}
}

func (w *WatchPublisher) ClipboardChanged(string) {}

func (w *WatchPublisher) StatusChanged(string) {}

func (w *WatchPublisher) SuggestionsReady(event domain.SuggestionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.publisher.PublishSuggestions(ctx, event); err != nil {
		slog.Warn("suggestion_event_publish_failed", "event_id", event.ID, "error", err)
		return
	}
	slog.Debug("suggestion_event_published", "event_id", event.ID, "tier", event.Tier)
}
