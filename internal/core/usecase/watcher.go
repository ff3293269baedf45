package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/core/ports"
)

const (
	StatusMonitoring    = "Monitoring clipboard..."
	StatusStopped       = "Monitoring stopped"
	StatusAIAnalyzing   = "AI analyzing..."
	StatusRuleAnalyzing = "Using rule-based suggestions..."
	StatusReady         = "Ready"

	// MaxContentPreview bounds clipboard text copied into logs and events.
	MaxContentPreview = 50
)

type WatcherOptions struct {
	PollInterval   time.Duration
	ErrorBackoff   time.Duration
	ExcludedTitles []string
}

// ClipboardWatcher polls the clipboard and runs at most one suggestion pass
// at a time. Changes arriving during a pass are coalesced: only the latest
// one runs next, and results for superseded content are dropped.
type ClipboardWatcher struct {
	clipboard ports.ClipboardReader
	targets   ports.TargetDirectory
	suggester ports.TargetSuggester
	opts      WatcherOptions

	classifier *ContentClassifier

	mu        sync.Mutex
	listeners []ports.WatchListener
	latest    string

	pending chan string
}

func NewClipboardWatcher(
	clipboard ports.ClipboardReader,
	targets ports.TargetDirectory,
	suggester ports.TargetSuggester,
	opts WatcherOptions,
) *ClipboardWatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = time.Second
	}
	return &ClipboardWatcher{
		clipboard: clipboard,
		targets:   targets,
		suggester: suggester,
		opts:      opts,
		pending:   make(chan string, 1),

		classifier: NewContentClassifier(),
	}
}

func (w *ClipboardWatcher) AddListener(listener ports.WatchListener) {
	if listener == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, listener)
}

// Run blocks until ctx is done.
func (w *ClipboardWatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processLoop(ctx)
	}()

	w.emitStatus(StatusMonitoring)
	slog.Info("clipboard_monitoring_started", "poll_interval_ms", w.opts.PollInterval.Milliseconds())

	last := ""
	for {
		current, err := w.clipboard.Read(ctx)
		wait := w.opts.PollInterval
		if err != nil {
			slog.Warn("clipboard_read_failed", "error", err)
			wait = w.opts.ErrorBackoff
		} else if current != last && strings.TrimSpace(current) != "" {
			last = current
			w.handleChange(current)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			wg.Wait()
			w.emitStatus(StatusStopped)
			slog.Info("clipboard_monitoring_stopped")
			return nil
		case <-timer.C:
		}
	}
}

func (w *ClipboardWatcher) handleChange(content string) {
	w.mu.Lock()
	w.latest = content
	w.mu.Unlock()

	slog.Info("clipboard_changed", "preview", w.contentPreview(content))
	w.forEachListener(func(l ports.WatchListener) { l.ClipboardChanged(content) })

	// Latest wins: replace whatever is still waiting in the slot.
	select {
	case <-w.pending:
	default:
	}
	w.pending <- content
}

func (w *ClipboardWatcher) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case content := <-w.pending:
			event, err := w.SuggestFor(ctx, content)
			if err != nil {
				slog.Warn("suggestion_pass_failed", "error", err)
				continue
			}
			if w.isStale(content) {
				slog.Info("suggestion_pass_stale", "preview", w.contentPreview(content))
				continue
			}
			w.forEachListener(func(l ports.WatchListener) { l.SuggestionsReady(event) })
		}
	}
}

// SuggestFor runs one arbitration against the current target directory.
func (w *ClipboardWatcher) SuggestFor(ctx context.Context, content string) (domain.SuggestionEvent, error) {
	candidates, err := w.targets.ListCandidates(ctx)
	if err != nil {
		return domain.SuggestionEvent{}, fmt.Errorf("list candidates: %w", err)
	}
	candidates = ExcludeTitles(candidates, w.opts.ExcludedTitles)

	if w.suggester.ModelEnabled() {
		w.emitStatus(StatusAIAnalyzing)
	} else {
		w.emitStatus(StatusRuleAnalyzing)
	}

	decision := w.suggester.Decide(ctx, content, nil, candidates)
	if decision.Tier == domain.TierRule && w.suggester.ModelEnabled() {
		w.emitStatus(StatusRuleAnalyzing)
	}

	if n := len(decision.Suggestions); n > 0 {
		w.emitStatus(fmt.Sprintf("%s - %d suggestions", StatusReady, n))
	} else {
		w.emitStatus(StatusReady + " - No suggestions")
	}

	return domain.SuggestionEvent{
		ID:             uuid.NewString(),
		ContentPreview: w.contentPreview(content),
		Tier:           decision.Tier,
		Category:       decision.Category,
		Suggestions:    decision.Suggestions,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Switch activates a suggested target.
func (w *ClipboardWatcher) Switch(ctx context.Context, candidate domain.Candidate) (bool, error) {
	ok, err := w.targets.Activate(ctx, candidate.ID)
	if err != nil {
		return false, fmt.Errorf("activate target: %w", err)
	}
	if ok {
		slog.Info("target_switched", "process", candidate.ProcessName, "title", previewText(candidate.Title, 30))
	} else {
		slog.Warn("target_switch_failed", "process", candidate.ProcessName)
	}
	return ok, nil
}

func (w *ClipboardWatcher) isStale(content string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest != content
}

func (w *ClipboardWatcher) emitStatus(status string) {
	w.forEachListener(func(l ports.WatchListener) { l.StatusChanged(status) })
}

func (w *ClipboardWatcher) forEachListener(fn func(ports.WatchListener)) {
	w.mu.Lock()
	listeners := make([]ports.WatchListener, len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	for _, l := range listeners {
		fn(l)
	}
}

// ExcludeTitles drops candidates whose title contains any excluded substring.
func ExcludeTitles(candidates []domain.Candidate, excluded []string) []domain.Candidate {
	if len(excluded) == 0 {
		return candidates
	}
	out := make([]domain.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		title := strings.ToLower(candidate.Title)
		skip := false
		for _, ex := range excluded {
			ex = strings.ToLower(strings.TrimSpace(ex))
			if ex != "" && strings.Contains(title, ex) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, candidate)
		}
	}
	return out
}

// contentPreview is the only form of clipboard text that reaches logs and
// events. Password-like content is reduced to its length.
func (w *ClipboardWatcher) contentPreview(content string) string {
	if w.classifier.Classify(content).Category == domain.CategoryPassword {
		return fmt.Sprintf("[password, %d chars]", utf8.RuneCountInString(strings.TrimSpace(content)))
	}
	return previewText(content, MaxContentPreview)
}
