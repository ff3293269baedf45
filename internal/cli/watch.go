package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

// consoleListener prints watcher events as they arrive.
type consoleListener struct {
	mu  sync.Mutex
	out io.Writer
}

func (l *consoleListener) ClipboardChanged(string) {}

func (l *consoleListener) StatusChanged(status string) {
	slog.Debug("watcher_status", "status", status)
}

func (l *consoleListener) SuggestionsReady(event domain.SuggestionEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	printEvent(l.out, event)
}

func (r *runner) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the clipboard and print suggestions for every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			r.app.Watcher.AddListener(&consoleListener{out: out})
			fmt.Fprintln(out, color.GreenString("Watching clipboard, Ctrl-C to stop"))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return r.app.Watcher.Run(ctx) })
			if r.app.ReloadTargets != nil {
				g.Go(func() error { return r.app.ReloadTargets(ctx) })
			}
			return g.Wait()
		},
	}
}

func (r *runner) followCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "follow",
		Short: "Print suggestion events published by other helper instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if r.app.Publisher == nil {
				return errNoPublisher
			}
			listener := &consoleListener{out: cmd.OutOrStdout()}
			return r.app.Publisher.SubscribeSuggestions(cmd.Context(), func(_ context.Context, event domain.SuggestionEvent) error {
				listener.SuggestionsReady(event)
				return nil
			})
		},
	}
}
