package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

func (r *runner) suggestCommand() *cobra.Command {
	var (
		asJSON   bool
		activate int
	)
	cmd := &cobra.Command{
		Use:   "suggest [text]",
		Short: "Rank targets for the given text or the current clipboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var content string
			if len(args) == 1 {
				content = args[0]
			} else {
				text, err := r.app.Clipboard.Read(ctx)
				if err != nil {
					return fmt.Errorf("read clipboard: %w", err)
				}
				content = text
			}
			if strings.TrimSpace(content) == "" {
				return fmt.Errorf("nothing to suggest for: clipboard is empty")
			}

			event, err := r.app.Watcher.SuggestFor(ctx, content)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(event); err != nil {
					return err
				}
			} else {
				printEvent(out, event)
			}

			if activate <= 0 {
				return nil
			}
			if activate > len(event.Suggestions) {
				return fmt.Errorf("no suggestion #%d", activate)
			}
			target := event.Suggestions[activate-1].Candidate
			ok, err := r.app.Watcher.Switch(ctx, target)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("could not activate %s", target.ProcessName)
			}
			fmt.Fprintf(out, "%s %s\n", color.GreenString("Switched to"), target.ProcessName)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the suggestion event as JSON")
	cmd.Flags().IntVarP(&activate, "activate", "a", 0, "activate the Nth suggestion")
	return cmd
}

func printEvent(w io.Writer, event domain.SuggestionEvent) {
	header := color.New(color.Bold)
	header.Fprintf(w, "%q", event.ContentPreview)
	fmt.Fprintf(w, " [%s", tierLabel(event.Tier))
	if event.Category != "" {
		fmt.Fprintf(w, ", %s", event.Category)
	}
	fmt.Fprintln(w, "]")

	if len(event.Suggestions) == 0 {
		fmt.Fprintln(w, color.YellowString("  no suggestions"))
		return
	}
	for i, s := range event.Suggestions {
		fmt.Fprintf(w, "  %d. %s  %s  %s\n",
			i+1,
			color.CyanString(s.Candidate.ProcessName),
			truncate(s.Candidate.Title, 40),
			color.New(color.Faint).Sprint(s.Reason+" | "+s.ConfidenceLabel),
		)
	}
}

func tierLabel(tier domain.Tier) string {
	switch tier {
	case domain.TierModel:
		return color.MagentaString("AI")
	case domain.TierRule:
		return color.BlueString("rules")
	default:
		return "none"
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
