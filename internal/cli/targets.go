package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kirillkom/multitask-helper/internal/core/usecase"
)

func (r *runner) targetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the windows suggestions can point at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := r.app.Watcher.Targets(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"ID", "Process", "Title", "Minimized"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, t := range targets {
				table.Append([]string{t.ID, t.ProcessName, truncate(t.Title, 50), strconv.FormatBool(t.Minimized)})
			}
			table.Render()

			info := usecase.Summarize(targets, r.app.Arbiter.ModelEnabled())
			fmt.Fprintf(out, "\n%d targets (%s), model tier %s\n",
				info.Targets, formatGroups(info.Groups), onOff(info.ModelEnabled))
			return nil
		},
	}
}

func formatGroups(groups map[string]int) string {
	names := make([]string, 0, len(groups))
	for name, n := range groups {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, groups[name]))
	}
	return strings.Join(parts, ", ")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
