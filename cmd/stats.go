package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docpilot-cli/docpilot/internal/format"
	"github.com/docpilot-cli/docpilot/internal/sync"
)

func newStatsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-status document counts",
		Long: `Sweeps the entire collection and reports how many documents are in
each processing state. The list endpoint exposes no aggregate counts,
so this fetches every page at the maximum page size.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := format.ParseOutput(output)
			if err != nil {
				return err
			}

			app, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			stats, err := sync.SweepStats(cmd.Context(), app.client)
			if err != nil {
				return err
			}

			if out == format.OutputTable {
				return format.StatsTable(cmd.OutOrStdout(), stats)
			}
			return format.Encode(cmd.OutOrStdout(), out, stats)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")

	return cmd
}
