package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/format"
)

func newListCmd() *cobra.Command {
	var (
		statusFilter string
		page         int
		pageSize     int
		output       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Example: `  # First page of everything
  docpilot list

  # Failed documents, as JSON
  docpilot list --status failed -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := api.ParseStatus(statusFilter)
			if err != nil {
				return err
			}
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

			result, err := app.client.ListDocuments(cmd.Context(), status, page, pageSize)
			if err != nil {
				return err
			}

			if out == format.OutputTable {
				return format.DocumentTable(cmd.OutOrStdout(), result)
			}
			return format.Encode(cmd.OutOrStdout(), out, result)
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "all", "Filter by status: all, pending, processing, completed, failed")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", api.DefaultPageSize, "Documents per page")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")

	return cmd
}
