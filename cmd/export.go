package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/export"
)

func newExportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export FORMAT",
		Short: "Export the document collection",
		Long: `Exports every document with its extracted metadata.

json and csv are produced by the platform and saved as-is. parquet is
materialized locally from the JSON export, for analysis tooling that
reads columnar data.`,
		Example: `  docpilot export csv
  docpilot export parquet --dir /tmp`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"json", "csv", "parquet"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			downloader := export.NewDownloader(app.client)

			var path string
			switch args[0] {
			case "json":
				path, err = downloader.ExportCollection(cmd.Context(), api.ExportJSON, dir)
			case "csv":
				path, err = downloader.ExportCollection(cmd.Context(), api.ExportCSV, dir)
			case "parquet":
				path, err = downloader.MaterializeParquet(cmd.Context(), dir)
			default:
				return fmt.Errorf("unknown export format %q (expected json, csv, or parquet)", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to save into")

	return cmd
}
