package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/docpilot-cli/docpilot/internal/export"
)

func newDownloadCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download a document's original file",
		Long: `Downloads the original content of a document, saved under its
original filename. The request is authenticated with the session's
bearer token.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}

			app, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			// The original filename comes from the document record so
			// the saved file matches what was uploaded.
			doc, err := app.client.GetDocument(cmd.Context(), id)
			if err != nil {
				return err
			}

			downloader := export.NewDownloader(app.client)
			path, err := downloader.DownloadDocument(cmd.Context(), id, doc.OriginalFilename, dir)
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
