package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docpilot-cli/docpilot/internal/sync"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a document for processing",
		Long: `Uploads a file to the platform. The server answers immediately with
the new document in status pending; metadata extraction happens
asynchronously. Use 'docpilot list' or 'docpilot watch' to follow it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			uploader := sync.NewUploader(app.client, nil, nil, nil)
			doc, err := uploader.Upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %q (id %d, status %s)\n",
				doc.OriginalFilename, doc.ID, doc.Status)
			return nil
		},
	}
}
