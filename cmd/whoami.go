package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docpilot-cli/docpilot/internal/auth"
	"github.com/docpilot-cli/docpilot/internal/format"
)

func newWhoamiCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Validate the session and show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := format.ParseOutput(output)
			if err != nil {
				return err
			}

			app, err := newApp(cmd, nil)
			if err != nil {
				return err
			}

			state, profile, err := app.flow.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if state != auth.Authenticated {
				return fmt.Errorf("not logged in; run 'docpilot login' first")
			}

			if out == format.OutputTable {
				return format.ProfileTable(cmd.OutOrStdout(), profile)
			}
			return format.Encode(cmd.OutOrStdout(), out, profile)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")

	return cmd
}
