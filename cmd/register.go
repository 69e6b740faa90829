package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docpilot-cli/docpilot/internal/api"
)

func newRegisterCmd() *cobra.Command {
	var (
		email      string
		fullName   string
		tenantName string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Long: `Registers a new account on the platform and immediately logs in
with the same credentials.`,
		Example: `  docpilot register --email alice@example.com --full-name "Alice Doe" --tenant acme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, nil)
			if err != nil {
				return err
			}

			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			profile, err := app.flow.Register(cmd.Context(), api.RegisterRequest{
				Email:      email,
				Password:   password,
				FullName:   fullName,
				TenantName: tenantName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", profile.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name")
	cmd.Flags().StringVar(&tenantName, "tenant", "", "Organization name (required)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("tenant")

	return cmd
}
