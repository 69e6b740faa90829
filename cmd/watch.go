package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/auth"
	"github.com/docpilot-cli/docpilot/internal/sync"
	"github.com/docpilot-cli/docpilot/internal/watchui"
)

func newWatchCmd() *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view of the document collection",
		Long: `Opens a terminal UI that polls the platform while it is active:
the document list refreshes every 3 seconds and the aggregate counts
every 5, so status transitions appear as the backend processes
uploads. Timers stop when the view closes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := api.ParseStatus(statusFilter)
			if err != nil {
				return err
			}

			// The 401 teardown signal reaches the UI through this
			// channel; buffered so the signal never blocks a request
			// goroutine.
			expired := make(chan struct{}, 1)
			app, err := newApp(cmd, func() {
				select {
				case expired <- struct{}{}:
				default:
				}
			})
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

			// Log lines would tear the TUI; drop them unless debug
			// logging was explicitly requested elsewhere.
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			updates := make(chan struct{}, 1)
			notify := func() {
				select {
				case updates <- struct{}{}:
				default:
				}
			}

			collection := sync.NewCollection(app.client, nil)
			poller := sync.NewPoller(collection, nil, notify)
			defer poller.Stop()

			uploader := sync.NewUploader(app.client, nil, func(ctx context.Context) {
				// Refresh the page the poller currently serves so the
				// new document appears without waiting for a tick.
				collection.RefreshPage(ctx, poller.Query(), true)
			}, notify)

			query := sync.Query{Status: status, Page: 1, PageSize: api.DefaultPageSize}
			model := watchui.New(ctx, collection, uploader, poller, profile, query, updates, expired)
			program := tea.NewProgram(model, tea.WithAltScreen())

			final, err := program.Run()
			if err != nil {
				return fmt.Errorf("watch UI failed: %w", err)
			}
			if m, ok := final.(watchui.Model); ok && m.SessionExpired() {
				return fmt.Errorf("session expired; run 'docpilot login' to sign in again")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "all", "Initial filter: all, pending, processing, completed, failed")

	return cmd
}
