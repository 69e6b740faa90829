package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/auth"
	"github.com/docpilot-cli/docpilot/internal/config"
	"github.com/docpilot-cli/docpilot/internal/session"
)

// app wires together the components every command needs.
type app struct {
	cfg    *config.Config
	store  *session.Store
	client *api.Client
	flow   *auth.Flow
}

// newApp resolves configuration, opens the session store, and builds
// the API client. onUnauthorized may be nil; commands that need the
// 401 teardown signal (watch) pass their own.
func newApp(cmd *cobra.Command, onUnauthorized func()) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagURL, _ := cmd.Flags().GetString("api-url"); flagURL != "" {
		cfg.APIURL = flagURL
	}

	store, err := session.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	if onUnauthorized == nil {
		onUnauthorized = func() {
			fmt.Fprintln(os.Stderr, "Session expired. Run 'docpilot login' to sign in again.")
		}
	}

	opts := []api.Option{api.WithUnauthorizedHandler(onUnauthorized)}
	if cfg.RequestTimeoutSeconds > 0 {
		opts = append(opts, api.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		}))
	}

	client := api.NewClient(cfg.APIURL, store, opts...)
	slog.Debug("client configured", "api_url", cfg.APIURL, "data_dir", cfg.DataDir)

	return &app{
		cfg:    cfg,
		store:  store,
		client: client,
		flow:   auth.NewFlow(client, store),
	}, nil
}

// requireToken fails fast with guidance when no session is persisted.
// Expiry of a present token is caught by the client's 401 path.
func (a *app) requireToken() error {
	if _, ok := a.store.Token(); !ok {
		return errors.New("not logged in; run 'docpilot login' first")
	}
	return nil
}

// promptPassword reads a password without echo when stdin is a
// terminal, falling back to a plain line read so the commands stay
// scriptable.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
