// Package auth implements the session lifecycle: login, registration
// with auto-login, startup bootstrap of a persisted token, and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/session"
)

// Flow coordinates the API client and the session store. It is the
// only component that writes a token into the store.
type Flow struct {
	client *api.Client
	store  *session.Store
}

// NewFlow creates the auth flow over the given client and store.
func NewFlow(client *api.Client, store *session.Store) *Flow {
	return &Flow{client: client, store: store}
}

// Login authenticates, persists the trimmed token, then fetches and
// caches the profile. The profile fetch passes the token explicitly
// rather than relying on the store, so a delayed store write cannot
// race an unauthenticated request.
func (f *Flow) Login(ctx context.Context, email, password string) (*api.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	token, err := f.client.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, &api.AuthError{Detail: apiErr.Detail}
		}
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return nil, &api.AuthError{Detail: "server response did not include a token"}
	}

	if err := f.store.SetToken(token.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	profile, err := f.client.Me(ctx, api.WithToken(token.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile after login: %w", err)
	}
	if err := f.store.SetUser(profile); err != nil {
		slog.Warn("failed to cache profile", "err", err)
	}

	slog.Debug("logged in", "email", profile.Email, "tenant_id", profile.TenantID)
	return profile, nil
}

// Register creates an account and immediately logs in with the same
// credentials. Server-side validation detail is surfaced through
// RegistrationError.
func (f *Flow) Register(ctx context.Context, req api.RegisterRequest) (*api.Profile, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.TenantName = strings.TrimSpace(req.TenantName)

	if len(req.Password) < 8 {
		return nil, &api.RegistrationError{Detail: "password must be at least 8 characters"}
	}
	if req.Email == "" || req.TenantName == "" {
		return nil, &api.RegistrationError{Detail: "email and tenant name are required"}
	}

	if _, err := f.client.Register(ctx, req); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return nil, &api.RegistrationError{Detail: apiErr.Detail}
		}
		return nil, fmt.Errorf("registration request failed: %w", err)
	}

	profile, err := f.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("registered, but auto-login failed: %w", err)
	}
	return profile, nil
}

// BootstrapState reports the outcome of startup session validation.
type BootstrapState int

const (
	// Unauthenticated means no usable session exists; the user must
	// log in.
	Unauthenticated BootstrapState = iota
	// Authenticated means the persisted token was validated against
	// the server.
	Authenticated
)

// Bootstrap validates a persisted token at startup. Without a token
// it reports Unauthenticated with no network call; the cached profile
// alone is never treated as evidence of authentication. A token that
// fails validation for any reason is cleared.
func (f *Flow) Bootstrap(ctx context.Context) (BootstrapState, *api.Profile, error) {
	token, ok := f.store.Token()
	if !ok {
		return Unauthenticated, nil, nil
	}

	// Any validation failure, including transport failure, treats
	// the token as expired: the session is cleared and the user logs
	// in again rather than carrying a token of unknown standing.
	profile, valid, err := f.client.ProbeToken(ctx, token)
	if err != nil {
		f.store.RemoveToken()
		return Unauthenticated, nil, fmt.Errorf("could not validate session: %w", err)
	}
	if !valid {
		slog.Debug("persisted token rejected by server, clearing session")
		f.store.RemoveToken()
		return Unauthenticated, nil, nil
	}

	if err := f.store.SetUser(profile); err != nil {
		slog.Warn("failed to refresh cached profile", "err", err)
	}
	return Authenticated, profile, nil
}

// Logout destroys the local session. The platform issues stateless
// tokens, so there is nothing to revoke server-side.
func (f *Flow) Logout() error {
	if err := f.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
