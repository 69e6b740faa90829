package api

import (
	"context"
	"errors"
)

// Login exchanges credentials for a bearer token. A 401 here means
// rejected credentials and is returned as a plain *APIError; it never
// tears down an existing local session.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	payload := map[string]string{"email": email, "password": password}
	var token TokenResponse
	if err := c.postJSON(ctx, "/api/v1/auth/login", payload, &token, asAuthExempt()); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates a new account and returns the created profile.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	var profile Profile
	if err := c.postJSON(ctx, "/api/v1/auth/register", req, &profile, asAuthExempt()); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Me fetches the profile of the authenticated user. Pass WithToken to
// validate a specific token rather than the stored one.
func (c *Client) Me(ctx context.Context, opts ...CallOption) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, "/api/v1/auth/me", &profile, opts...); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProbeToken validates token against the profile endpoint without
// touching the stored session: an authorization failure is reported
// as ok=false rather than triggering the 401 teardown path.
func (c *Client) ProbeToken(ctx context.Context, token string) (*Profile, bool, error) {
	var profile Profile
	err := c.getJSON(ctx, "/api/v1/auth/me", &profile, WithToken(token), asAuthExempt())
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &profile, true, nil
}
