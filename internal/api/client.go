// Package api implements the HTTP client for the document processing
// platform. Client is the single point of dispatch for authenticated
// calls: it resolves the bearer token per request, detects
// authorization failures centrally, and surfaces the server's error
// detail to callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read for the
// detail message.
const maxErrorBody = 4 * 1024

// TokenSource supplies the current bearer token. The session store
// implements it; Client only ever reads the token and clears it on a
// detected invalidation, never writes one.
type TokenSource interface {
	Token() (string, bool)
	// RemoveToken clears the stored token, reporting whether a token
	// was actually present. The report lets the client fire its
	// unauthorized signal exactly once per invalidation even with
	// concurrent in-flight requests.
	RemoveToken() bool
}

// Client talks to the platform's REST API. Safe for concurrent use;
// it holds no per-request mutable state.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client. Tests use
// this to point at an httptest server transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithUnauthorizedHandler registers the signal invoked when a 401 on
// an authenticated call tears the session down. The handler fires at
// most once per invalidation.
func WithUnauthorizedHandler(handler func()) Option {
	return func(c *Client) { c.onUnauthorized = handler }
}

// NewClient creates a client for the API at baseURL. tokens may be
// nil for a client that only performs unauthenticated calls.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base address.
func (c *Client) BaseURL() string { return c.baseURL }

// callOptions carry per-request overrides.
type callOptions struct {
	token      string // explicit bearer token, takes precedence
	authExempt bool   // 401 is an ordinary error, no session teardown
}

// CallOption adjusts a single request.
type CallOption func(*callOptions)

// WithToken sends the request with an explicitly supplied bearer
// token instead of the one in the token source. The auth flow uses
// this for the profile fetch right after login, before the stored
// token is guaranteed visible.
func WithToken(token string) CallOption {
	return func(o *callOptions) { o.token = strings.TrimSpace(token) }
}

// asAuthExempt marks login/registration requests: a 401 there means
// bad credentials, not an expired session, and must not tear down
// local state.
func asAuthExempt() CallOption {
	return func(o *callOptions) { o.authExempt = true }
}

// do dispatches one request. The effective bearer token is the
// per-call token if supplied, otherwise the token source's current
// token; with neither, the request goes out unauthenticated.
//
// A 401 on a non-exempt call clears the token source and fires the
// unauthorized signal, then returns ErrSessionExpired. Every other
// failure propagates unchanged: no retries, no backoff.
func (c *Client) do(ctx context.Context, method, path string, contentType string, body io.Reader, opts ...CallOption) (*http.Response, error) {
	var options callOptions
	for _, opt := range opts {
		opt(&options)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token := options.token
	if token == "" && c.tokens != nil {
		token, _ = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !options.authExempt {
		detail := readErrorDetail(resp.Body)
		resp.Body.Close()
		c.expireSession()
		if detail != "" {
			return nil, fmt.Errorf("%s %s: %s: %w", method, path, detail, ErrSessionExpired)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrSessionExpired)
	}

	return resp, nil
}

// expireSession clears the stored token and signals the presentation
// layer. Only the call that actually removed a token signals, so
// overlapping 401s produce a single signal.
func (c *Client) expireSession() {
	if c.tokens == nil {
		return
	}
	if !c.tokens.RemoveToken() {
		return
	}
	slog.Debug("bearer token invalidated by server, session cleared")
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// getJSON performs a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any, opts ...CallOption) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil, opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

// postJSON performs a POST with a JSON body and decodes a 2xx
// response into out. out may be nil to discard the response.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, opts ...CallOption) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body), opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

// decodeJSON turns a response into out, or into an *APIError for a
// non-2xx status.
func decodeJSON(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: readErrorDetail(resp.Body)}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readErrorDetail extracts the platform's error detail. The backend
// wraps most errors as {"detail": "message"}; validation failures
// carry a list of field errors instead.
func readErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		return detail
	}

	// Validation errors arrive as [{"loc": [...], "msg": "..."}].
	var fields []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil && len(fields) > 0 {
		messages := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg != "" {
				messages = append(messages, f.Msg)
			}
		}
		if len(messages) > 0 {
			return strings.Join(messages, "; ")
		}
	}
	return strings.TrimSpace(string(envelope.Detail))
}
