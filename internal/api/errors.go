package api

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired reports a 401 on an authenticated call. The
	// client has already torn down the local session by the time a
	// caller sees this error.
	ErrSessionExpired = errors.New("session expired")

	// ErrSweepOverflow reports an aggregate sweep that exceeded the
	// page-count cap. This is defensive; it should not occur against
	// a healthy backend.
	ErrSweepOverflow = errors.New("collection sweep exceeded page cap")
)

// APIError is a non-2xx response from the platform, carrying the
// server's detail message when one was provided.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// AuthError reports failed authentication: rejected credentials or a
// login response missing its token.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return "authentication failed: " + e.Detail
	}
	return "authentication failed"
}

// RegistrationError reports a rejected registration, surfacing the
// server-side validation detail when available.
type RegistrationError struct {
	Detail string
}

func (e *RegistrationError) Error() string {
	if e.Detail != "" {
		return "registration failed: " + e.Detail
	}
	return "registration failed"
}

// TransferError reports a failed upload, download, or export.
type TransferError struct {
	Op  string
	Err error
}

func (e *TransferError) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// ErrorDetail extracts the server-provided detail from err, or returns
// fallback when none is available.
func ErrorDetail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
