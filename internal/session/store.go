// Package session persists the bearer token and a cached user profile
// across invocations. The store is the single owner of session state;
// other components read through it and never hold their own copy of
// the token.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/docpilot-cli/docpilot/internal/api"
)

const sessionFile = "session.json"

// ErrEmptyToken is returned when SetToken is called with a token that
// is empty after trimming.
var ErrEmptyToken = errors.New("token is empty")

// persisted is the on-disk layout of the session file.
type persisted struct {
	Token string       `json:"token,omitempty"`
	User  *api.Profile `json:"user,omitempty"`
}

// Store is a durable token and profile cache backed by a JSON file.
// Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	path  string
	state persisted
}

// Open loads the session file under dir, creating dir if needed. A
// missing session file is not an error; the store starts empty.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	s := &Store{path: filepath.Join(dir, sessionFile)}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		// A corrupt session file is treated as no session rather
		// than locking the user out of the tool.
		s.state = persisted{}
	}
	// Tokens written by older builds may carry stray whitespace.
	s.state.Token = strings.TrimSpace(s.state.Token)
	return s, nil
}

// SetToken persists the token, trimmed of surrounding whitespace.
func (s *Store) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = token
	return s.saveLocked()
}

// Token returns the persisted token, reporting false when absent.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Token == "" {
		return "", false
	}
	return s.state.Token, true
}

// RemoveToken clears the persisted token and reports whether a token
// was present. The cached profile is kept; with no token it is a
// presentation hint only, never evidence of authentication.
func (s *Store) RemoveToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" {
		return false
	}
	s.state.Token = ""
	if err := s.saveLocked(); err != nil {
		// The in-memory token is gone either way; a failed write
		// just means the stale file token dies on next bootstrap.
		return true
	}
	return true
}

// SetUser caches the profile alongside the token.
func (s *Store) SetUser(profile *api.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = profile
	return s.saveLocked()
}

// User returns the cached profile, reporting false when there is no
// cached profile or no token. A profile without a token is untrusted
// and not returned.
func (s *Store) User() (*api.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Token == "" || s.state.User == nil {
		return nil, false
	}
	user := *s.state.User
	return &user, true
}

// Clear removes the token and the cached profile.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = persisted{}
	return s.saveLocked()
}

// saveLocked writes the session file atomically with owner-only
// permissions. Callers must hold s.mu.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
