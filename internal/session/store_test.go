package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docpilot-cli/docpilot/internal/api"
)

func TestSetTokenTrims(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.SetToken("  abc123\n"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	token, ok := store.Token()
	if !ok {
		t.Fatal("Token reported absent after SetToken")
	}
	if token != "abc123" {
		t.Errorf("token = %q, want %q", token, "abc123")
	}
}

func TestSetTokenEmpty(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SetToken("   "); err != ErrEmptyToken {
		t.Errorf("SetToken(blank) = %v, want ErrEmptyToken", err)
	}
	if _, ok := store.Token(); ok {
		t.Error("Token present after rejected SetToken")
	}
}

func TestTokenSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SetToken("persisted-token"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := store.SetUser(&api.Profile{ID: 7, Email: "a@b.test", FullName: "Ada"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	token, ok := reopened.Token()
	if !ok || token != "persisted-token" {
		t.Errorf("reopened token = %q, %v; want %q, true", token, ok, "persisted-token")
	}
	user, ok := reopened.User()
	if !ok {
		t.Fatal("reopened store lost cached profile")
	}
	if user.Email != "a@b.test" {
		t.Errorf("user.Email = %q, want %q", user.Email, "a@b.test")
	}
}

func TestRemoveToken(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SetToken("tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	if !store.RemoveToken() {
		t.Error("RemoveToken with a token present returned false")
	}
	if _, ok := store.Token(); ok {
		t.Error("Token present after RemoveToken")
	}
	// Only the first removal reports a token was present.
	if store.RemoveToken() {
		t.Error("second RemoveToken returned true")
	}
}

func TestUserUntrustedWithoutToken(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SetToken("tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := store.SetUser(&api.Profile{ID: 1, Email: "a@b.test"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	store.RemoveToken()
	if _, ok := store.User(); ok {
		t.Error("User returned a profile with no token present")
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SetToken("tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := store.SetUser(&api.Profile{ID: 1}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := store.Token(); ok {
		t.Error("Token present after Clear")
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := reopened.Token(); ok {
		t.Error("cleared token came back after reopen")
	}
	if _, ok := reopened.User(); ok {
		t.Error("cleared profile came back after reopen")
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open with corrupt file: %v", err)
	}
	if _, ok := store.Token(); ok {
		t.Error("corrupt file yielded a token")
	}
	// The store must still be writable afterwards.
	if err := store.SetToken("fresh"); err != nil {
		t.Fatalf("SetToken after corrupt load: %v", err)
	}
}
