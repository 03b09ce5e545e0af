package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingIsNotLoggedIn(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())

	_, err := Load()
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestSaveLoadClear(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())

	cred := Credential{Token: "tok-123", Username: "ada"}
	if err := Save(cred); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != cred {
		t.Fatalf("loaded %+v, want %+v", got, cred)
	}

	if err := Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := Load(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn after clear, got %v", err)
	}
	// Clearing twice must stay quiet.
	if err := Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())

	if err := Save(Credential{Username: "ada"}); err == nil {
		t.Fatalf("expected error saving credential without token")
	}
}

func TestLoadEmptyTokenIsNotLoggedIn(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKROOM_CONFIG_DIR", dir)

	// A file that exists but carries no token must behave like no session.
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte(`{"token":"","username":"ada"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestSavedFilePermissions(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKROOM_CONFIG_DIR", dir)

	if err := Save(Credential{Token: "tok", Username: "ada"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session file mode = %o, want 600", perm)
	}
}
