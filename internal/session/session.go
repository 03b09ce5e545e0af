package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Credential is the persisted login state. It is created by `taskroom login`,
// read by every authenticated command, and destroyed by `taskroom logout`.
type Credential struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// ErrNotLoggedIn is returned when no credential is stored. Commands treat it
// as fatal: there is no retry, the user is sent to `taskroom login`.
var ErrNotLoggedIn = errors.New("not logged in (run `taskroom login`)")

func (c Credential) valid() bool {
	return strings.TrimSpace(c.Token) != ""
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.taskroom).
	if v := strings.TrimSpace(os.Getenv("TASKROOM_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskroom"), nil
}

func credentialPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// Load reads the stored credential. A missing or empty file yields
// ErrNotLoggedIn rather than an I/O error.
func Load() (Credential, error) {
	path, err := credentialPath()
	if err != nil {
		return Credential{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credential{}, ErrNotLoggedIn
		}
		return Credential{}, err
	}
	var c Credential
	if err := json.Unmarshal(b, &c); err != nil {
		return Credential{}, err
	}
	if !c.valid() {
		return Credential{}, ErrNotLoggedIn
	}
	return c, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// Save persists the credential. The token grants API access, so the file is
// written 0600 via a unique temp file + rename to avoid cross-process
// clobbering when multiple taskroom processes write concurrently (CLI + TUI).
func Save(c Credential) error {
	if !c.valid() {
		return errors.New("refusing to save empty credential")
	}
	path, err := credentialPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "session.json.*.tmp", path, b, 0o600)
}

// Clear removes all persisted session state. Losing the file is the whole
// point, so a missing file is not an error.
func Clear() error {
	path, err := credentialPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
