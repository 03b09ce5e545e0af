package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"taskroom-cli/internal/devserver"
	"taskroom-cli/internal/model"
	"taskroom-cli/internal/session"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(devserver.New(zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command failed: taskroom %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, errOut, out)
	}
	return out
}

func TestCommandsRequireLogin(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())
	srv := startServer(t)

	_, _, err := runCmd(t, "--server", srv.URL, "tasks", "list")
	if !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	if code := ExitCode(err); code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}

	_, _, err = runCmd(t, "whoami")
	if !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("whoami: expected ErrNotLoggedIn, got %v", err)
	}
}

func TestLoginTaskLifecycle(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())
	srv := startServer(t)
	server := []string{"--server", srv.URL}

	run := func(args ...string) string {
		t.Helper()
		return mustRun(t, append(server, args...)...)
	}

	run("login", "--username", "ada", "--password", "pw")

	if got := strings.TrimSpace(mustRun(t, "whoami")); got != "ada" {
		t.Fatalf("whoami = %q, want ada", got)
	}

	// Create with due date, then check the JSON list output.
	run("tasks", "add", "--title", "Buy milk", "--due", "2024-01-01")

	var tasks []model.Task
	listJSON := run("tasks", "list", "--format", "json")
	if err := json.Unmarshal([]byte(listJSON), &tasks); err != nil {
		t.Fatalf("unmarshal list: %v\n%s", err, listJSON)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Status != model.StatusPending {
		t.Fatalf("tasks = %+v", tasks)
	}
	id := tasks[0].ID

	// Complete re-fetches and prints the refreshed list.
	doneJSON := run("tasks", "done", idArg(id), "--format", "json")
	tasks = nil
	if err := json.Unmarshal([]byte(doneJSON), &tasks); err != nil {
		t.Fatalf("unmarshal done output: %v\n%s", err, doneJSON)
	}
	if len(tasks) != 1 || tasks[0].Status != model.StatusDone || tasks[0].Title != "Buy milk" {
		t.Fatalf("after done: %+v", tasks)
	}

	// Delete leaves the placeholder in text mode.
	rmOut := run("tasks", "rm", idArg(id))
	if !strings.Contains(rmOut, "No tasks found.") {
		t.Fatalf("rm output = %q, want placeholder", rmOut)
	}

	run("logout")
	if _, _, err := runCmd(t, "whoami"); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("expected logged out, got %v", err)
	}
}

func TestTasksSearchFlag(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())
	srv := startServer(t)
	server := []string{"--server", srv.URL}

	run := func(args ...string) string {
		t.Helper()
		return mustRun(t, append(server, args...)...)
	}

	run("login", "--username", "ada", "--password", "pw")
	run("tasks", "add", "--title", "Buy milk")
	run("tasks", "add", "--title", "Walk dog")

	var tasks []model.Task
	out := run("tasks", "list", "--search", "milk", "--format", "json")
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Fatalf("tasks = %+v", tasks)
	}
}

func TestTasksEdit(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())
	srv := startServer(t)
	server := []string{"--server", srv.URL}

	run := func(args ...string) string {
		t.Helper()
		return mustRun(t, append(server, args...)...)
	}

	run("login", "--username", "ada", "--password", "pw")
	run("tasks", "add", "--title", "Tpyo")

	var tasks []model.Task
	out := run("tasks", "list", "--format", "json")
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatal(err)
	}

	var edited model.Task
	editOut := run("tasks", "edit", idArg(tasks[0].ID), "--title", "Typo", "--format", "json")
	if err := json.Unmarshal([]byte(editOut), &edited); err != nil {
		t.Fatalf("unmarshal edit output: %v\n%s", err, editOut)
	}
	if edited.Title != "Typo" {
		t.Fatalf("title = %q, want Typo", edited.Title)
	}
}

func TestTasksEditClearsDescription(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())
	srv := startServer(t)
	server := []string{"--server", srv.URL}

	run := func(args ...string) string {
		t.Helper()
		return mustRun(t, append(server, args...)...)
	}

	run("login", "--username", "ada", "--password", "pw")
	run("tasks", "add", "--title", "Buy milk", "--description", "scratch notes")

	var tasks []model.Task
	out := run("tasks", "list", "--format", "json")
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatal(err)
	}

	// An explicitly-passed empty description clears the field.
	var edited model.Task
	editOut := run("tasks", "edit", idArg(tasks[0].ID), "--description", "", "--format", "json")
	if err := json.Unmarshal([]byte(editOut), &edited); err != nil {
		t.Fatalf("unmarshal edit output: %v\n%s", err, editOut)
	}
	if edited.Description != "" {
		t.Fatalf("description = %q, want cleared", edited.Description)
	}
	if edited.Title != "Buy milk" {
		t.Fatalf("title = %q, want untouched", edited.Title)
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	t.Setenv("TASKROOM_CONFIG_DIR", t.TempDir())

	_, errOut, err := runCmd(t, "login")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(errOut, "--username") {
		t.Fatalf("stderr = %q, want --username hint", errOut)
	}
}

func idArg(id int64) string {
	return strconv.FormatInt(id, 10)
}
