package cli

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taskroom-cli/internal/api"
	"taskroom-cli/internal/session"
)

func newLoginCmd(app *App) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return writeErr(cmd, errors.New("missing --username"))
			}
			if password == "" {
				pw, err := promptPassword(cmd)
				if err != nil {
					return writeErr(cmd, err)
				}
				password = pw
			}

			token, err := api.New(app.ServerURL, "").Login(cmd.Context(), username, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			cred := session.Credential{Token: token, Username: username}
			if err := session.Save(cred); err != nil {
				return writeErr(cmd, err)
			}

			if app.Format == "json" {
				return writeJSON(cmd, app, map[string]string{"username": username})
			}
			return writeText(cmd, fmt.Sprintf("Logged in as %s", username))
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", errors.New("missing --password (stdin is not a terminal)")
	}
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errors.New("empty password")
	}
	return string(b), nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear all stored session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Clear(); err != nil {
				return writeErr(cmd, err)
			}
			if app.Format == "json" {
				return writeJSON(cmd, app, map[string]bool{"loggedOut": true})
			}
			return writeText(cmd, "Logged out")
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in username",
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := session.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Format == "json" {
				return writeJSON(cmd, app, map[string]string{"username": cred.Username})
			}
			return writeText(cmd, cred.Username)
		},
	}
}

// loginHintExitCode lets scripts distinguish "not logged in" from other
// failures.
const loginHintExitCode = 3

// ExitCode maps an error from Execute to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, session.ErrNotLoggedIn) {
		return loginHintExitCode
	}
	return 1
}
