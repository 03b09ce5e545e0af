package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskroom-cli/internal/api"
	"taskroom-cli/internal/format"
	"taskroom-cli/internal/session"
	"taskroom-cli/internal/tui"
)

type App struct {
	ServerURL  string
	Format     string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskroom",
		Short:        "Taskroom client: tasks + room chat in the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI (tasks + chat)
  taskroom

  # Scriptable commands
  taskroom login --username ada
  taskroom tasks list --search milk
  taskroom tasks add --title "Buy milk" --due 2024-01-01

  # Chat-only view
  taskroom chat

  # Local development server to point the client at
  taskroom serve --addr 127.0.0.1:8001
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app, tui.PaneTasks)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("TASKROOM_SERVER", "http://localhost:8001"), "Task/chat server base URL")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKROOM_FORMAT", "text"), "Output format (text|json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newChatCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newServeCmd(app))

	return cmd
}

func runTUI(app *App, pane tui.Pane) error {
	cred, err := session.Load()
	if err != nil {
		return err
	}
	return tui.Run(tui.Config{
		ServerURL:   app.ServerURL,
		Credential:  cred,
		InitialPane: pane,
	})
}

// apiClient gates every authenticated command on the stored credential.
// Absence is final: the returned ErrNotLoggedIn sends the user to login.
func apiClient(app *App) (*api.Client, session.Credential, error) {
	cred, err := session.Load()
	if err != nil {
		return nil, session.Credential{}, err
	}
	return api.New(app.ServerURL, cred.Token), cred, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeJSON(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeText(cmd *cobra.Command, s string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
