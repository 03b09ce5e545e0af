package cli

import (
	"github.com/spf13/cobra"

	"taskroom-cli/internal/tui"
)

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat pane",
		Long:  "Open the TUI focused on the chat pane. Rooms are named channels; the client is a member of at most one room at a time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runTUI(app, tui.PaneChat); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}
