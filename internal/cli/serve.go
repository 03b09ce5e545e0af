package cli

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taskroom-cli/internal/devserver"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local in-memory task + chat server",
		Long: strings.TrimSpace(`
Run a local development instance of the service the client speaks to.

Everything lives in memory: restarting the server drops all tasks, sessions
and rooms. Any username/password combination logs in. Point the client at it
with --server (or TASKROOM_SERVER).
`),
		Example: strings.TrimSpace(`
  taskroom serve --addr 127.0.0.1:8001
  TASKROOM_SERVER=http://127.0.0.1:8001 taskroom login --username ada
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Optional .env for local overrides; absence is fine.
			_ = godotenv.Load()
			if addr == "" {
				addr = envOr("TASKROOM_ADDR", "127.0.0.1:8001")
			}

			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()

			srv := devserver.New(log)
			if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default TASKROOM_ADDR or 127.0.0.1:8001)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log every request")
	return cmd
}
