package cli

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"taskroom-cli/internal/session"
	"taskroom-cli/internal/webtui"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the terminal client into a browser tab",
		Long: strings.TrimSpace(`
Serve the taskroom TUI over HTTP: an xterm.js page connected through a
websocket to a pty running this same binary. Keyboard input and terminal
output travel over the socket; everything else behaves exactly like the
local TUI.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Same gate as the TUI itself: no credential, no client.
			if _, err := session.Load(); err != nil {
				return writeErr(cmd, err)
			}

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr:      listenAddr,
				ServerURL: app.ServerURL,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "taskroom web: http://%s\n", ln.Addr().String())
			if err := http.Serve(ln, srv.Handler()); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3340", "Listen address")
	return cmd
}
