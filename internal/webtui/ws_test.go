package webtui

import (
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
)

// TestWSBridgePumpsAndResizes runs the websocket bridge against a pty
// wrapping cat instead of the real TUI: input written to the socket comes
// back as terminal output, and a resize control frame reaches the pty.
func TestWSBridgePumpsAndResizes(t *testing.T) {
	s, err := NewServer(ServerConfig{Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatal(err)
	}

	ptmxCh := make(chan *os.File, 1)
	s.startSession = func() (*os.File, *exec.Cmd, func(), error) {
		cmd := exec.Command("cat")
		f, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: 120, Rows: 40})
		if err != nil {
			return nil, nil, nil, err
		}
		ptmxCh <- f
		cleanup := func() {
			_ = f.Close()
			_ = cmd.Process.Kill()
			_, _ = cmd.Process.Wait()
		}
		return f, cmd, cleanup, nil
	}

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	var ptmx *os.File
	select {
	case ptmx = <-ptmxCh:
	case <-time.After(3 * time.Second):
		t.Fatal("session never started")
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("hello\n")); err != nil {
		t.Fatalf("write keystrokes: %v", err)
	}
	var got []byte
	for !strings.Contains(string(got), "hello") {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read terminal output: %v (got %q so far)", err, got)
		}
		got = append(got, data...)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"resize","cols":81,"rows":25}`)); err != nil {
		t.Fatalf("write resize: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		rows, cols, err := pty.Getsize(ptmx)
		if err == nil && rows == 25 && cols == 81 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	rows, cols, _ := pty.Getsize(ptmx)
	t.Fatalf("pty size = %dx%d after resize, want 81x25", cols, rows)
}
