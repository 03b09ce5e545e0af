package chat

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"taskroom-cli/internal/model"
)

// WSTransport is the production Transport: one websocket connection carrying
// JSON chat events in both directions. There is no reconnect: when the
// connection drops, the events channel closes and the caller decides what to
// tell the user.
type WSTransport struct {
	conn   *websocket.Conn
	events chan model.ChatEvent

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the chat endpoint of the given server base URL
// (http(s)://host → ws(s)://host/ws/chat). The bearer token rides along as a
// query parameter because browser websocket clients of the same service
// cannot set headers.
func Dial(ctx context.Context, serverURL, token string) (*WSTransport, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(serverURL), "/"))
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		// "localhost:8001" parses with scheme "localhost"; dialing that
		// produces a baffling error, so reject it here.
		return nil, fmt.Errorf("chat: server URL %q must start with http:// or https://", serverURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/chat"
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	t := &WSTransport{
		conn:   conn,
		events: make(chan model.ChatEvent, 32),
	}
	go t.readLoop()
	return t, nil
}

func (t *WSTransport) readLoop() {
	defer close(t.events)
	for {
		var ev model.ChatEvent
		if err := t.conn.ReadJSON(&ev); err != nil {
			return
		}
		t.events <- ev
	}
}

func (t *WSTransport) Emit(ev model.ChatEvent) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(ev)
}

func (t *WSTransport) Events() <-chan model.ChatEvent { return t.events }

func (t *WSTransport) Close() error {
	t.closeOnce.Do(func() {
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), closeDeadline())
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func closeDeadline() time.Time { return time.Now().Add(time.Second) }
