package devserver

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"taskroom-cli/internal/model"
)

// hub fans chat events out to room members. A connection subscribes to at
// most one room at a time, mirroring the client's single-membership rule;
// the hub itself enforces nothing beyond routing.
type hub struct {
	log zerolog.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	rooms   map[string]map[*wsClient]struct{}
	closed  bool
	wg      sync.WaitGroup
}

type wsClient struct {
	conn *websocket.Conn
	user string

	writeMu sync.Mutex
	room    string // guarded by hub.mu
}

func newHub(log zerolog.Logger) *hub {
	return &hub{
		log:     log,
		clients: map[*wsClient]struct{}{},
		rooms:   map[string]map[*wsClient]struct{}{},
	}
}

func (c *wsClient) send(ev model.ChatEvent) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteJSON(ev)
}

// broadcast sends to every member of the room, sender included. The sender
// sees its own message via the echo, the way the room transport works.
func (h *hub) broadcast(room string, ev model.ChatEvent) {
	h.mu.RLock()
	members := make([]*wsClient, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.RUnlock()
	for _, c := range members {
		c.send(ev)
	}
}

func (h *hub) join(c *wsClient, room string) {
	h.mu.Lock()
	if c.room != "" {
		delete(h.rooms[c.room], c)
	}
	c.room = room
	if h.rooms[room] == nil {
		h.rooms[room] = map[*wsClient]struct{}{}
	}
	h.rooms[room][c] = struct{}{}
	h.mu.Unlock()

	h.broadcast(room, model.ChatEvent{
		Event: model.EventMessage,
		User:  model.SystemUser,
		Text:  fmt.Sprintf("%s joined room %s", c.user, room),
	})
}

func (h *hub) leave(c *wsClient) {
	h.mu.Lock()
	room := c.room
	if room == "" {
		h.mu.Unlock()
		return
	}
	delete(h.rooms[room], c)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	c.room = ""
	h.mu.Unlock()

	h.broadcast(room, model.ChatEvent{
		Event: model.EventMessage,
		User:  model.SystemUser,
		Text:  fmt.Sprintf("%s left room %s", c.user, room),
	})
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	// Local development server; the token already gates the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS upgrades the connection and pumps events until the client goes
// away. Inbound message events are routed to the sender's subscribed room
// only; the room field on the wire must match the subscription.
func (h *hub) handleWS(w http.ResponseWriter, r *http.Request, user string) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &wsClient{conn: conn, user: user}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()

	defer h.wg.Done()
	defer func() {
		h.leave(c)
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	h.log.Info().Str("user", user).Msg("chat client connected")
	for {
		var ev model.ChatEvent
		if err := conn.ReadJSON(&ev); err != nil {
			h.log.Info().Str("user", user).Msg("chat client disconnected")
			return
		}
		switch ev.Event {
		case model.EventJoin:
			if room := strings.TrimSpace(ev.Room); room != "" {
				h.join(c, room)
			}
		case model.EventLeave:
			h.leave(c)
		case model.EventMessage:
			h.mu.RLock()
			room := c.room
			h.mu.RUnlock()
			if room == "" || ev.Room != room {
				continue
			}
			h.broadcast(room, model.ChatEvent{
				Event: model.EventMessage,
				User:  user,
				Text:  ev.Text,
			})
		}
	}
}

// closeAll closes every live connection. Websockets are hijacked from the
// http.Server, so its graceful Shutdown never reaches them; closing the
// underlying conns is what unblocks their read loops. New connections after
// closeAll are refused.
func (h *hub) closeAll() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

// wait blocks until all websocket handlers have finished.
func (h *hub) wait() { h.wg.Wait() }
