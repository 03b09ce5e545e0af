// Package chat holds the room session: at most one active membership, with
// join/leave/message events flowing over a Transport and inbound messages
// appended to a visible log.
package chat

import (
	"fmt"
	"strings"
	"sync"

	"taskroom-cli/internal/model"
)

// Transport is the persistent bidirectional connection the session emits
// events over. Connection lifecycle (and any reconnection) belongs to the
// transport, not the session: the session never retries, backs off, or waits
// for delivery acknowledgment.
type Transport interface {
	Emit(ev model.ChatEvent) error
	// Events yields inbound events. The channel closes when the transport
	// goes away.
	Events() <-chan model.ChatEvent
	Close() error
}

// ValidationError is the blocking, user-visible complaint for invalid chat
// actions (empty room name, sending with no active room). It is the only
// user-facing error channel the chat surface has.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func errValidation(msg string) error { return &ValidationError{Msg: msg} }

// Session tracks the single client-side room membership.
//
// States: no room, or in exactly one room with a role (creator or joiner).
// The role is presentation only; it is not remembered across leave/rejoin.
type Session struct {
	user string
	tr   Transport

	mu     sync.Mutex
	room   string
	role   model.RoomRole
	status string
	log    []string
}

func NewSession(user string, tr Transport) *Session {
	return &Session{user: user, tr: tr}
}

func (s *Session) User() string { return s.user }

// Room reports the active membership, if any.
func (s *Session) Room() (name string, role model.RoomRole, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room, s.role, s.room != ""
}

// Status is the room-status display line.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Log returns a copy of the visible message log, in arrival order.
func (s *Session) Log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

// Create enters a new room as its creator. Creating a room that already has
// participants is indistinguishable from joining it (the wire protocol has
// no uniqueness check), so only the status line differs.
func (s *Session) Create(name string) error {
	return s.enter(name, model.RoomRoleCreator)
}

// Join enters an existing room.
func (s *Session) Join(name string) error {
	return s.enter(name, model.RoomRoleJoiner)
}

func (s *Session) enter(name string, role model.RoomRole) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errValidation("enter a room name first")
	}

	s.mu.Lock()
	if s.room != "" {
		cur := s.room
		s.mu.Unlock()
		return errValidation(fmt.Sprintf("already in room %q; leave it first", cur))
	}
	s.room = name
	s.role = role
	if role == model.RoomRoleCreator {
		s.status = fmt.Sprintf("Room %q created. Share this name with others.", name)
	} else {
		s.status = fmt.Sprintf("Joined room: %q", name)
	}
	s.mu.Unlock()

	return s.tr.Emit(model.ChatEvent{Event: model.EventJoin, Room: name})
}

// Leave exits the current room and clears the visible log. Leaving with no
// active room is a no-op, matching the disabled leave control.
func (s *Session) Leave() error {
	s.mu.Lock()
	if s.room == "" {
		s.mu.Unlock()
		return nil
	}
	name := s.room
	s.room = ""
	s.role = ""
	s.status = ""
	s.log = nil
	s.mu.Unlock()

	return s.tr.Emit(model.ChatEvent{Event: model.EventLeave, Room: name})
}

// Send emits a message event for the current room. With no active room it
// reports a validation error and emits nothing. Empty (after trimming) text
// is silently dropped.
func (s *Session) Send(text string) error {
	s.mu.Lock()
	room := s.room
	s.mu.Unlock()

	if room == "" {
		return errValidation("join a room first")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.tr.Emit(model.ChatEvent{
		Event: model.EventMessage,
		Room:  room,
		User:  s.user,
		Text:  text,
	})
}

// Receive appends an inbound message to the log, suppressing synthetic
// notices: anything from the reserved System identity, or join/leave
// notifications. Messages are appended in arrival order, never reordered or
// deduplicated.
func (s *Session) Receive(msg model.ChatMessage) {
	if msg.User == model.SystemUser {
		return
	}
	if strings.Contains(msg.Text, "joined room") || strings.Contains(msg.Text, "left room") {
		return
	}
	s.mu.Lock()
	s.log = append(s.log, fmt.Sprintf("%s: %s", msg.User, msg.Text))
	s.mu.Unlock()
}
