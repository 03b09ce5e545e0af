package chat

import (
	"errors"
	"testing"

	"taskroom-cli/internal/model"
)

// fakeTransport records emitted events and lets tests inject inbound ones.
type fakeTransport struct {
	emitted []model.ChatEvent
	ch      chan model.ChatEvent
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{ch: make(chan model.ChatEvent, 8)}
}

func (f *fakeTransport) Emit(ev model.ChatEvent) error {
	f.emitted = append(f.emitted, ev)
	return nil
}

func (f *fakeTransport) Events() <-chan model.ChatEvent { return f.ch }
func (f *fakeTransport) Close() error                   { close(f.ch); return nil }

func TestCreateEntersRoomAsCreator(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)

	if err := s.Create("teamA"); err != nil {
		t.Fatalf("create: %v", err)
	}
	name, role, ok := s.Room()
	if !ok || name != "teamA" || role != model.RoomRoleCreator {
		t.Fatalf("room = (%q, %q, %v), want (teamA, creator, true)", name, role, ok)
	}
	if len(tr.emitted) != 1 || tr.emitted[0] != (model.ChatEvent{Event: model.EventJoin, Room: "teamA"}) {
		t.Fatalf("emitted = %+v, want single join", tr.emitted)
	}
	if s.Status() == "" {
		t.Fatal("expected a room-status line after create")
	}
}

func TestCreateEmptyNameIsValidationError(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)

	err := s.Create("   ")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, _, ok := s.Room(); ok {
		t.Fatal("state must stay NoRoom on validation failure")
	}
	if len(tr.emitted) != 0 {
		t.Fatalf("no event may be emitted, got %+v", tr.emitted)
	}
}

func TestSecondJoinRejectedWhileInRoom(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)
	if err := s.Join("teamA"); err != nil {
		t.Fatalf("join: %v", err)
	}

	err := s.Join("teamB")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if name, _, _ := s.Room(); name != "teamA" {
		t.Fatalf("membership changed to %q", name)
	}
}

func TestLeaveClearsLogAndStatus(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)
	if err := s.Create("teamA"); err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Receive(model.ChatMessage{User: "bob", Text: "hi"})
	if len(s.Log()) != 1 {
		t.Fatalf("log = %v", s.Log())
	}

	if err := s.Leave(); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, _, ok := s.Room(); ok {
		t.Fatal("expected NoRoom after leave")
	}
	if got := s.Log(); len(got) != 0 {
		t.Fatalf("log must be empty after leave, got %v", got)
	}
	if s.Status() != "" {
		t.Fatalf("status must reset after leave, got %q", s.Status())
	}
	last := tr.emitted[len(tr.emitted)-1]
	if last.Event != model.EventLeave || last.Room != "teamA" {
		t.Fatalf("last emitted = %+v, want leave teamA", last)
	}
}

func TestLeaveWithoutRoomIsNoop(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)
	if err := s.Leave(); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(tr.emitted) != 0 {
		t.Fatalf("no event may be emitted, got %+v", tr.emitted)
	}
}

func TestSendWithoutRoomEmitsNothing(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)

	err := s.Send("hello")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Msg != "join a room first" {
		t.Fatalf("msg = %q", ve.Msg)
	}
	if len(tr.emitted) != 0 {
		t.Fatalf("no event may be emitted, got %+v", tr.emitted)
	}
}

func TestSendTrimsAndDropsEmpty(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)
	if err := s.Join("teamA"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := s.Send("   "); err != nil {
		t.Fatalf("empty send must be silent, got %v", err)
	}
	if err := s.Send("  hello  "); err != nil {
		t.Fatalf("send: %v", err)
	}

	want := model.ChatEvent{Event: model.EventMessage, Room: "teamA", User: "ada", Text: "hello"}
	last := tr.emitted[len(tr.emitted)-1]
	if last != want {
		t.Fatalf("emitted = %+v, want %+v", last, want)
	}
	// The blank send must not have produced an event (join + one message only).
	if len(tr.emitted) != 2 {
		t.Fatalf("emitted %d events, want 2: %+v", len(tr.emitted), tr.emitted)
	}
}

func TestReceiveSuppressesSystemAndNotices(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)
	if err := s.Join("teamA"); err != nil {
		t.Fatalf("join: %v", err)
	}

	for _, msg := range []model.ChatMessage{
		{User: model.SystemUser, Text: "anything at all"},
		{User: model.SystemUser, Text: ""},
		{User: "bob", Text: "bob joined room teamA"},
		{User: "bob", Text: "bob left room teamA"},
	} {
		s.Receive(msg)
	}
	if got := s.Log(); len(got) != 0 {
		t.Fatalf("synthetic notices leaked into log: %v", got)
	}

	s.Receive(model.ChatMessage{User: "bob", Text: "actual message"})
	got := s.Log()
	if len(got) != 1 || got[0] != "bob: actual message" {
		t.Fatalf("log = %v", got)
	}
}

func TestReceiveKeepsArrivalOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)
	if err := s.Join("teamA"); err != nil {
		t.Fatalf("join: %v", err)
	}

	s.Receive(model.ChatMessage{User: "bob", Text: "one"})
	s.Receive(model.ChatMessage{User: "bob", Text: "one"})
	s.Receive(model.ChatMessage{User: "eve", Text: "two"})

	got := s.Log()
	want := []string{"bob: one", "bob: one", "eve: two"}
	if len(got) != len(want) {
		t.Fatalf("log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("log[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRoleNotRememberedAcrossRejoin(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport()
	s := NewSession("ada", tr)

	if err := s.Create("teamA"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Leave(); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := s.Join("teamA"); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	name, role, ok := s.Room()
	if !ok || name != "teamA" || role != model.RoomRoleJoiner {
		t.Fatalf("room = (%q, %q, %v), want (teamA, joiner, true)", name, role, ok)
	}
}
