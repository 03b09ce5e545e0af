package model

import (
	"encoding/json"
	"strings"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     *Date  `json:"dueDate,omitempty"`
	Status      Status `json:"status"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Date is a calendar date (no time-of-day semantics). The task API writes
// dates as YYYY-MM-DD but older rows may carry full RFC 3339 timestamps, so
// unmarshalling accepts both.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{t: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// Display formats the date the way the task list shows due dates.
func (d Date) Display() string { return d.t.Format("Jan 2, 2006") }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type RoomRole string

const (
	RoomRoleCreator RoomRole = "creator"
	RoomRoleJoiner  RoomRole = "joiner"
)

// SystemUser is the reserved sender identity for synthetic room notices
// (join/leave). Messages from it never reach the visible log.
const SystemUser = "System"

type ChatMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
	Room string `json:"room,omitempty"`
}

// ChatEvent is the websocket wire envelope, both directions.
//
// Outbound: {"event":"join","room":...}, {"event":"leave","room":...},
// {"event":"message","room":...,"user":...,"text":...}.
// Inbound: {"event":"message","user":...,"text":...}; the room is implicit
// to the connection's current subscription.
type ChatEvent struct {
	Event string `json:"event"`
	Room  string `json:"room,omitempty"`
	User  string `json:"user,omitempty"`
	Text  string `json:"text,omitempty"`
}

const (
	EventJoin    = "join"
	EventLeave   = "leave"
	EventMessage = "message"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
