package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain date", in: "2024-01-01", want: "2024-01-01"},
		{name: "surrounding space", in: "  2024-01-01 ", want: "2024-01-01"},
		{name: "rfc3339 timestamp", in: "2024-01-01T15:04:05Z", want: "2024-01-01"},
		{name: "garbage", in: "next tuesday", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q): expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.in, err)
			}
			if d.String() != tt.want {
				t.Fatalf("ParseDate(%q) = %s, want %s", tt.in, d, tt.want)
			}
		})
	}
}

func TestDateDisplay(t *testing.T) {
	t.Parallel()

	d := NewDate(2024, time.January, 1)
	if got := d.Display(); got != "Jan 1, 2024" {
		t.Fatalf("Display() = %q", got)
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	d := NewDate(2024, time.March, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-03-09"` {
		t.Fatalf("marshal = %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.String() != d.String() {
		t.Fatalf("round trip = %s, want %s", back, d)
	}

	// Empty strings from the API mean "no due date".
	var empty Date
	if err := json.Unmarshal([]byte(`""`), &empty); err != nil {
		t.Fatal(err)
	}
	if !empty.IsZero() {
		t.Fatal("empty string should unmarshal to zero date")
	}
}

func TestTaskJSONOmitsOptionalFields(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Task{ID: 1, Title: "Buy milk", Status: StatusPending})
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	if got != `{"id":1,"title":"Buy milk","status":"pending"}` {
		t.Fatalf("marshal = %s", got)
	}
}
