package chat

import (
	"context"
	"strings"
	"testing"
)

func TestDialRejectsNonHTTPServerURL(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"localhost:8001", "ftp://host", ""} {
		_, err := Dial(context.Background(), in, "tok")
		if err == nil {
			t.Fatalf("Dial(%q): expected error", in)
		}
		if !strings.Contains(err.Error(), "http") {
			t.Fatalf("Dial(%q): error should point at the scheme, got %v", in, err)
		}
	}
}
