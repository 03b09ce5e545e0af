package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write writes machine-readable output for CLI commands.
//
// Supported formats:
// - json (default)
//
// The human "text" format is rendered by the callers (internal/render) before
// reaching this package; Write only ever sees structured values.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
