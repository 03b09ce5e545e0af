package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width. Creating a renderer with WithAutoStyle
	// can trigger terminal capability queries that may block on some
	// terminals, so we pick the style once and cache per width.
	mdRenderers = map[int]*glamour.TermRenderer{}
)

func markdownStyle() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// renderMarkdown renders a task description for the detail box. On any
// renderer failure the raw text comes back; a description must never make
// the detail view disappear.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdRendererMu.Lock()
	r := mdRenderers[width]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(markdownStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[width] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
