// Package render is the pure mapping from task records to a terminal
// fragment. It holds no state: the CLI and the TUI both feed it whatever the
// last fetch returned.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"taskroom-cli/internal/model"
)

// EmptyPlaceholder is rendered for an empty task list.
const EmptyPlaceholder = "No tasks found."

// CompletedMarker flags a done task. Rendering keys off status only; titles
// and descriptions never influence it.
const CompletedMarker = "✓ done"

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	doneTitleStyle = lipgloss.NewStyle().Bold(true).Strikethrough(true).Foreground(ac("243", "240"))
	doneStyle      = lipgloss.NewStyle().Foreground(ac("28", "42"))
	metaStyle      = lipgloss.NewStyle().Foreground(ac("240", "245"))
	idStyle        = lipgloss.NewStyle().Foreground(ac("240", "243"))
)

// Clean scrubs untrusted text (titles, descriptions, chat messages) before it
// reaches the terminal: ANSI escape sequences and control characters in
// server-supplied strings would otherwise write straight into the user's
// terminal state. Tabs are kept, newlines are the caller's business.
func Clean(s string) string {
	s = xansi.Strip(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Task renders one task: id, title, completed marker when done, then the
// optional description and due date. The id line is what `tasks done` and
// `tasks rm` take as their argument.
func Task(t model.Task) string {
	var b strings.Builder

	title := Clean(strings.TrimSpace(t.Title))
	head := idStyle.Render(fmt.Sprintf("#%d", t.ID)) + " "
	if t.Status == model.StatusDone {
		head += doneTitleStyle.Render(title) + "  " + doneStyle.Render(CompletedMarker)
	} else {
		head += titleStyle.Render(title)
	}
	b.WriteString(head)

	if desc := Clean(strings.TrimSpace(t.Description)); desc != "" {
		b.WriteString("\n    " + desc)
	}
	if t.DueDate != nil && !t.DueDate.IsZero() {
		b.WriteString("\n    " + metaStyle.Render("Due: "+t.DueDate.Display()))
	}
	return b.String()
}

// Tasks renders the whole list, one item per task, empty input yielding the
// fixed placeholder.
func Tasks(tasks []model.Task) string {
	if len(tasks) == 0 {
		return EmptyPlaceholder
	}
	items := make([]string, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, Task(t))
	}
	return strings.Join(items, "\n")
}

// ChatLine renders one chat log line, scrubbed the same way task content is.
func ChatLine(line string) string {
	return Clean(line)
}
