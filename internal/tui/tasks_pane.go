package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"taskroom-cli/internal/model"
	"taskroom-cli/internal/render"
)

type tasksFocus int

const (
	focusList tasksFocus = iota
	focusSearch
)

// taskForm is the three-field add-task form. While open it owns the
// keyboard, tab included.
type taskForm struct {
	title textinput.Model
	desc  textinput.Model
	due   textinput.Model
	focus int
}

func newTaskForm() *taskForm {
	f := &taskForm{}
	f.title = textinput.New()
	f.title.Placeholder = "Title"
	f.title.Focus()
	f.desc = textinput.New()
	f.desc.Placeholder = "Description (markdown ok)"
	f.due = textinput.New()
	f.due.Placeholder = "Due (YYYY-MM-DD)"
	return f
}

func (f *taskForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.title, &f.desc, &f.due}
}

func (f *taskForm) cycle(dir int) {
	ins := f.inputs()
	ins[f.focus].Blur()
	f.focus = (f.focus + dir + len(ins)) % len(ins)
	ins[f.focus].Focus()
}

func (f *taskForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	in := f.inputs()[f.focus]
	*in, cmd = in.Update(msg)
	return cmd
}

type tasksPane struct {
	focused bool
	width   int
	height  int

	tasks   []model.Task
	cursor  int
	loading bool
	spin    spinner.Model

	focus       tasksFocus
	searchInput textinput.Model
	form        *taskForm

	errMsg string
}

func newTasksPane() tasksPane {
	p := tasksPane{loading: true}
	p.spin = spinner.New(spinner.WithSpinner(spinner.Dot))
	p.searchInput = textinput.New()
	p.searchInput.Placeholder = "Search tasks"
	p.searchInput.Prompt = "/ "
	return p
}

func (p *tasksPane) setFocused(f bool) {
	p.focused = f
	if !f {
		p.searchInput.Blur()
	}
}

func (p *tasksPane) resize(w, h int) {
	p.width = w
	p.height = h
	p.searchInput.Width = w - 4
}

func (p *tasksPane) selected() (model.Task, bool) {
	if p.cursor < 0 || p.cursor >= len(p.tasks) {
		return model.Task{}, false
	}
	return p.tasks[p.cursor], true
}

func (p *tasksPane) clampCursor() {
	if p.cursor >= len(p.tasks) {
		p.cursor = len(p.tasks) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (m *appModel) updateTasksLoaded(msg tasksLoadedMsg) {
	p := &m.tasksPane
	p.loading = false
	if msg.err != nil {
		// Keep whatever list we had; stale-but-labeled beats silently stale.
		p.errMsg = msg.err.Error()
		return
	}
	p.errMsg = ""
	p.tasks = msg.tasks
	p.clampCursor()
}

func (m appModel) completeSelected() tea.Cmd {
	t, ok := m.tasksPane.selected()
	if !ok {
		return nil
	}
	client := m.client
	id := t.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return taskMutatedMsg{err: client.CompleteTask(ctx, id)}
	}
}

func (m appModel) deleteSelected() tea.Cmd {
	t, ok := m.tasksPane.selected()
	if !ok {
		return nil
	}
	client := m.client
	id := t.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return taskMutatedMsg{err: client.DeleteTask(ctx, id)}
	}
}

func (m appModel) submitForm() (tea.Cmd, error) {
	f := m.tasksPane.form
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	var due *model.Date
	if v := strings.TrimSpace(f.due.Value()); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return nil, err
		}
		due = &d
	}
	client := m.client
	desc := f.desc.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_, err := client.CreateTask(ctx, title, desc, due)
		return taskMutatedMsg{err: err}
	}, nil
}

func (m appModel) updateTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &m.tasksPane

	if p.form != nil {
		switch msg.String() {
		case "esc":
			p.form = nil
			p.errMsg = ""
			return m, nil
		case "tab", "shift+tab":
			dir := 1
			if msg.String() == "shift+tab" {
				dir = -1
			}
			p.form.cycle(dir)
			return m, nil
		case "enter":
			cmd, err := m.submitForm()
			if err != nil {
				p.errMsg = err.Error()
				return m, nil
			}
			p.form = nil
			p.errMsg = ""
			p.loading = true
			return m, cmd
		}
		return m, p.form.update(msg)
	}

	if p.focus == focusSearch {
		switch msg.String() {
		case "esc":
			p.focus = focusList
			p.searchInput.Blur()
			return m, nil
		case "enter":
			p.focus = focusList
			p.searchInput.Blur()
			p.loading = true
			return m, m.loadTasks()
		}
		var cmd tea.Cmd
		p.searchInput, cmd = p.searchInput.Update(msg)
		// Live filtering: every keystroke re-queries, like typing in the
		// search box. The last response to arrive wins.
		p.loading = true
		return m, tea.Batch(cmd, m.loadTasks())
	}

	switch msg.String() {
	case "q":
		if m.chatPane.transport != nil {
			_ = m.chatPane.transport.Close()
		}
		return m, tea.Quit
	case "/":
		p.focus = focusSearch
		p.searchInput.Focus()
		return m, nil
	case "n":
		p.form = newTaskForm()
		return m, nil
	case "r":
		p.loading = true
		return m, m.loadTasks()
	case "j", "down":
		p.cursor++
		p.clampCursor()
		return m, nil
	case "k", "up":
		p.cursor--
		p.clampCursor()
		return m, nil
	case "c":
		p.loading = true
		return m, m.completeSelected()
	case "d":
		p.loading = true
		return m, m.deleteSelected()
	}
	return m, nil
}

func taskRow(t model.Task, width int) string {
	row := fmt.Sprintf("#%-4d %s", t.ID, render.Clean(strings.TrimSpace(t.Title)))
	if t.Status == model.StatusDone {
		row += "  " + render.CompletedMarker
	}
	return truncate.StringWithTail(row, uint(width), "…")
}

func (m appModel) tasksPaneView() string {
	p := m.tasksPane
	var b strings.Builder

	if p.form != nil {
		b.WriteString("New task\n\n")
		b.WriteString(p.form.title.View() + "\n")
		b.WriteString(p.form.desc.View() + "\n")
		b.WriteString(p.form.due.View() + "\n\n")
		b.WriteString(helpStyle.Render("tab: next field · enter: create · esc: cancel"))
		if p.errMsg != "" {
			b.WriteString("\n" + errorLineStyle.Render(p.errMsg))
		}
		return paneBorderStyle.Width(p.width).Render(b.String())
	}

	b.WriteString(p.searchInput.View() + "\n")

	if p.loading {
		b.WriteString(p.spin.View() + " loading…\n")
	}

	if len(p.tasks) == 0 && !p.loading {
		b.WriteString(faintIfDark(helpStyle).Render(render.EmptyPlaceholder) + "\n")
	} else {
		listHeight := p.height - 10
		if listHeight < 3 {
			listHeight = 3
		}
		start := 0
		if p.cursor >= listHeight {
			start = p.cursor - listHeight + 1
		}
		for i := start; i < len(p.tasks) && i < start+listHeight; i++ {
			row := taskRow(p.tasks[i], p.width-4)
			if i == p.cursor && p.focused {
				row = selectedRowStyle.Render(row)
			}
			b.WriteString(row + "\n")
		}
	}

	if t, ok := p.selected(); ok {
		b.WriteString("\n")
		if t.DueDate != nil && !t.DueDate.IsZero() {
			b.WriteString(statusLineStyle.Render("Due: "+t.DueDate.Display()) + "\n")
		}
		if desc := render.Clean(t.Description); desc != "" {
			b.WriteString(renderMarkdown(desc, p.width-4) + "\n")
		}
	}

	if p.errMsg != "" {
		b.WriteString(errorLineStyle.Render(p.errMsg) + "\n")
	}
	if p.focused {
		b.WriteString(helpStyle.Render("/: search · n: new · c: complete · d: delete · r: reload · q: quit"))
	}

	return paneBorderStyle.Width(p.width).Render(b.String())
}
