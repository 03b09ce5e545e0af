package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"taskroom-cli/internal/chat"
	"taskroom-cli/internal/render"
)

type chatPane struct {
	focused bool
	width   int
	height  int

	session   *chat.Session
	transport *chat.WSTransport
	connErr   string

	// alert is the blocking validation message ("join a room first", empty
	// room name). It replaces the status line until the next valid action.
	alert string

	roomInput textinput.Model
	msgInput  textinput.Model
	logView   viewport.Model
}

func newChatPane() chatPane {
	p := chatPane{}
	p.roomInput = textinput.New()
	p.roomInput.Placeholder = "Room name"
	p.roomInput.Prompt = "# "
	p.msgInput = textinput.New()
	p.msgInput.Placeholder = "Message"
	p.msgInput.Prompt = "> "
	p.logView = viewport.New(40, 10)
	return p
}

func (p *chatPane) setFocused(f bool) {
	p.focused = f
	if !f {
		p.roomInput.Blur()
		p.msgInput.Blur()
		return
	}
	p.focusInput()
}

func (p *chatPane) inRoom() bool {
	if p.session == nil {
		return false
	}
	_, _, ok := p.session.Room()
	return ok
}

func (p *chatPane) focusInput() {
	if p.inRoom() {
		p.roomInput.Blur()
		p.msgInput.Focus()
	} else {
		p.msgInput.Blur()
		p.roomInput.Focus()
	}
}

func (p *chatPane) resize(w, h int) {
	p.width = w
	p.height = h
	p.roomInput.Width = w - 6
	p.msgInput.Width = w - 6
	logHeight := h - 8
	if logHeight < 3 {
		logHeight = 3
	}
	p.logView.Width = w - 4
	p.logView.Height = logHeight
	p.refreshLog()
}

// refreshLog re-renders the visible log and scrolls to its end, so new
// messages always land in view.
func (p *chatPane) refreshLog() {
	if p.session == nil {
		return
	}
	lines := p.session.Log()
	wrapped := make([]string, 0, len(lines))
	width := p.logView.Width
	if width < 10 {
		width = 10
	}
	for _, l := range lines {
		wrapped = append(wrapped, wordwrap.String(render.ChatLine(l), width))
	}
	p.logView.SetContent(strings.Join(wrapped, "\n"))
	p.logView.GotoBottom()
}

func (m appModel) updateChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &m.chatPane

	if p.session == nil {
		// Not connected (yet); nothing to drive.
		return m, nil
	}

	if !p.inRoom() {
		switch msg.String() {
		case "enter":
			m.enterRoom(p.session.Join)
			return m, nil
		case "ctrl+n":
			m.enterRoom(p.session.Create)
			return m, nil
		case "esc":
			p.alert = ""
			return m, nil
		}
		var cmd tea.Cmd
		p.roomInput, cmd = p.roomInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter":
		err := p.session.Send(p.msgInput.Value())
		var ve *chat.ValidationError
		if errors.As(err, &ve) {
			p.alert = ve.Msg
			return m, nil
		}
		if err != nil {
			p.connErr = err.Error()
			return m, nil
		}
		p.alert = ""
		p.msgInput.SetValue("")
		return m, nil
	case "ctrl+l":
		if err := p.session.Leave(); err != nil {
			p.connErr = err.Error()
		}
		p.alert = ""
		p.refreshLog()
		p.focusInput()
		return m, nil
	case "esc":
		p.alert = ""
		return m, nil
	}

	var cmd tea.Cmd
	p.msgInput, cmd = p.msgInput.Update(msg)
	return m, cmd
}

// enterRoom runs either Join or Create with the typed room name, routing
// validation failures to the alert line.
func (m *appModel) enterRoom(action func(string) error) {
	p := &m.chatPane
	err := action(p.roomInput.Value())
	var ve *chat.ValidationError
	if errors.As(err, &ve) {
		p.alert = ve.Msg
		return
	}
	if err != nil {
		p.connErr = err.Error()
		return
	}
	p.alert = ""
	p.roomInput.SetValue("")
	p.focusInput()
}

func (m appModel) chatPaneView() string {
	p := m.chatPane
	var b strings.Builder

	switch {
	case p.alert != "":
		b.WriteString(errorLineStyle.Render(p.alert) + "\n")
	case p.connErr != "":
		b.WriteString(errorLineStyle.Render(p.connErr) + "\n")
	case p.session != nil && p.session.Status() != "":
		b.WriteString(roomStatusStyle.Render(render.Clean(p.session.Status())) + "\n")
	default:
		b.WriteString(statusLineStyle.Render("No room") + "\n")
	}

	b.WriteString(p.logView.View() + "\n")

	if p.inRoom() {
		b.WriteString(p.msgInput.View() + "\n")
		if p.focused {
			b.WriteString(helpStyle.Render("enter: send · ctrl+l: leave room"))
		}
	} else {
		b.WriteString(p.roomInput.View() + "\n")
		if p.focused {
			b.WriteString(helpStyle.Render("enter: join · ctrl+n: create"))
		}
	}

	return paneBorderStyle.Width(p.width).Render(b.String())
}
