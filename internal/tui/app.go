package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskroom-cli/internal/api"
	"taskroom-cli/internal/chat"
	"taskroom-cli/internal/model"
	"taskroom-cli/internal/session"
)

// Pane identifies which half of the UI owns the keyboard.
type Pane int

const (
	PaneTasks Pane = iota
	PaneChat
)

type Config struct {
	ServerURL   string
	Credential  session.Credential
	InitialPane Pane
}

// Run starts the interactive client and blocks until the user quits.
func Run(cfg Config) error {
	p := tea.NewProgram(newAppModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type tasksLoadedMsg struct {
	tasks []model.Task
	err   error
}

type taskMutatedMsg struct {
	err error
}

type chatConnectedMsg struct {
	tr  *chat.WSTransport
	err error
}

type chatEventMsg struct {
	ev model.ChatEvent
	ok bool
}

type appModel struct {
	cfg    Config
	client *api.Client

	width  int
	height int
	pane   Pane

	tasksPane tasksPane
	chatPane  chatPane
}

func newAppModel(cfg Config) appModel {
	m := appModel{
		cfg:    cfg,
		client: api.New(cfg.ServerURL, cfg.Credential.Token),
		pane:   cfg.InitialPane,
	}
	m.tasksPane = newTasksPane()
	m.chatPane = newChatPane()
	m.applyFocus()
	return m
}

func (m *appModel) applyFocus() {
	m.tasksPane.setFocused(m.pane == PaneTasks)
	m.chatPane.setFocused(m.pane == PaneChat)
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.tasksPane.spin.Tick,
		m.loadTasks(),
		m.connectChat(),
	)
}

// loadTasks re-fetches the list with the current search term. Overlapping
// loads are allowed; the last one to resolve wins the rendered state.
func (m appModel) loadTasks() tea.Cmd {
	client := m.client
	search := m.tasksPane.searchInput.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		tasks, err := client.ListTasks(ctx, search)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m appModel) connectChat() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		tr, err := chat.Dial(ctx, cfg.ServerURL, cfg.Credential.Token)
		return chatConnectedMsg{tr: tr, err: err}
	}
}

func waitForChatEvent(tr *chat.WSTransport) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-tr.Events()
		return chatEventMsg{ev: ev, ok: ok}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.tasksPane.spin, cmd = m.tasksPane.spin.Update(msg)
		return m, cmd

	case tasksLoadedMsg:
		m.updateTasksLoaded(msg)
		return m, nil

	case taskMutatedMsg:
		if msg.err != nil {
			m.tasksPane.errMsg = msg.err.Error()
			return m, nil
		}
		// Mutation done: re-fetch; the UI only ever shows fetched state.
		m.tasksPane.loading = true
		return m, m.loadTasks()

	case chatConnectedMsg:
		if msg.err != nil {
			m.chatPane.connErr = fmt.Sprintf("chat unavailable: %v", msg.err)
			return m, nil
		}
		m.chatPane.session = chat.NewSession(m.cfg.Credential.Username, msg.tr)
		m.chatPane.transport = msg.tr
		m.chatPane.connErr = ""
		return m, waitForChatEvent(msg.tr)

	case chatEventMsg:
		if !msg.ok {
			m.chatPane.connErr = "chat connection closed"
			m.chatPane.transport = nil
			return m, nil
		}
		if msg.ev.Event == model.EventMessage {
			m.chatPane.session.Receive(model.ChatMessage{User: msg.ev.User, Text: msg.ev.Text})
			m.chatPane.refreshLog()
		}
		return m, waitForChatEvent(m.chatPane.transport)

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.chatPane.transport != nil {
			_ = m.chatPane.transport.Close()
		}
		return m, tea.Quit

	case "tab":
		// The task form owns tab for field cycling.
		if !(m.pane == PaneTasks && m.tasksPane.form != nil) {
			if m.pane == PaneTasks {
				m.pane = PaneChat
			} else {
				m.pane = PaneTasks
			}
			m.applyFocus()
			return m, nil
		}
	}

	if m.pane == PaneTasks {
		return m.updateTasksKey(msg)
	}
	return m.updateChatKey(msg)
}

func (m *appModel) resize() {
	paneWidth := m.width/2 - 4
	if !m.sideBySide() {
		paneWidth = m.width - 4
	}
	if paneWidth < 20 {
		paneWidth = 20
	}
	paneHeight := m.height - 4
	if paneHeight < 8 {
		paneHeight = 8
	}
	m.tasksPane.resize(paneWidth, paneHeight)
	m.chatPane.resize(paneWidth, paneHeight)
}

func (m appModel) sideBySide() bool { return m.width >= 100 }

func (m appModel) View() string {
	title := titleBarStyle.Render("taskroom") +
		statusLineStyle.Render(fmt.Sprintf("%s @ %s", m.cfg.Credential.Username, m.cfg.ServerURL))

	tasksTab := tabStyle
	chatTab := tabStyle
	if m.pane == PaneTasks {
		tasksTab = tabActive
	} else {
		chatTab = tabActive
	}
	tabs := tasksTab.Render("Tasks") + chatTab.Render("Chat") +
		helpStyle.Render("  tab: switch · ctrl+c: quit")

	tasks := m.tasksPaneView()
	chatV := m.chatPaneView()

	var body string
	if m.sideBySide() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, tasks, chatV)
	} else if m.pane == PaneTasks {
		body = tasks
	} else {
		body = chatV
	}

	return title + "\n" + tabs + "\n" + body
}
