// ABOUTME: Top-level Bubble Tea AppModel composing the activity log, session list, and status bar.
// ABOUTME: Implements tea.Model (Init, Update, View) and routes server events to the panels.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FocusTarget indicates which panel currently has keyboard focus.
type FocusTarget int

const (
	FocusLog FocusTarget = iota
	FocusSessions
)

// AppModel is the top-level Bubble Tea model for the server console.
type AppModel struct {
	log       LogPanelModel
	sessions  SessionPanelModel
	statusBar StatusBarModel

	focus  FocusTarget
	width  int
	height int
}

// NewAppModel creates an AppModel for a server bound to the given address.
func NewAppModel(bind string) AppModel {
	return AppModel{
		log:       NewLogPanelModel(200),
		sessions:  NewSessionPanelModel(),
		statusBar: NewStatusBarModel(bind),
		focus:     FocusLog,
	}
}

// Init implements tea.Model. Starts the refresh tick loop.
func (m AppModel) Init() tea.Cmd {
	return TickCmd(time.Second)
}

// Update implements tea.Model. Routes incoming messages to the panels.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ServerEventMsg:
		return m.handleServerEvent(msg)

	case TickMsg:
		m.sessions.SetNow(msg.Time)
		m.statusBar.SetNow(msg.Time)
		return m, TickCmd(time.Second)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// View implements tea.Model. Renders the console layout.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.width < 40 || m.height < 10 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 40x10.", m.width, m.height)
	}

	statusBarHeight := 1
	panelHeight := m.height - statusBarHeight

	sessionWidth := m.width * 35 / 100
	if sessionWidth < 20 {
		sessionWidth = 20
	}
	logWidth := m.width - sessionWidth
	if logWidth < 20 {
		logWidth = 20
	}

	m.log.SetSize(logWidth, panelHeight)
	m.sessions.SetSize(sessionWidth, panelHeight)
	m.statusBar.SetWidth(m.width)

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.sessions.View(), m.log.View())

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	return b.String()
}

// handleServerEvent routes an activity event to the panels.
func (m AppModel) handleServerEvent(msg ServerEventMsg) (tea.Model, tea.Cmd) {
	evt := msg.Event
	m.log.Append(evt)

	switch evt.Type {
	case EventSessionCreated:
		m.sessions.Add(evt.SessionID, evt.Timestamp)
	case EventSessionClosed:
		m.sessions.Remove(evt.SessionID)
	case EventRenderDone:
		m.sessions.CountRender(evt.SessionID)
	}
	m.statusBar.SetSessions(m.sessions.Len())

	return m, nil
}

// handleKeyMsg processes app-level keyboard shortcuts.
func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.focus == FocusLog {
			m.focus = FocusSessions
		} else {
			m.focus = FocusLog
		}
		m.log.SetFocused(m.focus == FocusLog)
		return m, nil
	}
	return m, nil
}
