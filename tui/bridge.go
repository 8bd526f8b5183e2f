// ABOUTME: Bridge connecting server goroutines to the Bubble Tea message loop.
// ABOUTME: Provides EventBridge for event injection and a tick command for periodic refresh.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// EventBridge wraps a tea.Program's Send method so server code can inject
// activity events into the Bubble Tea message loop without importing tea.
type EventBridge struct {
	send func(msg tea.Msg)
}

// NewEventBridge creates an EventBridge that sends messages via the given
// function. Typically called with program.Send as the argument.
func NewEventBridge(send func(msg tea.Msg)) *EventBridge {
	return &EventBridge{send: send}
}

// Notify sends a server event to the TUI. Safe to call from any goroutine.
func (b *EventBridge) Notify(evtType EventType, sessionID, detail string) {
	b.send(ServerEventMsg{Event: ServerEvent{
		Type:      evtType,
		SessionID: sessionID,
		Detail:    detail,
		Timestamp: time.Now(),
	}})
}

// TickCmd returns a tea.Cmd that sends a TickMsg after the given interval.
// Used for uptime and session age refreshes.
func TickCmd(interval time.Duration) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(interval)
		return TickMsg{Time: time.Now()}
	}
}
