// ABOUTME: Message and event types flowing through the TUI message loop.
// ABOUTME: Server-side activity is delivered as ServerEvent values wrapped in tea.Msg types.
package tui

import "time"

// EventType classifies server activity shown in the console.
type EventType string

const (
	EventSessionCreated EventType = "session.created"
	EventSessionClosed  EventType = "session.closed"
	EventRenderDone     EventType = "render.done"
	EventSnapshotSaved  EventType = "snapshot.saved"
	EventImport         EventType = "bundle.import"
	EventExport         EventType = "bundle.export"
	EventWatch          EventType = "watch.change"
	EventError          EventType = "error"
)

// ServerEvent is one line of server activity.
type ServerEvent struct {
	Type      EventType
	SessionID string
	Detail    string
	Timestamp time.Time
}

// ServerEventMsg wraps a ServerEvent for the Bubble Tea update loop.
type ServerEventMsg struct {
	Event ServerEvent
}

// TickMsg drives periodic UI refreshes (uptime, session ages).
type TickMsg struct {
	Time time.Time
}
