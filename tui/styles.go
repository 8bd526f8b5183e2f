// ABOUTME: Defines lipgloss style constants for the console panels, status bar, and log lines.
// ABOUTME: Provides styleForEvent to map event types to their display styles.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Log event colors
	LogTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	LogEventStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	LogErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	LogSuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	LogNeutralStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// Session list
	SessionIDStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	SessionAgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)

// styleForEvent returns the lipgloss style for an event type.
func styleForEvent(evtType EventType) lipgloss.Style {
	switch evtType {
	case EventSessionCreated, EventImport, EventExport, EventWatch:
		return LogEventStyle
	case EventRenderDone, EventSnapshotSaved:
		return LogSuccessStyle
	case EventError:
		return LogErrorStyle
	case EventSessionClosed:
		return LogNeutralStyle
	default:
		return LogEventStyle
	}
}
