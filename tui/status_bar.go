// ABOUTME: Single-line status bar showing bind address, session count, and uptime.
// ABOUTME: Rendered at the bottom of the console layout.
package tui

import (
	"fmt"
	"time"
)

// StatusBarModel renders the one-line server status summary.
type StatusBarModel struct {
	bind     string
	sessions int
	started  time.Time
	now      time.Time
	width    int
}

// NewStatusBarModel creates a status bar for a server bound to the given address.
func NewStatusBarModel(bind string) StatusBarModel {
	now := time.Now()
	return StatusBarModel{bind: bind, started: now, now: now}
}

// SetSessions updates the live session count.
func (m *StatusBarModel) SetSessions(n int) {
	m.sessions = n
}

// SetNow updates the clock used for the uptime display.
func (m *StatusBarModel) SetNow(now time.Time) {
	m.now = now
}

// SetWidth sets the render width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar.
func (m StatusBarModel) View() string {
	uptime := m.now.Sub(m.started).Round(time.Second)
	line := fmt.Sprintf("scratchpen http://%s | %d sessions | up %s | q to quit",
		m.bind, m.sessions, uptime)
	return StatusBarStyle.Width(m.width).Render(line)
}
