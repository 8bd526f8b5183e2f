// ABOUTME: Panel listing live playground sessions with their ages and render counts.
// ABOUTME: Session rows are maintained from created/closed/render events, not polled.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// sessionRow tracks display state for one live session.
type sessionRow struct {
	id      string
	started time.Time
	renders int
}

// SessionPanelModel lists live sessions in creation order.
type SessionPanelModel struct {
	rows   map[string]*sessionRow
	width  int
	height int
	now    time.Time
}

// NewSessionPanelModel creates an empty session panel.
func NewSessionPanelModel() SessionPanelModel {
	return SessionPanelModel{
		rows: make(map[string]*sessionRow),
		now:  time.Now(),
	}
}

// Add registers a new session.
func (m *SessionPanelModel) Add(id string, started time.Time) {
	m.rows[id] = &sessionRow{id: id, started: started}
}

// Remove drops a session.
func (m *SessionPanelModel) Remove(id string) {
	delete(m.rows, id)
}

// CountRender increments the render counter for a session.
func (m *SessionPanelModel) CountRender(id string) {
	if row, ok := m.rows[id]; ok {
		row.renders++
	}
}

// Len returns the number of live sessions shown.
func (m SessionPanelModel) Len() int {
	return len(m.rows)
}

// SetNow updates the clock used for age display.
func (m *SessionPanelModel) SetNow(now time.Time) {
	m.now = now
}

// SetSize sets the available dimensions.
func (m *SessionPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the session list panel.
func (m SessionPanelModel) View() string {
	var lines []string
	if len(m.rows) == 0 {
		lines = append(lines, "No live sessions")
	} else {
		ordered := make([]*sessionRow, 0, len(m.rows))
		for _, row := range m.rows {
			ordered = append(ordered, row)
		}
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].started.Before(ordered[j].started)
		})
		for _, row := range ordered {
			age := m.now.Sub(row.started).Round(time.Second)
			lines = append(lines, fmt.Sprintf("%s %s %s",
				SessionIDStyle.Render(shortSessionID(row.id)),
				SessionAgeStyle.Render(age.String()),
				lipgloss.NewStyle().Render(fmt.Sprintf("%d renders", row.renders)),
			))
		}
	}

	rendered := TitleStyle.Render("SESSIONS") + "\n" + strings.Join(lines, "\n")

	return BorderStyle.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(rendered)
}
