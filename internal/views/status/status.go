package status

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/mm-code/mirror/internal/editor"
	"github.com/mm-code/mirror/internal/session"
	"github.com/mm-code/mirror/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	State     session.State
	Running   bool // a session exists, connected or not
	Retrying  bool
	File      string
	Cursor    editor.Cursor
	Notice    string
	NoticeErr bool
	Width     int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// SetNotice shows msg until the next notice replaces it.
func (m *Model) SetNotice(msg string, isErr bool) {
	m.Notice = msg
	m.NoticeErr = isErr
}

// SetStatus copies the connection fields of st.
func (m *Model) SetStatus(st session.Status) {
	m.State = st.State
	m.Running = st.Active
	m.Retrying = st.RetryPending
}

// Toggle is the label of the start/stop control.
func (m Model) Toggle() string {
	if m.Running {
		return "Stop MM"
	}
	return "Run MM"
}

func (m Model) connLabel() (string, lipgloss.Color) {
	switch {
	case m.State == session.Connected:
		return "● Connected", theme.StateColor("connected")
	case m.State == session.Connecting:
		return "◌ Connecting...", theme.StateColor("connecting")
	case m.Retrying:
		return "○ Waiting to retry", theme.StateColor("failed")
	case m.Running:
		return "○ Disconnected", theme.StateColor("failed")
	default:
		return "○ Offline", theme.StateColor("idle")
	}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	label, color := m.connLabel()
	connStr := lipgloss.NewStyle().Foreground(color).Render(label)
	toggle := theme.StyleSelected.Render("[" + m.Toggle() + "]")

	file := "no file"
	if m.File != "" {
		file = filepath.Base(m.File)
	}
	pos := fmt.Sprintf("%s  Ln %d, Col %d", file, m.Cursor.Line+1, m.Cursor.Column+1)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := toggle + " " + connStr + sep + pos
	if m.Notice != "" {
		color := theme.ColorDimmed
		if m.NoticeErr {
			color = theme.ColorDanger
		}
		content += sep + lipgloss.NewStyle().Foreground(color).Render(m.Notice)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
