// Package app is the root Bubble Tea model of mmcode: a small multi-file
// editor whose edits are mirrored by a session.Manager.
package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mm-code/mirror/internal/editor"
	"github.com/mm-code/mirror/internal/session"
	"github.com/mm-code/mirror/internal/theme"
	"github.com/mm-code/mirror/internal/views/debug"
	helpview "github.com/mm-code/mirror/internal/views/help"
	"github.com/mm-code/mirror/internal/views/status"
)

const (
	refreshInterval = 500 * time.Millisecond
	tabWidth        = 4
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayDebug
)

// Controller starts and stops mirroring. *session.Manager implements it.
type Controller interface {
	Start()
	Stop()
	Status() session.Status
}

type tickMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	ctrl  Controller
	ws    *editor.Workspace
	notes *Notifier

	keys   KeyMap
	help   help.Model
	width  int
	height int

	overlay Overlay
	top     int // first visible line of the active file
	last    session.State

	statusBar status.Model
	debugLog  debug.Model
	helpView  helpview.Model
}

// New creates the root model.
func New(ctrl Controller, ws *editor.Workspace, notes *Notifier) Model {
	m := Model{
		ctrl:      ctrl,
		ws:        ws,
		notes:     notes,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		helpView:  helpview.New(DefaultKeyMap().reference()),
		statusBar: status.New(),
		debugLog:  debug.New(),
	}
	m.refresh()
	return m
}

// Init starts the notice listener and the status refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.notes.Wait(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.help.Width = msg.Width
		m.follow()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case NoticeMsg:
		m.statusBar.SetNotice(msg.Text, msg.Err)
		kind := "ses"
		if msg.Err {
			kind = "err"
		}
		m.debugLog.Add(kind, msg.Text)
		m.refresh()
		return m, m.notes.Wait()

	case tickMsg:
		m.refresh()
		return m, tick()
	}

	return m, nil
}

// refresh pulls the session status and cursor into the status bar.
func (m *Model) refresh() {
	st := m.ctrl.Status()
	if st.State != m.last {
		m.debugLog.Add("ses", fmt.Sprintf("%s -> %s", m.last, st.State))
		m.last = st.State
	}
	m.statusBar.SetStatus(st)

	m.statusBar.File = ""
	if doc, ok := m.ws.ActiveDocument(); ok {
		m.statusBar.File = doc.FileName
	}
	m.statusBar.Cursor, _ = m.ws.ActiveSelection()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.ctrl.Stop()
		return m, tea.Quit
	}

	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.ScrollUp):
			m.debugLog.ScrollUp(1)
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.ScrollDn):
			m.debugLog.ScrollDown(1)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil
	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil
	case key.Matches(msg, m.keys.Save):
		m.save()
	case key.Matches(msg, m.keys.NextFile):
		m.ws.Next()
	case key.Matches(msg, m.keys.PrevFile):
		m.ws.Prev()
	default:
		m.edit(msg)
	}

	m.refresh()
	m.follow()
	return m, nil
}

func (m *Model) toggle() {
	if m.ctrl.Status().Active {
		m.ctrl.Stop()
		m.statusBar.SetNotice("MM stopped.", false)
		m.debugLog.Add("ses", "MM stopped.")
		return
	}
	m.ctrl.Start()
	m.debugLog.Add("ses", "MM started")
}

func (m *Model) save() {
	doc, ok := m.ws.ActiveDocument()
	if !ok {
		return
	}
	if err := m.ws.Save(); err != nil {
		m.statusBar.SetNotice(err.Error(), true)
		m.debugLog.Add("err", err.Error())
		return
	}
	msg := "Saved " + filepath.Base(doc.FileName) + "."
	m.statusBar.SetNotice(msg, false)
	m.debugLog.Add("ed", msg)
}

// edit applies an editing or cursor key to the workspace.
func (m *Model) edit(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.ws.Move(editor.MoveUp)
	case key.Matches(msg, m.keys.Down):
		m.ws.Move(editor.MoveDown)
	case key.Matches(msg, m.keys.Left):
		m.ws.Move(editor.MoveLeft)
	case key.Matches(msg, m.keys.Right):
		m.ws.Move(editor.MoveRight)
	case key.Matches(msg, m.keys.LineStart):
		m.ws.Move(editor.MoveLineStart)
	case key.Matches(msg, m.keys.LineEnd):
		m.ws.Move(editor.MoveLineEnd)
	case key.Matches(msg, m.keys.Newline):
		m.ws.Insert("\n")
	case key.Matches(msg, m.keys.Indent):
		m.ws.Insert("\t")
	case key.Matches(msg, m.keys.Backspace):
		m.ws.Backspace()
	case key.Matches(msg, m.keys.Delete):
		m.ws.Delete()
	case msg.Type == tea.KeySpace:
		m.ws.Insert(" ")
	case msg.Type == tea.KeyRunes:
		m.ws.Insert(string(msg.Runes))
	}
}

// paneHeight is the number of editor rows between the tabs and the status bar.
func (m Model) paneHeight() int {
	h := m.height - 5 // tabs, status bar (3), footer
	if h < 1 {
		h = 1
	}
	return h
}

// follow scrolls so the cursor stays visible.
func (m *Model) follow() {
	cur, ok := m.ws.ActiveSelection()
	if !ok {
		m.top = 0
		return
	}
	h := m.paneHeight()
	if cur.Line < m.top {
		m.top = cur.Line
	}
	if cur.Line >= m.top+h {
		m.top = cur.Line - h + 1
	}
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var pane string
	switch m.overlay {
	case OverlayHelp:
		pane = m.helpView.View(m.width)
	case OverlayDebug:
		pane = m.debugLog.View(m.width, m.paneHeight())
	default:
		pane = m.renderEditor()
	}

	sections := []string{
		m.renderTabs(),
		lipgloss.NewStyle().Height(m.paneHeight()).MaxHeight(m.paneHeight()).Render(pane),
		m.statusBar.View(),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs() string {
	paths, active := m.ws.Files()
	if len(paths) == 0 {
		return theme.StyleDimmed.Render(" no files")
	}
	tabs := make([]string, len(paths))
	for i, p := range paths {
		style := theme.StyleTab
		if i == active {
			style = theme.StyleActiveTab
		}
		tabs[i] = style.Render(filepath.Base(p))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderEditor() string {
	lines := m.ws.Lines()
	if lines == nil {
		return theme.StyleDimmed.Render("  No file open. Start with: mmcode edit <file>...")
	}
	cur, _ := m.ws.ActiveSelection()

	end := m.top + m.paneHeight()
	if end > len(lines) {
		end = len(lines)
	}
	maxCols := m.width - 8
	if maxCols < 10 {
		maxCols = 10
	}

	rows := make([]string, 0, end-m.top)
	for i := m.top; i < end; i++ {
		col := -1
		if i == cur.Line {
			col = editor.RuneCol(cur.LineText, cur.Column)
		}
		num := theme.StyleLineNumber.Render(fmt.Sprintf("%d", i+1))
		rows = append(rows, num+renderLine(lines[i], col, maxCols))
	}
	return strings.Join(rows, "\n")
}

// renderLine draws one line with the cursor at col, or no cursor when col
// is negative. Tabs are expanded.
func renderLine(line string, col, maxCols int) string {
	var b strings.Builder
	width := 0
	rs := []rune(line)
	for i, r := range rs {
		if width >= maxCols {
			break
		}
		cell := string(r)
		if r == '\t' {
			cell = strings.Repeat(" ", tabWidth)
		}
		if i == col {
			cell = theme.StyleCursor.Render(cell)
		}
		b.WriteString(cell)
		width += lipgloss.Width(cell)
	}
	if col >= len(rs) {
		b.WriteString(theme.StyleCursor.Render(" "))
	}
	return b.String()
}
