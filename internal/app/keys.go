package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/mm-code/mirror/internal/views/help"
)

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	Toggle    key.Binding
	Save      key.Binding
	NextFile  key.Binding
	PrevFile  key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	LineStart key.Binding
	LineEnd   key.Binding
	Newline   key.Binding
	Indent    key.Binding
	Backspace key.Binding
	Delete    key.Binding
	Help      key.Binding
	Debug     key.Binding
	ScrollUp  key.Binding
	ScrollDn  key.Binding
	Escape    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "run/stop MM"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		NextFile: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "next file"),
		),
		PrevFile: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "prev file"),
		),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "cursor up")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "cursor down")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "cursor left")),
		Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "cursor right")),
		LineStart: key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "line start")),
		LineEnd:   key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "line end")),
		Newline:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new line")),
		Indent:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "insert tab")),
		Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "delete left")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete right")),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Debug: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "event log"),
		),
		ScrollUp: key.NewBinding(key.WithKeys("pgup", "up"), key.WithHelp("pgup", "older")),
		ScrollDn: key.NewBinding(key.WithKeys("pgdown", "down"), key.WithHelp("pgdn", "newer")),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Save, k.NextFile, k.Help, k.Debug, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Save, k.NextFile, k.PrevFile},
		{k.Up, k.Down, k.Left, k.Right, k.LineStart, k.LineEnd},
		{k.Newline, k.Indent, k.Backspace, k.Delete},
		{k.Help, k.Debug, k.Escape, k.Quit},
	}
}

// reference flattens FullHelp into rows for the help overlay.
func (k KeyMap) reference() []help.Entry {
	var out []help.Entry
	for _, col := range k.FullHelp() {
		for _, b := range col {
			h := b.Help()
			out = append(out, help.Entry{Key: h.Key, Desc: h.Desc})
		}
	}
	return out
}
