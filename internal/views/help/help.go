// Package help renders the keybinding reference overlay.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mm-code/mirror/internal/theme"
)

// Entry is one row of the reference table.
type Entry struct {
	Key  string
	Desc string
}

// Markdown builds the reference document.
func Markdown(entries []Entry) string {
	var b strings.Builder
	b.WriteString("# mmcode\n\n")
	b.WriteString("Edits made here are mirrored to everyone in the room while MM is running.\n\n")
	b.WriteString("| Key | Action |\n|-----|--------|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| `%s` | %s |\n", e.Key, e.Desc)
	}
	return b.String()
}

// Model renders the reference once per terminal width.
type Model struct {
	entries []Entry
	cache   *cache
}

type cache struct {
	width   int
	out     string
	renders int
}

// New creates the overlay for entries.
func New(entries []Entry) Model {
	return Model{entries: entries, cache: &cache{}}
}

// View returns the styled reference for width, rendering only when the width
// changed since the last call.
func (m Model) View(width int) string {
	if m.cache.renders == 0 || m.cache.width != width {
		m.cache.width = width
		m.cache.out = render(m.entries, width)
		m.cache.renders++
	}
	return m.cache.out
}

// render styles the reference for width. If glamour fails the raw markdown is
// shown instead.
func render(entries []Entry, width int) string {
	md := Markdown(entries)
	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}

	body := md
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, rerr := r.Render(md); rerr == nil {
			body = strings.TrimRight(out, "\n")
		}
	}

	return theme.StyleBorder.
		Width(width-2).
		Padding(0, 1).
		Render(body + "\n" + lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("esc: close"))
}
