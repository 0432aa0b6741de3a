// Package theme provides the Lip Gloss color palette and reusable styles
// for the mmcode terminal UI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Connection colors.
var (
	ColorConnected  = lipgloss.Color("#22c55e")
	ColorConnecting = lipgloss.Color("#d97706")
	ColorIdle       = lipgloss.Color("#6b7280")
	ColorFailed     = lipgloss.Color("#dc2626")
)

// Debug log kind colors.
var (
	ColorKindSession = lipgloss.Color("#2563eb")
	ColorKindEditor  = lipgloss.Color("#7c3aed")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorAccent  = lipgloss.Color("#06b6d4")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleTab = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(ColorDimmed)

	StyleActiveTab = lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(ColorBright).
		Background(ColorBorder)

	StyleCursor = lipgloss.NewStyle().Reverse(true)

	StyleLineNumber = lipgloss.NewStyle().
		Foreground(ColorBorder).
		Width(5).
		Align(lipgloss.Right).
		PaddingRight(1)
)

// StateColor returns the color for a connection state name.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "connected":
		return ColorConnected
	case "connecting":
		return ColorConnecting
	case "failed":
		return ColorFailed
	default:
		return ColorIdle
	}
}

// KindColor returns the color for a debug log kind.
func KindColor(kind string) lipgloss.Color {
	switch kind {
	case "ses":
		return ColorKindSession
	case "err":
		return ColorDanger
	case "ed":
		return ColorKindEditor
	default:
		return ColorDimmed
	}
}
