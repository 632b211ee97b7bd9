// Package browse implements a terminal issue browser for a checked
// beatmapset: a scrollable issue list beside the rendered documentation of
// the selected issue's check.
package browse

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

// Severity glyphs convey meaning without relying on color alone.
var glyphs = map[issue.Severity]string{
	issue.Minor:      "·",
	issue.Warning:    "!",
	issue.Problem:    "✗",
	issue.Unrankable: "⊘",
	issue.Error:      "⚠",
}

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen   = lipgloss.Color("42")
	colorRed     = lipgloss.Color("196")
	colorYellow  = lipgloss.Color("214")
	colorBlue    = lipgloss.Color("39")
	colorCyan    = lipgloss.Color("51")
	colorDim     = lipgloss.Color("240")
	colorWhite   = lipgloss.Color("255")
	colorMagenta = lipgloss.Color("201")
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan).
	Padding(0, 1)

var severityStyles = map[issue.Severity]lipgloss.Style{
	issue.Minor:      lipgloss.NewStyle().Foreground(colorDim),
	issue.Warning:    lipgloss.NewStyle().Foreground(colorYellow),
	issue.Problem:    lipgloss.NewStyle().Foreground(colorRed),
	issue.Unrankable: lipgloss.NewStyle().Foreground(colorMagenta).Bold(true),
	issue.Error:      lipgloss.NewStyle().Foreground(colorRed).Bold(true),
}

// --- List styles ---

var (
	rowNormal = lipgloss.NewStyle().
			Foreground(colorWhite)

	rowCurrent = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	anchorStyle = lipgloss.NewStyle().
			Foreground(colorBlue)
)

// --- Panel styles ---

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)

	panelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Padding(0, 1)
)

// --- Key bar styles ---

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	keyBarStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

var (
	matchStyle = lipgloss.NewStyle().
			Background(colorYellow).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	passStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)
)
