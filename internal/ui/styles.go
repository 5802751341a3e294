package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. One accent color keeps the display calm.
const (
	colorAccent   = "39"  // blue
	colorGray     = "245" // labels
	colorDarkGray = "238" // borders
	colorGreen    = "42"  // completed tables
)

// Styles holds the TUI styles.
type Styles struct {
	Header lipgloss.Style
	Label  lipgloss.Style
	Active lipgloss.Style
	Done   lipgloss.Style
	Panel  lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Active: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Done:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorDarkGray)).
			Padding(0, 1),
	}
}

// NoColorStyles returns a style set with no colors applied.
func NoColorStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true),
		Label:  lipgloss.NewStyle(),
		Active: lipgloss.NewStyle().Bold(true),
		Done:   lipgloss.NewStyle(),
		Panel:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
}
