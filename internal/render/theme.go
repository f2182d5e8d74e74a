package render

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used for terminal output.
type Theme struct {
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Plain   lipgloss.Style
	Icons   Icons
}

// Icons are the status markers printed before verdict lines.
type Icons struct {
	Pass string
	Fail string
	Warn string
}

// NewTheme builds the default theme against a renderer, so styles respect
// that renderer's color profile.
func NewTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Primary: r.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		Success: r.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Warning: r.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Error:   r.NewStyle().Foreground(lipgloss.Color("196")), // red
		Muted:   r.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Bold:    r.NewStyle().Bold(true),
		Plain:   r.NewStyle(),
		Icons: Icons{
			Pass: "✓",
			Fail: "✗",
			Warn: "!",
		},
	}
}
