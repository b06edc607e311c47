// Package tui provides the terminal practice timer: the full countdown
// experience without a server or a browser.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorText   = lipgloss.Color("#FFFFFF")
	ColorMuted  = lipgloss.Color("#9999AA")
	ColorHelpBg = lipgloss.Color("#14141F")

	// TimeStyle renders the remaining-time readout over the urgency color.
	// The background is derived per frame from the color ramp.
	TimeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Padding(1, 4)

	OverlayStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	FlashStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Background(ColorHelpBg).
			Padding(0, 1)
)
