package style

import "github.com/charmbracelet/lipgloss"

// Reader palette. The fragment being narrated is drawn in AccentColor on
// Base, the rest of the page in Subtext.
var (
	Base    = lipgloss.Color("#1e1e2e")
	Text    = lipgloss.Color("#cdd6f4")
	Subtext = lipgloss.Color("#a6adc8")
	Overlay = lipgloss.Color("#6c7086")

	Mauve    = lipgloss.Color("#cba6f7")
	Lavender = lipgloss.Color("#b4befe")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Red      = lipgloss.Color("#f38ba8")
)

// Roles.
var (
	AccentColor    = Mauve
	SecondaryColor = Lavender
	WarningColor   = Yellow
	ErrorColor     = Red
	HiRed          = Red
	FaintColor     = Overlay
)
