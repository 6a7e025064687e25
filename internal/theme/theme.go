package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

// TitleStyle is used for the banner line of interactive commands.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// SuccessStyle marks completed steps and positive results.
var SuccessStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// ErrorStyle marks failed steps.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// WarnStyle is used for troubleshooting hints.
var WarnStyle = lipgloss.NewStyle().
	Foreground(ColorYellow)

// LabelStyle is used for field names in printed records.
var LabelStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)

// SubtleStyle is used for secondary detail text.
var SubtleStyle = lipgloss.NewStyle().
	Foreground(ColorGray)
