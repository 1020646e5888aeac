package picker

import "github.com/charmbracelet/lipgloss"

// Color Palette
// Single source of truth for picker colors.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // primary accent
	coralPink   = lipgloss.Color("#FFCCCB") // secondary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // success/confirm states
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	namespaceStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Bold(true)

	projectStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	leafStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	selectedStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)
