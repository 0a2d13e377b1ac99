package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED") // Violet, like the web UI
	accentColor  = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Yellow
	dangerColor  = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray

	// Base styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	groupTitleStyle = lipgloss.NewStyle().
			Bold(true)

	// Tag chips
	chipStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#374151")).
			Background(lipgloss.Color("#E5E7EB"))

	chipSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(primaryColor)

	chipCursorStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4C1D95"))

	// Item list
	itemNameStyle = lipgloss.NewStyle().
			Bold(true)

	itemCursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	itemMetaStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	armedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dangerColor)

	// Tabs
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(mutedColor)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(primaryColor).
			Underline(true)

	// Messages
	statusStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	footerStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
