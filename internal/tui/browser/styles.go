package browser

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/mfx/internal/models"
)

var (
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	tabStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	favStyle    = lipgloss.NewStyle().Foreground(warningColor)

	levelStyles = map[Level]lipgloss.Style{
		LevelInfo:    lipgloss.NewStyle().Foreground(successColor),
		LevelWarning: lipgloss.NewStyle().Foreground(warningColor),
		LevelError:   lipgloss.NewStyle().Foreground(errorColor),
	}

	statusStyles = map[models.ProfileStatus]lipgloss.Style{
		models.StatusActive:     lipgloss.NewStyle().Foreground(successColor),
		models.StatusInactive:   lipgloss.NewStyle().Foreground(errorColor),
		models.StatusUnverified: lipgloss.NewStyle().Foreground(mutedColor),
	}
)
