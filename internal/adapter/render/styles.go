package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bkyoung/diffscope/internal/domain"
)

var (
	colorRed    = lipgloss.Color("#ff5555")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorDim    = lipgloss.Color("#6272a4")
	colorOrange = lipgloss.Color("#ffb86c")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorOrange)

	severityCriticalStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorRed)

	severityHighStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	severityMediumStyle = lipgloss.NewStyle().
				Foreground(colorOrange)

	severityLowStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	severityInfoStyle = lipgloss.NewStyle().
				Foreground(colorDim)
)

func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return severityCriticalStyle
	case domain.SeverityHigh:
		return severityHighStyle
	case domain.SeverityMedium:
		return severityMediumStyle
	case domain.SeverityLow:
		return severityLowStyle
	default:
		return severityInfoStyle
	}
}
