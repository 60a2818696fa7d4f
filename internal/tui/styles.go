package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trainingload/internal/analysis"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#2563EB") // Blue
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
	freshColor     = lipgloss.Color("#38BDF8") // Sky
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return fg(c).Bold(true)
}

// Styles
var (
	headerStyle      = bold(textColor).Background(primaryColor).Padding(0, 1).MarginBottom(1)
	navStyle         = fg(mutedColor).MarginBottom(1)
	navActiveStyle   = bold(primaryColor)
	navInactiveStyle = fg(mutedColor)

	cardStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(1, 2)
	cardTitleStyle    = bold(primaryColor).MarginBottom(1)
	sectionTitleStyle = bold(secondaryColor)

	metricLabelStyle = fg(mutedColor).Width(16)
	metricValueStyle = bold(textColor)
	mutedStyle       = fg(mutedColor)

	tableHeaderStyle   = bold(primaryColor).Padding(0, 1)
	tableRowStyle      = lipgloss.NewStyle().Padding(0, 1)
	tableSelectedStyle = bold(textColor).Background(primaryColor).Padding(0, 1)

	statusStyle  = fg(mutedColor).MarginTop(1)
	errorStyle   = fg(errorColor)
	successStyle = fg(secondaryColor)
	warningStyle = fg(warningColor)

	helpKeyStyle  = bold(primaryColor)
	helpDescStyle = fg(mutedColor)

	progressFullStyle  = fg(secondaryColor)
	progressEmptyStyle = fg(mutedColor)
)

// formStyle colors a form state from blue (fresh) through green to red (overload)
func formStyle(status analysis.FormStatus) lipgloss.Style {
	switch status {
	case analysis.FormFresh, analysis.FormDetraining:
		return bold(freshColor)
	case analysis.FormOptimal:
		return bold(secondaryColor)
	case analysis.FormOverload:
		return bold(errorColor)
	}
	return bold(textColor)
}

func riskStyle(risk analysis.RiskLevel) lipgloss.Style {
	switch risk {
	case analysis.RiskHigh:
		return bold(errorColor)
	case analysis.RiskModerate:
		return bold(warningColor)
	}
	return bold(secondaryColor)
}

// RenderMetric renders a metric with label, value, and optional trend
func RenderMetric(label, value, trend string) string {
	trendStyle := mutedStyle
	if len(trend) > 0 {
		switch []rune(trend)[0] {
		case '+', '↑':
			trendStyle = successStyle
		case '-', '↓':
			trendStyle = errorStyle
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
		trendStyle.Render(" "+trend),
	)
}

// RenderProgressBar renders an ASCII progress bar
func RenderProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return progressFullStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

func sectionHeader(title string, width int) string {
	dividerLen := width - len([]rune(title)) - 4
	if dividerLen < 0 {
		dividerLen = 0
	}
	return sectionTitleStyle.Render("── " + title + " " + strings.Repeat("─", dividerLen))
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
