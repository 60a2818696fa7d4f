package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

type keyHelp struct {
	key  string
	desc string
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{cardTitleStyle.Render("Keyboard Shortcuts")}

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Sessions list"},
		{"3", "Personal bests"},
		{"4", "Weekly / monthly stats"},
		{"5", "Import FIT files"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	}))

	sections = append(sections, m.renderSection("Sessions", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"pgdn / pgup", "Next / previous page"},
		{"enter", "Session details"},
		{"n", "Rename session"},
		{"r", "Refresh"},
	}))

	sections = append(sections, m.renderSection("Stats", []keyHelp{
		{"w / m", "Weekly / monthly periods"},
	}))

	sections = append(sections, m.renderSection("Import", []keyHelp{
		{"enter", "Start import"},
		{"esc", "Leave the path input, or cancel a running import"},
	}))

	sections = append(sections, m.renderMetricsHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionTitleStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	lines := []string{"", sectionTitleStyle.Render("Metrics Explained"), ""}

	metrics := []struct {
		name string
		desc string
	}{
		{"TSS (Training Stress Score)", "Session stress. 100 = one hour at threshold. From power, else heart rate, else duration."},
		{"NP / IF", "Normalized power smooths surges. IF = NP / FTP."},
		{"CTL (Fitness)", "42 day exponentially weighted average of daily TSS."},
		{"ATL (Fatigue)", "7 day exponentially weighted average of daily TSS."},
		{"TSB (Form)", "CTL - ATL. Positive = fresh, very negative = overloaded."},
		{"ACWR", "ATL / CTL. 0.8 to 1.3 is the sweet spot. Needs 28 days of history."},
		{"Training Effect", "0 to 5 aerobic and anaerobic impact, scaled by current fitness."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
