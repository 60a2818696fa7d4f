package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"trainingload/internal/analysis"
	"trainingload/internal/service"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units
	now          func() time.Time
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units, now func() time.Time) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		now:          now,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboard(m.now())
	return dashboardDataMsg{data: data, err: err}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.data == nil || !m.data.HasLoad {
		return "\n  No sessions yet. Press '5' to import FIT files."
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderLoadCard(), "  ", m.renderCoachingCard(), "  ", m.renderWeekCard())
	sections = append(sections, topRow)

	if len(m.data.CTLHistory) > 2 {
		sections = append(sections, m.renderLoadChart())
	}
	if hasNonZero(m.data.WeeklyTSS) {
		sections = append(sections, m.renderWeeklyChart())
	}

	sections = append(sections, m.renderRecentSessions())
	sections = append(sections, statusStyle.Render("Press 'r' to refresh, '2' for sessions, '5' to import"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderLoadCard() string {
	title := cardTitleStyle.Render("Training Load")
	c := m.data.Current

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.1f", c.CTL), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.1f", c.ATL), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%.1f", c.TSB), signed(c.TSB)),
		RenderMetric("ACWR", fmt.Sprintf("%.2f", c.ACWR), ""),
		RenderMetric("Today's TSS", fmt.Sprintf("%.0f", c.TSS), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(32).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderCoachingCard() string {
	title := cardTitleStyle.Render("Coaching")
	rec := m.data.Coaching
	if rec == nil {
		return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Not enough data")))
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Left, metricLabelStyle.Render("Form"), formStyle(rec.Status).Render(string(rec.Status))),
		lipgloss.JoinHorizontal(lipgloss.Left, metricLabelStyle.Render("Injury risk"), riskStyle(rec.InjuryRisk).Render(string(rec.InjuryRisk))),
		RenderMetric("Load state", string(rec.LoadState), ""),
	}
	if rec.LoadState == analysis.LoadInsufficientData {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%d of %d days of history", rec.DataMaturityDays, analysis.DataMaturityDays)))
	}
	lines = append(lines, "", lipgloss.NewStyle().Width(38).Render(rec.Advice))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("Last 7 Days")

	lines := []string{
		RenderMetric("Sessions", fmt.Sprintf("%d", m.data.WeekSessionCount), ""),
		RenderMetric("TSS", fmt.Sprintf("%.0f", m.data.WeekTSS), ""),
		RenderMetric("Distance", m.units.FormatDistance(m.data.WeekDistanceKm*metersPerKm), ""),
		RenderMetric("Time", formatHours(m.data.WeekDuration), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(30).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderLoadChart() string {
	days := len(m.data.CTLHistory)
	title := cardTitleStyle.Render(fmt.Sprintf("Fitness / Fatigue / Form - last %d days", days))

	graph := asciigraph.PlotMany(
		[][]float64{m.data.CTLHistory, m.data.ATLHistory, m.data.TSBHistory},
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.Caption("blue CTL  red ATL  green TSB"),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderWeeklyChart() string {
	labels := m.data.WeeklyLabels
	caption := ""
	if len(labels) > 0 {
		caption = labels[0] + " to " + labels[len(labels)-1]
	}
	title := cardTitleStyle.Render("Weekly TSS")

	graph := asciigraph.Plot(m.data.WeeklyTSS,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentSessions() string {
	title := cardTitleStyle.Render("Recent Sessions")

	if len(m.data.RecentSessions) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No sessions yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-7s  %-8s  %-22s  %9s  %8s  %5s",
		"Date", "Sport", "Name", "Distance", "Time", "TSS"))

	rows := []string{header}
	for i, s := range m.data.RecentSessions {
		if i >= 5 {
			break
		}
		row := tableRowStyle.Render(fmt.Sprintf("%-7s  %-8s  %-22s  %9s  %8s  %5.0f",
			s.Date.Format("Jan 02"),
			s.Sport,
			truncateName(s.Name, 22),
			m.units.FormatDistance(s.DistanceMeters),
			service.FormatDuration(int(s.DurationSeconds)),
			s.TSS,
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

// formatHours renders seconds as "3h 05m" or "45m"
func formatHours(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func signed(v float64) string {
	switch {
	case v > 0:
		return "↑"
	case v < 0:
		return "↓"
	}
	return ""
}

func hasNonZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return true
		}
	}
	return false
}

// indent prefixes every line of s with two spaces
func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
