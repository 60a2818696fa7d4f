package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainingload/internal/service"
)

const loadBarWidth = 20

// StatsModel shows weekly or monthly volume and load
type StatsModel struct {
	queryService *service.QueryService
	units        Units
	now          func() time.Time

	periodType string                // "weekly" or "monthly"
	periods    []service.PeriodStats // newest first, empty periods dropped
	maxTSS     float64
	cursor     int // index into periods
	pageSize   int

	loading bool
	err     error
}

// NewStatsModel creates a new stats model
func NewStatsModel(qs *service.QueryService, units Units, now func() time.Time) StatsModel {
	return StatsModel{
		queryService: qs,
		units:        units,
		now:          now,
		periodType:   "weekly",
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the stats screen
func (m StatsModel) Init() tea.Cmd {
	return m.loadStats
}

type statsLoadedMsg struct {
	stats []service.PeriodStats
	err   error
}

func (m StatsModel) loadStats() tea.Msg {
	n := 104
	if m.periodType == "monthly" {
		n = 36
	}
	stats, err := m.queryService.GetPeriodStats(m.periodType, n, m.now())
	return statsLoadedMsg{stats: stats, err: err}
}

// Update handles messages
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.periods = nil
		m.maxTSS = 0
		for i := len(msg.stats) - 1; i >= 0; i-- {
			p := msg.stats[i]
			if p.SessionCount == 0 {
				continue
			}
			m.periods = append(m.periods, p)
			if p.TotalTSS > m.maxTSS {
				m.maxTSS = p.TotalTSS
			}
		}
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "w", "m":
			period := map[string]string{"w": "weekly", "m": "monthly"}[key]
			if period == m.periodType {
				return m, nil
			}
			m.periodType = period
			m.loading = true
			return m, m.loadStats
		case "r":
			m.loading = true
			return m, m.loadStats
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "pgup":
			m.moveCursor(-m.pageSize)
		case "pgdown":
			m.moveCursor(m.pageSize)
		}
	}
	return m, nil
}

func (m *StatsModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.periods) {
		m.cursor = len(m.periods) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// page returns the bounds of the page holding the cursor
func (m StatsModel) page() (start, end int) {
	start = m.cursor / m.pageSize * m.pageSize
	end = start + m.pageSize
	if end > len(m.periods) {
		end = len(m.periods)
	}
	return start, end
}

// View renders the stats screen
func (m StatsModel) View() string {
	if m.loading {
		return "\n  Loading stats..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	label := "Weekly"
	if m.periodType == "monthly" {
		label = "Monthly"
	}

	if len(m.periods) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			cardTitleStyle.Render(label+" Stats"),
			"\n  No data available. Import some sessions first.")
	}

	start, end := m.page()
	lines := []string{
		cardTitleStyle.Render(fmt.Sprintf("%s Stats (%d-%d of %d)", label, start+1, end, len(m.periods))),
		tableHeaderStyle.Render(fmt.Sprintf("   %-12s  %8s  %6s  %-*s  %10s  %8s  %6s",
			"Period", "Sessions", "TSS", loadBarWidth, "Load", "Distance", "Time", "Avg HR")),
	}

	for i := start; i < end; i++ {
		p := m.periods[i]

		hr := "-"
		if p.AvgHR > 0 {
			hr = fmt.Sprintf("%.0f", p.AvgHR)
		}
		share := 0.0
		if m.maxTSS > 0 {
			share = p.TotalTSS / m.maxTSS
		}

		marker := "  "
		style := tableRowStyle
		if i == m.cursor {
			marker = "> "
			style = tableSelectedStyle
		}

		lines = append(lines, style.Render(fmt.Sprintf("%s%-12s  %8d  %6.0f  ", marker, p.PeriodLabel, p.SessionCount, p.TotalTSS))+
			RenderProgressBar(share, loadBarWidth)+
			style.Render(fmt.Sprintf("  %10s  %8s  %6s",
				m.units.FormatDistance(p.TotalDistanceKm*metersPerKm), formatHours(p.TotalDuration), hr)))
	}

	lines = append(lines, statusStyle.Render("\n  w/m: weekly/monthly  j/k: navigate  pgup/pgdn: page  r: refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
