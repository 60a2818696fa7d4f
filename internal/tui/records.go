package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainingload/internal/analysis"
	"trainingload/internal/service"
)

// RecordsModel is the personal bests screen model
type RecordsModel struct {
	queryService *service.QueryService
	units        Units
	data         *service.PBsData
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewRecordsModel creates a new records model
func NewRecordsModel(qs *service.QueryService, units Units, width, height int) RecordsModel {
	m := RecordsModel{
		queryService: qs,
		units:        units,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the records screen
func (m RecordsModel) Init() tea.Cmd {
	return m.loadRecords
}

type recordsLoadedMsg struct {
	data *service.PBsData
	err  error
}

func (m RecordsModel) loadRecords() tea.Msg {
	data, err := m.queryService.GetPersonalBests()
	return recordsLoadedMsg{data: data, err: err}
}

// Update handles messages
func (m RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadRecords
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the records screen
func (m RecordsModel) View() string {
	if m.loading {
		return "\n  Loading personal bests..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m RecordsModel) renderContent() string {
	empty := mutedStyle.Render("  No personal bests yet. Import some sessions first.")
	if m.data == nil {
		return empty
	}

	sections := []string{"", cardTitleStyle.Render("Personal Bests"), ""}

	if len(m.data.PeakPower) > 0 {
		sections = append(sections, m.renderTable("Peak Power", "Window", m.data.PeakPower))
	}
	if len(m.data.FastestDistance) > 0 {
		sections = append(sections, m.renderTable("Fastest Distances", "Distance", m.data.FastestDistance))
	}
	if len(m.data.Other) > 0 {
		sections = append(sections, m.renderOther())
	}

	if len(m.data.PeakPower) == 0 && len(m.data.FastestDistance) == 0 && len(m.data.Other) == 0 {
		sections = append(sections, empty)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RecordsModel) renderTable(title, column string, rows []service.PersonalBestDisplay) string {
	lines := []string{sectionHeader(title, 64)}

	header := fmt.Sprintf("  %-9s  %-14s  %10s  %-12s  %s", "Sport", column, "Best", "Date", "Session")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for _, pb := range rows {
		lines = append(lines, fmt.Sprintf("  %-9s  %-14s  %10s  %-12s  %s",
			pb.Record.Sport,
			pb.Label,
			m.value(pb),
			pb.Date,
			truncateName(pb.SessionName, 28),
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m RecordsModel) renderOther() string {
	lines := []string{sectionHeader("Other Achievements", 64)}

	for _, pb := range m.data.Other {
		lines = append(lines, fmt.Sprintf("  %-9s  %-16s  %s  (%s)", pb.Record.Sport, pb.Label, m.value(pb), pb.Date))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// value renders distances in the display unit and leaves watts and times as formatted
func (m RecordsModel) value(pb service.PersonalBestDisplay) string {
	if pb.Record.Category == analysis.CategoryLongest {
		return m.units.FormatDistance(pb.Record.Value)
	}
	return pb.Value
}
