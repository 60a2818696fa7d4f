package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"trainingload/internal/analysis"
	"trainingload/internal/service"
)

// SessionDetailModel is the session detail screen model
type SessionDetailModel struct {
	queryService *service.QueryService
	units        Units
	sessionID    string
	detail       *service.SessionDetail
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewSessionDetailModel creates a new session detail model
func NewSessionDetailModel(qs *service.QueryService, units Units, sessionID string, width, height int) SessionDetailModel {
	m := SessionDetailModel{
		queryService: qs,
		units:        units,
		sessionID:    sessionID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	}

	return m
}

// Init initializes the session detail screen
func (m SessionDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type sessionDetailLoadedMsg struct {
	detail *service.SessionDetail
	err    error
}

func (m SessionDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.GetSessionDetail(m.sessionID)
	return sessionDetailLoadedMsg{detail: detail, err: err}
}

// Update handles messages
func (m SessionDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
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
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadDetail
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the session detail screen
func (m SessionDetailModel) View() string {
	if m.loading {
		return "\n  Loading session details..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m SessionDetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}

	sections := []string{m.renderHeader(), m.renderStress()}

	if m.detail.Narrative != "" {
		sections = append(sections, m.renderTrainingEffect())
	}
	if len(m.detail.Session.SensorWarnings) > 0 {
		sections = append(sections, m.renderWarnings())
	}
	if len(m.detail.Laps) > 0 {
		sections = append(sections, m.renderLaps())
	}
	if len(m.detail.Splits) > 0 && m.detail.Session.Sport == analysis.SportRunning {
		sections = append(sections, m.renderSplits())
	}
	if hasZoneTime(m.detail.HRZones) {
		sections = append(sections, m.renderHRZones())
	}
	if len(m.detail.PowerData) > 5 && hasNonZero(m.detail.PowerData) {
		sections = append(sections, m.renderChart("Power Over Time (W)", m.detail.PowerData))
	}
	if len(m.detail.PaceData) > 5 && m.detail.Session.Sport == analysis.SportRunning {
		sections = append(sections, m.renderChart(fmt.Sprintf("Pace Over Time (%s)", m.units.PaceLabel()), m.units.ConvertPaceData(m.detail.PaceData)))
	}
	if len(m.detail.HRData) > 5 && hasNonZero(m.detail.HRData) {
		sections = append(sections, m.renderChart("Heart Rate Over Time (bpm)", m.detail.HRData))
	}
	if len(m.detail.PersonalBests) > 0 {
		sections = append(sections, m.renderPersonalBests())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SessionDetailModel) renderHeader() string {
	s := m.detail.Session
	title := cardTitleStyle.Render(s.Name)

	date := s.Date.Format("Monday, January 2, 2006 at 3:04 PM")
	subtitle := mutedStyle.Render(fmt.Sprintf("%s  •  %s", s.Sport, date))

	stats := fmt.Sprintf("%s  •  %s  •  %s",
		m.units.FormatDistance(s.DistanceMeters),
		service.FormatDuration(int(s.DurationSeconds)),
		m.units.FormatSessionSpeed(s.Sport, movingOrElapsed(s), s.DistanceMeters),
	)
	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m SessionDetailModel) renderStress() string {
	s := m.detail.Session
	lines := []string{sectionTitleStyle.Render("Training Stress")}

	lines = append(lines, fmt.Sprintf("  TSS:                  %.1f (%s)", s.TSS, s.StressMethod))
	if s.NormalizedPower != nil {
		lines = append(lines, fmt.Sprintf("  Normalized Power:     %d W", *s.NormalizedPower))
	}
	if s.IntensityFactor != nil {
		lines = append(lines, fmt.Sprintf("  Intensity Factor:     %.2f", *s.IntensityFactor))
	}
	if s.AvgPower != nil {
		lines = append(lines, fmt.Sprintf("  Average Power:        %.0f W", *s.AvgPower))
	}
	if s.GradeAdjustedPace != nil {
		lines = append(lines, fmt.Sprintf("  Grade Adjusted Pace:  %s/%s", m.units.FormatPace(*s.GradeAdjustedPace), m.units.DistanceLabel()))
	}
	if s.AvgHeartRate != nil {
		lines = append(lines, fmt.Sprintf("  Average HR:           %.0f bpm", *s.AvgHeartRate))
	}
	if s.MaxHeartRate != nil {
		lines = append(lines, fmt.Sprintf("  Max HR:               %.0f bpm", *s.MaxHeartRate))
	}
	if s.AvgCadence != nil {
		lines = append(lines, fmt.Sprintf("  Average Cadence:      %.0f", *s.AvgCadence))
	}
	if s.ElevationGain > 0 {
		lines = append(lines, fmt.Sprintf("  Elevation Gain:       %.0f m", s.ElevationGain))
	}

	if c := s.TSSComparison; c != nil {
		line := fmt.Sprintf("  Device TSS:           %.1f (%+.1f%%, %s confidence)", c.Device, c.DifferencePct, c.Confidence)
		switch c.Confidence {
		case analysis.ConfidenceLow:
			line = errorStyle.Render(line)
		case analysis.ConfidenceModerate:
			line = warningStyle.Render(line)
		}
		lines = append(lines, line)
		if c.Warning != "" {
			lines = append(lines, warningStyle.Render("  "+c.Warning))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderTrainingEffect() string {
	s := m.detail.Session
	lines := []string{sectionTitleStyle.Render("Training Effect")}

	lines = append(lines,
		fmt.Sprintf("  Aerobic:    %.1f  %s", *s.AerobicEffect, m.detail.AerobicLabel),
		fmt.Sprintf("  Anaerobic:  %.1f  %s", *s.AnaerobicEffect, m.detail.AnaerobicLabel),
		"  "+RenderProgressBar(*s.AerobicEffect/5, 30)+mutedStyle.Render(" aerobic"),
		"  "+RenderProgressBar(*s.AnaerobicEffect/5, 30)+mutedStyle.Render(" anaerobic"),
		"",
		indent(lipgloss.NewStyle().Width(70).Render(m.detail.Narrative)),
		"",
	)
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderWarnings() string {
	lines := []string{warningStyle.Bold(true).Render("Sensor Warnings")}
	for _, w := range m.detail.Session.SensorWarnings {
		lines = append(lines, warningStyle.Render("  ! "+w))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderLaps() string {
	lines := []string{sectionTitleStyle.Render("Laps")}

	header := fmt.Sprintf("  %-4s  %-9s  %9s  %8s  %9s  %6s", "Lap", "Type", "Distance", "Time", "Pace", "Max HR")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for _, la := range m.detail.Laps {
		pace := "-"
		if la.Pace != nil {
			pace = m.units.FormatPace(*la.Pace)
		}
		maxHR := "-"
		if la.Lap.MaxHeartRate != nil {
			maxHR = fmt.Sprintf("%.0f", *la.Lap.MaxHeartRate)
		}

		row := fmt.Sprintf("  %-4d  %-9s  %9s  %8s  %9s  %6s",
			la.Lap.Index+1,
			la.Lap.Intensity,
			m.units.FormatDistance(la.Lap.Distance),
			service.FormatDuration(int(la.Lap.MovingTime)),
			pace,
			maxHR,
		)
		if la.IsInterval {
			row = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true).Render(row)
		}
		lines = append(lines, row)
	}

	if len(m.detail.Intervals) > 0 {
		lines = append(lines, "", fmt.Sprintf("  %d intervals", len(m.detail.Intervals)))
		for _, pair := range m.detail.Intervals {
			if pair.HRRecovery != nil {
				lines = append(lines, fmt.Sprintf("    lap %d: HR recovered %.0f bpm", pair.Active.Lap.Index+1, *pair.HRRecovery))
			}
		}
	}

	p := m.detail.Pacing
	if p.DriftPct != nil {
		lines = append(lines, fmt.Sprintf("  Pacing: %s (%+.1f%%)", p.Trend, *p.DriftPct))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderSplits() string {
	lines := []string{sectionTitleStyle.Render("Kilometer Splits")}

	header := fmt.Sprintf("  %-4s  %8s  %6s", "Km", "Pace", "HR")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	fastest := 0
	for _, s := range m.detail.Splits {
		if s.Duration > 0 && (fastest == 0 || s.Duration < fastest) {
			fastest = s.Duration
		}
	}

	for _, s := range m.detail.Splits {
		hr := "-"
		if s.AvgHR > 0 {
			hr = fmt.Sprintf("%.0f", s.AvgHR)
		}
		row := fmt.Sprintf("  %-4d  %8s  %6s", s.Km, s.Pace, hr)
		if s.Duration == fastest {
			row = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true).Render(row)
		}
		lines = append(lines, row)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderHRZones() string {
	title := fmt.Sprintf("HR Zone Distribution (based on max HR %d)", m.detail.ConfiguredMax)
	lines := []string{sectionTitleStyle.Render(title)}

	zoneColors := []lipgloss.Color{
		lipgloss.Color("#10B981"), // Zone 1
		lipgloss.Color("#3B82F6"), // Zone 2
		lipgloss.Color("#F59E0B"), // Zone 3
		lipgloss.Color("#EF4444"), // Zone 4
		lipgloss.Color("#9333EA"), // Zone 5
	}

	maxBarWidth := 30
	for i, z := range m.detail.HRZones {
		barWidth := int(z.Percent / 100 * float64(maxBarWidth))
		if barWidth < 1 && z.Seconds > 0 {
			barWidth = 1
		}

		bar := lipgloss.NewStyle().Foreground(zoneColors[i%len(zoneColors)]).Render(strings.Repeat("█", barWidth))
		label := fmt.Sprintf("  Z%d %-20s", z.Zone, z.Name)
		lines = append(lines, fmt.Sprintf("%s%s %5.1f%% (%s)", label, bar, z.Percent, formatHours(float64(z.Seconds))))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderChart(title string, data []float64) string {
	lines := []string{sectionTitleStyle.Render(title)}

	if len(data) > 60 {
		data = downsample(data, 60)
	}
	data = trimTrailingZeros(data)

	if len(data) > 2 {
		lines = append(lines, asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(50),
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderPersonalBests() string {
	lines := []string{sectionHeader("Records Held By This Session", 60)}

	for _, pb := range m.detail.PersonalBests {
		d := service.FormatPersonalBest(pb)
		lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(
			fmt.Sprintf("  %s %s: %s", categoryTitle(pb.Category), d.Label, d.Value)))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func categoryTitle(c analysis.PBCategory) string {
	switch c {
	case analysis.CategoryPeakPower:
		return "Peak Power"
	case analysis.CategoryFastestDistance:
		return "Fastest"
	}
	return "Record"
}

func hasZoneTime(zones []service.HRZoneTime) bool {
	for _, z := range zones {
		if z.Seconds > 0 {
			return true
		}
	}
	return false
}

func downsample(data []float64, targetLen int) []float64 {
	if len(data) <= targetLen {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := 0; i < targetLen; i++ {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if end > len(data) {
			end = len(data)
		}

		sum := 0.0
		count := 0
		for j := start; j < end; j++ {
			if data[j] > 0 {
				sum += data[j]
				count++
			}
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}

	return result
}

func trimTrailingZeros(data []float64) []float64 {
	end := len(data)
	for end > 0 && data[end-1] == 0 {
		end--
	}
	return data[:end]
}
