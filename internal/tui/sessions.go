package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainingload/internal/analysis"
	"trainingload/internal/service"
)

// SessionsModel is the sessions list screen model
type SessionsModel struct {
	queryService *service.QueryService
	units        Units
	sessions     []analysis.TrainingSession
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error

	renaming bool
	input    textinput.Model
}

// NewSessionsModel creates a new sessions model
func NewSessionsModel(qs *service.QueryService, units Units) SessionsModel {
	input := textinput.New()
	input.Placeholder = "new name"
	input.CharLimit = 80
	input.Width = 40

	return SessionsModel{
		queryService: qs,
		units:        units,
		pageSize:     15,
		loading:      true,
		input:        input,
	}
}

// Init initializes the sessions screen
func (m SessionsModel) Init() tea.Cmd {
	return m.loadPage
}

// Editing reports whether keystrokes belong to the rename input
func (m SessionsModel) Editing() bool {
	return m.renaming
}

type sessionsLoadedMsg struct {
	sessions []analysis.TrainingSession
	total    int
	err      error
}

type sessionRenamedMsg struct {
	err error
}

// OpenSessionDetailMsg asks the app to show one session
type OpenSessionDetailMsg struct {
	SessionID string
}

func (m SessionsModel) loadPage() tea.Msg {
	sessions, err := m.queryService.ListSessions(m.pageSize, m.offset)
	if err != nil {
		return sessionsLoadedMsg{err: err}
	}

	total, err := m.queryService.CountSessions()
	if err != nil {
		return sessionsLoadedMsg{err: err}
	}

	return sessionsLoadedMsg{sessions: sessions, total: total}
}

func (m SessionsModel) rename(id, name string) tea.Cmd {
	return func() tea.Msg {
		return sessionRenamedMsg{err: m.queryService.RenameSession(id, name)}
	}
}

// Update handles messages
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.sessions = msg.sessions
		m.total = msg.total
		if m.cursor >= len(m.sessions) {
			m.cursor = 0
		}
		return m, nil

	case sessionRenamedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.loading = true
		return m, m.loadPage

	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg)
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			} else if m.offset+len(m.sessions) < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "n":
			if s, ok := m.selected(); ok {
				m.renaming = true
				m.input.SetValue(s.Name)
				m.input.CursorEnd()
				cmd := m.input.Focus()
				return m, cmd
			}
		case "enter":
			if s, ok := m.selected(); ok {
				id := s.ID
				return m, func() tea.Msg {
					return OpenSessionDetailMsg{SessionID: id}
				}
			}
		}
	}
	return m, nil
}

func (m SessionsModel) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.renaming = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.renaming = false
		m.input.Blur()
		name := strings.TrimSpace(m.input.Value())
		s, ok := m.selected()
		if !ok || name == "" || name == s.Name {
			return m, nil
		}
		return m, m.rename(s.ID, name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SessionsModel) selected() (analysis.TrainingSession, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sessions) {
		return analysis.TrainingSession{}, false
	}
	return m.sessions[m.cursor], true
}

// View renders the sessions list
func (m SessionsModel) View() string {
	if m.loading {
		return "\n  Loading sessions..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.sessions) == 0 {
		return "\n  No sessions found. Press '5' to import FIT files."
	}

	var sections []string

	startNum := m.offset + 1
	endNum := m.offset + len(m.sessions)
	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("Sessions (%d-%d of %d)", startNum, endNum, m.total)))

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-8s  %-25s  %9s  %8s  %11s  %5s  %-4s",
		"Date", "Sport", "Name", "Distance", "Time", "Pace/Speed", "TSS", "Src"))
	sections = append(sections, header)

	for i, s := range m.sessions {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-8s  %-25s  %9s  %8s  %11s  %5.0f  %-4s",
			cursor,
			s.Date.Format("Jan 02 06"),
			s.Sport,
			truncateName(s.Name, 25),
			m.units.FormatDistance(s.DistanceMeters),
			service.FormatDuration(int(s.DurationSeconds)),
			m.units.FormatSessionSpeed(s.Sport, movingOrElapsed(s), s.DistanceMeters),
			s.TSS,
			stressSource(s.StressMethod),
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	if m.renaming {
		sections = append(sections, "", "  Rename: "+m.input.View(), statusStyle.Render("  enter: save  esc: cancel"))
	} else {
		sections = append(sections, statusStyle.Render("\n  enter: view details  n: rename  j/k: navigate  pgup/pgdn: page  r: refresh"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func movingOrElapsed(s analysis.TrainingSession) float64 {
	if s.MovingSeconds > 0 {
		return s.MovingSeconds
	}
	return s.DurationSeconds
}

// stressSource abbreviates how TSS was derived
func stressSource(method analysis.StressMethod) string {
	switch method {
	case analysis.StressPowerBased:
		return "pwr"
	case analysis.StressHeartRateBased:
		return "hr"
	}
	return "dur"
}
