// Package tui is the interactive terminal front end.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainingload/internal/config"
	"trainingload/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenSessions
	ScreenSessionDetail
	ScreenRecords
	ScreenStats
	ScreenImport
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard     DashboardModel
	sessions      SessionsModel
	sessionDetail SessionDetailModel
	records       RecordsModel
	stats         StatsModel
	importScreen  ImportModel
	help          HelpModel

	// Services
	queryService *service.QueryService
	units        Units
	now          func() time.Time

	// Window dimensions
	width  int
	height int
}

// NewApp creates a new App with all dependencies
func NewApp(queryService *service.QueryService, importService *service.ImportService, display config.DisplayConfig) *App {
	units := NewUnits(display)
	now := time.Now
	return &App{
		screen:       ScreenDashboard,
		queryService: queryService,
		units:        units,
		now:          now,
		dashboard:    NewDashboardModel(queryService, units, now),
		sessions:     NewSessionsModel(queryService, units),
		records:      NewRecordsModel(queryService, units, 0, 0),
		stats:        NewStatsModel(queryService, units, now),
		importScreen: NewImportModel(importService),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// capturesKeys reports whether the current screen is taking text input
func (a *App) capturesKeys() bool {
	switch a.screen {
	case ScreenImport:
		return a.importScreen.Busy()
	case ScreenSessions:
		return a.sessions.Editing()
	}
	return false
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.capturesKeys() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.queryService, a.units, a.now)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenSessions
				return a, a.sessions.Init()
			case "3":
				a.screen = ScreenRecords
				a.records = NewRecordsModel(a.queryService, a.units, a.width, a.height)
				return a, a.records.Init()
			case "4":
				a.screen = ScreenStats
				return a, a.stats.Init()
			case "5":
				a.screen = ScreenImport
				cmd := a.importScreen.input.Focus()
				return a, cmd
			case "?":
				if a.screen != ScreenHelp {
					a.prevScreen = a.screen
					a.screen = ScreenHelp
				}
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenSessionDetail:
					a.screen = ScreenSessions
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Scrolling screens size their viewports even when hidden
		var cmds []tea.Cmd
		m, cmd := a.records.Update(msg)
		a.records = m.(RecordsModel)
		cmds = append(cmds, cmd)
		m, cmd = a.sessionDetail.Update(msg)
		a.sessionDetail = m.(SessionDetailModel)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case OpenSessionDetailMsg:
		a.screen = ScreenSessionDetail
		a.sessionDetail = NewSessionDetailModel(a.queryService, a.units, msg.SessionID, a.width, a.height)
		return a, a.sessionDetail.Init()

	case ImportCompleteMsg:
		// Reload in the background so the summary stays on screen
		a.dashboard = NewDashboardModel(a.queryService, a.units, a.now)
		a.sessions = NewSessionsModel(a.queryService, a.units)
		return a, a.dashboard.Init()

	case dashboardDataMsg:
		m, cmd := a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
		return a, cmd
	}

	// Delegate to current screen
	var cmd tea.Cmd
	var m tea.Model
	switch a.screen {
	case ScreenDashboard:
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenSessions:
		m, cmd = a.sessions.Update(msg)
		a.sessions = m.(SessionsModel)
	case ScreenSessionDetail:
		m, cmd = a.sessionDetail.Update(msg)
		a.sessionDetail = m.(SessionDetailModel)
	case ScreenRecords:
		m, cmd = a.records.Update(msg)
		a.records = m.(RecordsModel)
	case ScreenStats:
		m, cmd = a.stats.Update(msg)
		a.stats = m.(StatsModel)
	case ScreenImport:
		m, cmd = a.importScreen.Update(msg)
		a.importScreen = m.(ImportModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenSessions:
		content = a.sessions.View()
	case ScreenSessionDetail:
		content = a.sessionDetail.View()
	case ScreenRecords:
		content = a.records.View()
	case ScreenStats:
		content = a.stats.View()
	case ScreenImport:
		content = a.importScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Training Load")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Sessions", ScreenSessions},
		{"3", "Records", ScreenRecords},
		{"4", "Stats", ScreenStats},
		{"5", "Import", ScreenImport},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		active := a.screen == item.screen || (item.screen == ScreenSessions && a.screen == ScreenSessionDetail)
		if active {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}
