package tui

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"trainingload/internal/analysis"
	"trainingload/internal/config"
	"trainingload/internal/service"
)

func TestUnitsFormatPace(t *testing.T) {
	tests := []struct {
		name     string
		paceUnit string
		secPerKm float64
		want     string
	}{
		{"metric", "min/km", 300, "5:00"},
		{"imperial", "min/mi", 300, "8:03"},
		{"rounds to the second", "min/km", 299.6, "5:00"},
		{"missing", "min/km", 0, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUnits(config.DisplayConfig{PaceUnit: tt.paceUnit})
			if got := u.FormatPace(tt.secPerKm); got != tt.want {
				t.Errorf("FormatPace(%v) = %q, want %q", tt.secPerKm, got, tt.want)
			}
		})
	}
}

func TestUnitsFormatSessionSpeed(t *testing.T) {
	km := NewUnits(config.DisplayConfig{DistanceUnit: "km", PaceUnit: "min/km"})
	mi := NewUnits(config.DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"})

	tests := []struct {
		name    string
		units   Units
		sport   analysis.Sport
		seconds float64
		meters  float64
		want    string
	}{
		{"run in km", km, analysis.SportRunning, 1500, 5000, "5:00/km"},
		{"ride in km/h", km, analysis.SportCycling, 3600, 30000, "30.0 km/h"},
		{"ride in mph", mi, analysis.SportCycling, 3600, 1609.34 * 20, "20.0 mph"},
		{"swim per 100m", km, analysis.SportSwimming, 900, 1000, "1:30/100m"},
		{"no distance", km, analysis.SportRunning, 1500, 0, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.units.FormatSessionSpeed(tt.sport, tt.seconds, tt.meters); got != tt.want {
				t.Errorf("FormatSessionSpeed = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnitsConvertPaceData(t *testing.T) {
	metric := NewUnits(config.DisplayConfig{PaceUnit: "min/km"})
	data := []float64{5, 0, 6}
	if got := metric.ConvertPaceData(data); !reflect.DeepEqual(got, data) {
		t.Errorf("metric ConvertPaceData = %v, want unchanged", got)
	}

	imperial := NewUnits(config.DisplayConfig{PaceUnit: "min/mi"})
	got := imperial.ConvertPaceData(data)
	if got[1] != 0 || got[0] <= 8 || got[0] >= 8.1 {
		t.Errorf("imperial ConvertPaceData = %v", got)
	}
}

func TestDownsample(t *testing.T) {
	data := []float64{1, 3, 0, 0, 5, 7}
	got := downsample(data, 3)
	want := []float64{2, 0, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("downsample = %v, want %v", got, want)
	}

	short := []float64{1, 2}
	if got := downsample(short, 3); !reflect.DeepEqual(got, short) {
		t.Errorf("short input should pass through, got %v", got)
	}
}

func TestTrimTrailingZeros(t *testing.T) {
	if got := trimTrailingZeros([]float64{1, 0, 2, 0, 0}); !reflect.DeepEqual(got, []float64{1, 0, 2}) {
		t.Errorf("trimTrailingZeros = %v", got)
	}
	if got := trimTrailingZeros([]float64{0, 0}); len(got) != 0 {
		t.Errorf("all zeros should trim to empty, got %v", got)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0m"},
		{2700, "45m"},
		{3600*3 + 300, "3h 05m"},
	}
	for _, tt := range tests {
		if got := formatHours(tt.seconds); got != tt.want {
			t.Errorf("formatHours(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("Short", 10); got != "Short" {
		t.Errorf("got %q", got)
	}
	if got := truncateName("Sweet Spot Intervals", 10); got != "Sweet S..." {
		t.Errorf("got %q", got)
	}
}

func TestSessionsModel_OpenDetail(t *testing.T) {
	m := NewSessionsModel(nil, NewUnits(config.DisplayConfig{}))
	model, _ := m.Update(sessionsLoadedMsg{
		sessions: []analysis.TrainingSession{{ID: "a", Name: "One"}, {ID: "b", Name: "Two"}},
		total:    2,
	})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(OpenSessionDetailMsg)
	if !ok || msg.SessionID != "b" {
		t.Errorf("msg = %#v, want detail for b", msg)
	}
}

func TestSessionsModel_RenameCapturesKeys(t *testing.T) {
	m := NewSessionsModel(nil, NewUnits(config.DisplayConfig{}))
	model, _ := m.Update(sessionsLoadedMsg{sessions: []analysis.TrainingSession{{ID: "a", Name: "One"}}, total: 1})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	sm := model.(SessionsModel)
	if !sm.Editing() {
		t.Fatal("expected rename mode")
	}
	if !strings.Contains(sm.View(), "Rename:") {
		t.Error("rename prompt not shown")
	}

	model, _ = sm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(SessionsModel).Editing() {
		t.Error("esc should leave rename mode")
	}
}

func TestStatsModel_DropsEmptyPeriods(t *testing.T) {
	m := NewStatsModel(nil, NewUnits(config.DisplayConfig{}), nil)
	model, _ := m.Update(statsLoadedMsg{stats: []service.PeriodStats{
		{PeriodLabel: "May 27", SessionCount: 2},
		{PeriodLabel: "Jun 03"},
		{PeriodLabel: "Jun 10", SessionCount: 1},
	}})

	sm := model.(StatsModel)
	if len(sm.periods) != 2 || sm.periods[0].PeriodLabel != "Jun 10" {
		t.Errorf("periods = %+v, want newest non-empty first", sm.periods)
	}
	if sm.maxTSS != 0 {
		t.Errorf("maxTSS = %v, want 0", sm.maxTSS)
	}

	model, _ = sm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if c := model.(StatsModel).cursor; c != 1 {
		t.Errorf("cursor = %d, want clamped to 1", c)
	}
}

func TestAppNavigation(t *testing.T) {
	app := NewApp(nil, nil, config.DisplayConfig{})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if app.screen != ScreenHelp {
		t.Fatalf("screen = %v, want help", app.screen)
	}
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if app.screen != ScreenDashboard {
		t.Errorf("esc should return to the dashboard, got %v", app.screen)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	if app.screen != ScreenImport {
		t.Fatalf("screen = %v, want import", app.screen)
	}
	// Digits are typed into the path input rather than switching screens
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if app.screen != ScreenImport || app.importScreen.input.Value() != "1" {
		t.Errorf("screen = %v, input = %q", app.screen, app.importScreen.input.Value())
	}
}
