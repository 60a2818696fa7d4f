package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainingload/internal/fitfile"
	"trainingload/internal/service"
)

// ImportModel is the FIT import screen model
type ImportModel struct {
	importService *service.ImportService
	input         textinput.Model

	importing bool
	run       *importRun
	progress  service.ImportProgress
	failures  []string

	result *service.ImportResult
	err    error
	done   bool
}

// importRun connects a running batch to the UI
type importRun struct {
	progress chan service.ImportProgress
	done     chan importDoneMsg
	cancel   context.CancelFunc
}

// NewImportModel creates a new import model
func NewImportModel(is *service.ImportService) ImportModel {
	input := textinput.New()
	input.Placeholder = "~/Downloads/activities or ride.fit run.fit"
	input.CharLimit = 1024
	input.Width = 60
	input.Focus()

	return ImportModel{
		importService: is,
		input:         input,
	}
}

// Init starts the cursor blinking
func (m ImportModel) Init() tea.Cmd {
	return textinput.Blink
}

// Busy reports whether keystrokes belong to this screen rather than the app
func (m ImportModel) Busy() bool {
	return m.importing || m.input.Focused()
}

type importProgressMsg service.ImportProgress

type importDoneMsg struct {
	result *service.ImportResult
	err    error
}

// ImportCompleteMsg is sent when a batch finishes and other screens should reload
type ImportCompleteMsg struct{}

// Update handles messages
func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importProgressMsg:
		m.progress = service.ImportProgress(msg)
		if msg.Error != nil {
			m.failures = append(m.failures, fmt.Sprintf("%s: %v", msg.CurrentFile, msg.Error))
		}
		return m, m.listen()

	case importDoneMsg:
		m.importing = false
		m.done = true
		m.run = nil
		m.result = msg.result
		m.err = msg.err
		return m, func() tea.Msg { return ImportCompleteMsg{} }

	case tea.KeyMsg:
		if m.importing {
			if msg.String() == "esc" && m.run != nil {
				m.run.cancel()
			}
			return m, nil
		}

		switch msg.String() {
		case "enter":
			if !m.input.Focused() {
				cmd := m.input.Focus()
				return m, cmd
			}
			return m.start()
		case "esc":
			if m.input.Focused() {
				m.input.Blur()
				return m, nil
			}
		case "i":
			if !m.input.Focused() {
				cmd := m.input.Focus()
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ImportModel) start() (tea.Model, tea.Cmd) {
	args := strings.Fields(m.input.Value())
	if len(args) == 0 {
		return m, nil
	}
	for i, a := range args {
		args[i] = expandHome(a)
	}

	m.done = false
	m.result = nil
	m.failures = nil
	m.err = nil

	paths, err := fitfile.Expand(args)
	if err != nil {
		m.err = err
		m.done = true
		return m, nil
	}
	if len(paths) == 0 {
		m.err = fmt.Errorf("no .fit files found")
		m.done = true
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &importRun{
		progress: make(chan service.ImportProgress),
		done:     make(chan importDoneMsg, 1),
		cancel:   cancel,
	}
	go func() {
		defer cancel()
		result, err := m.importService.ImportFiles(ctx, paths, run.progress)
		run.done <- importDoneMsg{result: result, err: err}
	}()

	m.importing = true
	m.run = run
	m.progress = service.ImportProgress{Phase: "import", Total: len(paths)}
	m.input.Blur()
	return m, m.listen()
}

// listen waits for the next progress report, then for the batch result once
// the progress channel closes
func (m ImportModel) listen() tea.Cmd {
	run := m.run
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		if p, ok := <-run.progress; ok {
			return importProgressMsg(p)
		}
		return <-run.done
	}
}

// View renders the import screen
func (m ImportModel) View() string {
	sections := []string{cardTitleStyle.Render("Import FIT Files")}

	if m.importing {
		sections = append(sections, m.renderProgress())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections,
		"",
		"  Files or folders (space separated, folders are searched for .fit files):",
		"  "+m.input.View(),
	)

	if m.done {
		sections = append(sections, m.renderSummary())
	}

	help := "  enter: start import  esc: leave input"
	if !m.input.Focused() {
		help = "  i or enter: edit paths"
	}
	sections = append(sections, "\n"+statusStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ImportModel) renderProgress() string {
	p := m.progress
	lines := []string{""}

	if p.Phase == "load" {
		lines = append(lines, "  Recomputing training load...")
	} else {
		pct := 0.0
		if p.Total > 0 {
			pct = float64(p.Completed) / float64(p.Total)
		}
		lines = append(lines,
			fmt.Sprintf("  Importing %d of %d: %s", p.Completed+1, p.Total, p.CurrentFile),
			"",
			"  "+RenderProgressBar(pct, 40),
		)
	}

	if len(m.failures) > 0 {
		lines = append(lines, "", warningStyle.Render(fmt.Sprintf("  %d files failed so far", len(m.failures))))
	}
	lines = append(lines, "", statusStyle.Render("  esc: cancel"))
	return strings.Join(lines, "\n")
}

func (m ImportModel) renderSummary() string {
	lines := []string{""}

	if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}

	if r := m.result; r != nil {
		if r.Imported > 0 {
			lines = append(lines, successStyle.Render(fmt.Sprintf("  %d sessions imported", r.Imported)))
		} else {
			lines = append(lines, statusStyle.Render("  No new sessions"))
		}
		if r.Duplicates > 0 {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %d duplicates skipped", r.Duplicates)))
		}
		for _, ip := range r.NewPBs {
			d := service.FormatPersonalBest(ip.PB())
			line := fmt.Sprintf("  New %s %s: %s", d.Record.Sport, d.Label, d.Value)
			if prev := ip.Previous(); prev != nil {
				line += mutedStyle.Render(" (was " + service.FormatPersonalBest(*prev).Value + ")")
			}
			lines = append(lines, successStyle.Render(line))
		}
		if len(r.Errors) > 0 {
			lines = append(lines, "", warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
			for i, e := range r.Errors {
				if i >= 5 {
					lines = append(lines, mutedStyle.Render(fmt.Sprintf("    ...and %d more", len(r.Errors)-5)))
					break
				}
				lines = append(lines, mutedStyle.Render("    "+e.Error()))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
