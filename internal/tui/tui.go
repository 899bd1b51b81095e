package tui

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/blocktoggle/blocktoggle"
	"github.com/sokinpui/blocktoggle/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))  // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))             // Green
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // Orange
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))            // Red
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type summaryMsg struct {
	model.Summary
	err error
}

type progressMsg struct{ current, total int }

// --- Model ---
type Model struct {
	app      *blocktoggle.App
	program  *tea.Program
	spinner  spinner.Model
	state    state
	summary  model.Summary
	err      error
	progress progressMsg
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

func New(app *blocktoggle.App) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &Model{
		app:     app,
		spinner: s,
		state:   stateProcessing,
	}
}

// SetProgram routes the app's progress updates into the running program.
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.app.SetProgressCallback(func(current, total int) {
		p.Send(progressMsg{current: current, total: total})
	})
}

// Err returns the error the app finished with, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case progressMsg:
		m.progress = msg

	case summaryMsg:
		m.summary = msg.Summary
		m.err = msg.err
		m.state = stateSummary
		if msg.err != nil && len(msg.Files) == 0 && len(msg.Failed) == 0 {
			m.state = stateError
		}
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.state {
	case stateProcessing:
		if m.progress.total > 1 {
			return fmt.Sprintf("%s Patching %d/%d...", m.spinner.View(), m.progress.current, m.progress.total)
		}
		return fmt.Sprintf("%s Patching...", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) renderSummary() string {
	var b strings.Builder

	if m.summary.Message != "" {
		b.WriteString(headerStyle.Render(m.summary.Message))
		b.WriteString("\n\n")
	}

	var changed, unchanged []model.FileResult
	for _, f := range m.summary.Files {
		if f.Changed {
			changed = append(changed, f)
		} else {
			unchanged = append(unchanged, f)
		}
	}

	hasContent := false
	if len(changed) > 0 {
		hasContent = true
		title := "Switched to " + string(m.summary.Mode) + ":"
		if m.summary.Mode == "" {
			title = "Restored:"
		}
		b.WriteString(successStyle.Render(title))
		b.WriteString("\n")
		for _, f := range changed {
			b.WriteString(fmt.Sprintf("  %s%s\n", pathStyle.Render(f.Path), faintStyle.Render(details(f))))
		}
	}
	if len(unchanged) > 0 {
		hasContent = true
		b.WriteString(faintStyle.Render("Already up to date:"))
		b.WriteString("\n")
		for _, f := range unchanged {
			b.WriteString(fmt.Sprintf("  %s\n", faintStyle.Render(f.Path)))
		}
	}

	var warnings []string
	warnings = append(warnings, m.summary.Warnings...)
	for _, f := range m.summary.Files {
		for _, w := range f.Warnings {
			warnings = append(warnings, f.Path+": "+w)
		}
	}
	if len(warnings) > 0 {
		hasContent = true
		b.WriteString(warnStyle.Render("Warnings:"))
		b.WriteString("\n")
		for _, w := range warnings {
			b.WriteString(fmt.Sprintf("  %s\n", w))
		}
	}
	if len(m.summary.Failed) > 0 {
		hasContent = true
		b.WriteString(errorStyle.Render("Failed:"))
		b.WriteString("\n")
		for _, f := range m.summary.Failed {
			b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(f)))
		}
	}

	if !hasContent && m.summary.Message == "" {
		b.WriteString(faintStyle.Render("Nothing to do."))
		b.WriteString("\n")
	}

	return b.String()
}

func details(f model.FileResult) string {
	var parts []string
	if f.Regions > 0 {
		parts = append(parts, fmt.Sprintf("%d regions", f.Regions))
	}
	for _, k := range slices.Sorted(maps.Keys(f.KindCounts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, f.KindCounts[k]))
	}
	if len(f.Directives) > 0 {
		parts = append(parts, strings.Join(f.Directives, ","))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func (m *Model) runApp() tea.Msg {
	summary, err := m.app.Execute()
	var detailed *blocktoggle.DetailedError
	if errors.As(err, &detailed) {
		// The TUI will exit, so we can print to stderr here for the stack trace.
		fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
	}
	return summaryMsg{Summary: summary, err: err}
}
