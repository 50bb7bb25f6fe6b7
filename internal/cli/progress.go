package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// encodeProgressMsg carries artifact encoding progress.
type encodeProgressMsg struct {
	done  int
	total int
}

// encodeDoneMsg signals the end of the encode, with its error if any.
type encodeDoneMsg struct {
	err error
}

// encodeModel is the bubbletea model for artifact encoding progress.
type encodeModel struct {
	label    string
	progress progress.Model
	theme    Theme
	done     int
	total    int
	finished bool
	quitting bool
	err      error
}

func newEncodeModel(label string) encodeModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return encodeModel{label: label, progress: prog, theme: defaultTheme}
}

// Init returns the initial command.
func (m encodeModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m encodeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case encodeProgressMsg:
		m.done = msg.done
		m.total = msg.total
		return m, nil

	case encodeDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m encodeModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m encodeModel) renderContent() string {
	if m.finished {
		if m.err != nil {
			return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ %s failed: %s\n", m.label, m.err))
		}
		return m.theme.completedStyle().Render(fmt.Sprintf("✓ %s complete\n", m.label))
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.label))
	bar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d artifacts", m.done, m.total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, counts, hint)
}

// runWithProgress runs fn while showing an artifact progress bar. fn gets a
// progress callback safe to call from its own goroutine.
func runWithProgress(label string, fn func(report func(done, total int)) error) error {
	model := newEncodeModel(label)
	p := tea.NewProgram(model)

	go func() {
		err := fn(func(done, total int) {
			p.Send(encodeProgressMsg{done: done, total: total})
		})
		p.Send(encodeDoneMsg{err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}
	if m, ok := finalModel.(encodeModel); ok {
		if m.quitting {
			return fmt.Errorf("cancelled")
		}
		return m.err
	}
	return nil
}
