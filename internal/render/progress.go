package render

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type doneMsg struct{}

type spinModel struct {
	spinner spinner.Model
	label   string
	start   time.Time
	done    bool
}

func (m spinModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinModel) View() string {
	if m.done {
		return ""
	}
	elapsed := time.Since(m.start).Truncate(time.Second)
	return m.spinner.View() + " " + m.label + " (" + elapsed.String() + ")\n"
}

// Spin runs fn while a spinner labelled label animates on w. When w is not a
// terminal fn simply runs. The spinner never affects fn's result.
func Spin(ctx context.Context, w io.Writer, label string, fn func() error) error {
	if !IsTerminal(w) {
		return fn()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.Color("39"))

	prog := tea.NewProgram(
		spinModel{spinner: sp, label: label, start: time.Now()},
		tea.WithContext(ctx),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	errc := make(chan error, 1)
	go func() {
		errc <- fn()
		prog.Send(doneMsg{})
	}()

	// A failed or cancelled program only loses the animation.
	_, _ = prog.Run()
	return <-errc
}
