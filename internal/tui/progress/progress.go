// ABOUTME: Progress view shown while allocations are fetched
// ABOUTME: A bubbletea model fed by messages from the aggregation goroutine

package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/icons"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/styles"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	padding  = 2
	maxWidth = 60
)

// UpdateMsg reports how many allocations of an environment are done
type UpdateMsg struct {
	Environment string
	Done        int
	Total       int
}

// DoneMsg ends the view
type DoneMsg struct {
	Err error
}

// Model renders one bar for the environment in flight and a line per finished one
type Model struct {
	bar      progress.Model
	finished []string
	current  string
	done     int
	total    int
	quitting bool
	err      error
}

// New creates an empty progress model
func New() Model {
	return Model{
		bar: progress.New(
			progress.WithGradient(string(styles.Primary), string(styles.Secondary)),
			progress.WithWidth(maxWidth),
		),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-padding*2-4, maxWidth), 10)
		return m, nil

	case UpdateMsg:
		if msg.Environment != m.current && m.current != "" {
			m.finished = append(m.finished, m.summaryLine())
		}
		m.current = msg.Environment
		m.done = msg.Done
		m.total = msg.Total
		return m, nil

	case DoneMsg:
		if m.current != "" && msg.Err == nil {
			m.finished = append(m.finished, m.summaryLine())
			m.current = ""
		}
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// Percent returns the completion of the environment in flight
func (m Model) Percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

// View implements tea.Model
func (m Model) View() string {
	var sb strings.Builder
	for _, line := range m.finished {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	pad := strings.Repeat(" ", padding)
	if m.err != nil && m.current != "" {
		fmt.Fprintf(&sb, "%s%s %s\n", pad, styles.StatusCritical.Render(icons.Critical.String()), m.current)
	}

	if m.current != "" && !m.quitting {
		sb.WriteString(pad)
		sb.WriteString(icons.Pending.String() + " ")
		sb.WriteString(styles.ValueStyle.Render(m.current))
		sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("  %d/%d deployments", m.done, m.total)))
		sb.WriteString("\n")
		sb.WriteString(pad)
		sb.WriteString(m.bar.ViewAs(m.Percent()))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) summaryLine() string {
	return fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", padding),
		styles.StatusOK.Render(icons.CheckOK.String()),
		m.current,
		styles.Subtitle.Render(fmt.Sprintf("(%d deployments)", m.total)),
	)
}

// Reporter receives progress from the work function
type Reporter func(env string, done, total int)

// Run draws progress on out while work runs in its own goroutine and
// returns the work's error. A broken display never fails the work.
func Run(ctx context.Context, out io.Writer, work func(ctx context.Context, report Reporter) error) error {
	p := tea.NewProgram(New(),
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(out),
		tea.WithoutSignalHandler(),
	)

	result := make(chan error, 1)
	go func() {
		err := work(ctx, func(env string, done, total int) {
			p.Send(UpdateMsg{Environment: env, Done: done, Total: total})
		})
		p.Send(DoneMsg{Err: err})
		result <- err
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		slog.Debug("Progress view stopped", "error", err)
	}
	return <-result
}
