// ABOUTME: Tests for the progress view
// ABOUTME: Drives Update directly and runs the program against a buffer

package progress

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestUpdate_TracksCurrentEnvironment(t *testing.T) {
	m := New()
	m, cmd := update(t, m, UpdateMsg{Environment: "Prod", Done: 1, Total: 4})

	assert.Nil(t, cmd)
	assert.Equal(t, "Prod", m.current)
	assert.InDelta(t, 0.25, m.Percent(), 1e-9)
	assert.Contains(t, m.View(), "Prod")
	assert.Contains(t, m.View(), "1/4 deployments")
}

func TestUpdate_NewEnvironmentFinishesPrevious(t *testing.T) {
	m := New()
	m, _ = update(t, m, UpdateMsg{Environment: "Prod", Done: 2, Total: 2})
	m, _ = update(t, m, UpdateMsg{Environment: "Dev", Done: 0, Total: 0})

	require.Len(t, m.finished, 1)
	assert.Contains(t, m.finished[0], "Prod")
	assert.Contains(t, m.finished[0], "(2 deployments)")
	assert.Equal(t, "Dev", m.current)
}

func TestPercent_EmptyEnvironmentIsComplete(t *testing.T) {
	m := New()
	m, _ = update(t, m, UpdateMsg{Environment: "Dev", Done: 0, Total: 0})
	assert.Equal(t, 1.0, m.Percent())
}

func TestUpdate_DoneQuits(t *testing.T) {
	m := New()
	m, _ = update(t, m, UpdateMsg{Environment: "Prod", Done: 3, Total: 3})
	m, cmd := update(t, m, DoneMsg{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Len(t, m.finished, 1)
	assert.NotContains(t, m.View(), "3/3 deployments")
}

func TestUpdate_DoneWithError(t *testing.T) {
	m := New()
	m, _ = update(t, m, UpdateMsg{Environment: "Prod", Done: 1, Total: 3})
	m, _ = update(t, m, DoneMsg{Err: errors.New("boom")})

	assert.Empty(t, m.finished)
	assert.EqualError(t, m.err, "boom")
	assert.Contains(t, m.View(), "Prod")
	assert.NotContains(t, m.View(), "deployments")
}

func TestUpdate_WindowResizeClampsWidth(t *testing.T) {
	m := New()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, maxWidth, m.bar.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 12, Height: 40})
	assert.Equal(t, 10, m.bar.Width)
}

func TestRun_ReturnsWorkResult(t *testing.T) {
	var out bytes.Buffer
	calls := 0
	err := Run(context.Background(), &out, func(ctx context.Context, report Reporter) error {
		report("Prod", 0, 2)
		report("Prod", 1, 2)
		report("Prod", 2, 2)
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	err = Run(context.Background(), &out, func(ctx context.Context, report Reporter) error {
		return errors.New("fetch failed")
	})
	assert.EqualError(t, err, "fetch failed")
}

func TestProgram_RunsToCompletion(t *testing.T) {
	tm := teatest.NewTestModel(t, New(), teatest.WithInitialTermSize(80, 24))

	tm.Send(UpdateMsg{Environment: "Prod", Done: 0, Total: 2})
	tm.Send(UpdateMsg{Environment: "Prod", Done: 2, Total: 2})
	tm.Send(UpdateMsg{Environment: "Dev", Done: 0, Total: 0})
	tm.Send(DoneMsg{})

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(Model)
	require.True(t, ok)
	require.Len(t, final.finished, 2)
	assert.Contains(t, final.finished[0], "Prod")
	assert.Contains(t, final.finished[1], "Dev")
	assert.True(t, final.quitting)
}
