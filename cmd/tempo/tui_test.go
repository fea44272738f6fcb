package main

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/clock"
	"github.com/benjamonnguyen/tempo/clock/clocktest"
	"github.com/benjamonnguyen/tempo/modes"
	"github.com/benjamonnguyen/tempo/session"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, mode tempo.Mode, settings modes.Settings) (App, *session.Machine, *clocktest.Clock, *clock.Engine) {
	t.Helper()
	fc := clocktest.New(epoch)
	engine := clock.NewEngine(fc, *log.New(io.Discard))
	machine := session.NewMachine(engine, fc, *log.New(io.Discard), mode, settings)
	return newModel(machine, nil), machine, fc, engine
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func runMachine(t *testing.T, engine *clock.Engine, machine *session.Machine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	engineDone := make(chan struct{})
	machineDone := make(chan struct{})
	go func() {
		_ = engine.Run(ctx)
		close(engineDone)
	}()
	go func() {
		_ = machine.Run(ctx)
		close(machineDone)
	}()
	t.Cleanup(func() {
		cancel()
		<-engineDone
		<-machineDone
	})
}

func TestApp_ToggleAndModes(t *testing.T) {
	t.Parallel()

	a, machine, _, _ := newTestApp(t, tempo.ModeMeditation, modes.DefaultSettings())

	a = press(t, a, "space")
	assert.Equal(t, tempo.StatusRunning, a.state.Status)

	a = press(t, a, "m")
	assert.Equal(t, tempo.ModeMeditation, a.state.Mode, "mode is locked while running")
	assert.NotEmpty(t, a.feedback)

	a = press(t, a, "space")
	assert.Equal(t, tempo.StatusPaused, a.state.Status)

	a = press(t, a, "m")
	assert.Equal(t, tempo.ModePomodoro, a.state.Mode)
	assert.Equal(t, tempo.StatusIdle, a.state.Status)
	assert.Equal(t, "Classic", a.state.SequenceName)

	a = press(t, a, "n")
	assert.Equal(t, "Deep Work", machine.Snapshot().SequenceName)

	a = press(t, a, "d")
	assert.Zero(t, a.state.Distractions, "distractions only count in flow")

	a = press(t, a, "m", "space", "d", "d")
	assert.Equal(t, tempo.ModeFlow, a.state.Mode)
	assert.Equal(t, 2, a.state.Distractions)

	a = press(t, a, "s")
	assert.Equal(t, tempo.StatusIdle, a.state.Status)
}

func TestApp_MeditationSettings(t *testing.T) {
	t.Parallel()

	a, machine, _, _ := newTestApp(t, tempo.ModeMeditation, modes.DefaultSettings())

	a = press(t, a, "+")
	assert.Equal(t, 660, machine.Settings().Meditation.DurationSeconds)
	assert.Equal(t, 660, a.state.Remaining)

	a = press(t, a, "-", "-")
	assert.Equal(t, 540, machine.Settings().Meditation.DurationSeconds)

	require.NoError(t, machine.SetDuration(60))
	a = press(t, a, "-")
	assert.Equal(t, 60, machine.Settings().Meditation.DurationSeconds, "minimum one minute")

	a = press(t, a, "i")
	assert.True(t, a.settings.Meditation.Infinite)
	a = press(t, a, "i")
	assert.False(t, a.settings.Meditation.Infinite)
	assert.NoError(t, a.err)
}

func TestApp_RateAndAcknowledge(t *testing.T) {
	t.Parallel()

	settings := modes.DefaultSettings()
	settings.Meditation.DurationSeconds = 60
	a, machine, fc, engine := newTestApp(t, tempo.ModeMeditation, settings)
	runMachine(t, engine, machine)

	a = press(t, a, "space")
	require.Eventually(t, func() bool {
		fc.Advance(500 * time.Millisecond)
		return machine.Snapshot().Status == tempo.StatusCompleted
	}, 5*time.Second, 5*time.Millisecond)

	m, _ := a.Update(refreshMsg(time.Now()))
	a = m.(App)
	require.True(t, a.showSummary())
	assert.Contains(t, a.View(), "rate 1-5")

	a = press(t, a, "4")
	require.NotNil(t, a.state.LastSession)
	assert.Equal(t, 4, a.state.LastSession.Rating)

	a = press(t, a, "enter")
	assert.Equal(t, tempo.StatusIdle, a.state.Status)
	assert.False(t, a.showSummary())

	a = press(t, a, "5")
	assert.Equal(t, 4, machine.Snapshot().LastSession.Rating, "dismissed summaries cannot be rated")
}

func TestApp_Quit(t *testing.T) {
	t.Parallel()

	a, _, _, _ := newTestApp(t, tempo.ModeStopwatch, modes.DefaultSettings())
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_SignalFeedback(t *testing.T) {
	t.Parallel()

	a, _, _, _ := newTestApp(t, tempo.ModeMeditation, modes.DefaultSettings())
	m, _ := a.Update(signalMsg{sig: session.IntervalBell{Offset: 120, Sound: modes.SoundChime}})
	a = m.(App)
	assert.Equal(t, "interval bell at 2:00", a.feedback)
	assert.Contains(t, a.View(), "interval bell at 2:00")
}

func TestApp_TimeEntry(t *testing.T) {
	t.Parallel()

	a, machine, _, _ := newTestApp(t, tempo.ModeMeditation, modes.DefaultSettings())

	a = press(t, a, "t", "12:30", "enter")
	assert.NoError(t, a.err)
	assert.Equal(t, 750, machine.Settings().Meditation.DurationSeconds)
	assert.Equal(t, 750, a.state.Remaining)

	a = press(t, a, "t", "abc", "enter")
	assert.Error(t, a.err)
	assert.Equal(t, 750, machine.Settings().Meditation.DurationSeconds)

	a = press(t, a, "t", "q")
	assert.Equal(t, durationInput, a.inputKind, "keys go to the open field")
	a = press(t, a, "esc")
	assert.Equal(t, noInput, a.inputKind)
	assert.Equal(t, 750, machine.Settings().Meditation.DurationSeconds)

	a = press(t, a, "c", "1:00", "enter")
	assert.Equal(t, modes.IntervalSet{60}, machine.Settings().Meditation.Intervals)
	assert.Equal(t, "bell added at 1:00", a.feedback)
	assert.Contains(t, a.View(), "bells at 1:00")

	a = press(t, a, "c", "1:00", "enter")
	assert.Empty(t, machine.Settings().Meditation.Intervals)
	assert.Equal(t, "bell removed at 1:00", a.feedback)

	a = press(t, a, "c", "20:00", "enter")
	assert.ErrorIs(t, a.err, modes.ErrInvalidInterval, "bells must fall inside the session")
}

func TestApp_StartBreak(t *testing.T) {
	t.Parallel()

	a, machine, fc, engine := newTestApp(t, tempo.ModeFlow, modes.DefaultSettings())
	runMachine(t, engine, machine)

	assert.False(t, a.keys.StartBreak.Enabled())
	a = press(t, a, "b")
	assert.NoError(t, a.err)
	assert.False(t, a.state.OnBreak)

	a = press(t, a, "space")
	require.Eventually(t, func() bool {
		fc.Advance(500 * time.Millisecond)
		return machine.Snapshot().Elapsed >= 3
	}, 5*time.Second, 5*time.Millisecond)

	a = press(t, a, "s")
	require.NotNil(t, a.state.LastSession)
	assert.Equal(t, 5, a.state.LastSession.BreakRecommendationMinutes)
	assert.True(t, a.showSummary())
	assert.True(t, a.keys.StartBreak.Enabled())
	assert.Contains(t, a.View(), "start break")

	a = press(t, a, "b")
	assert.True(t, a.state.OnBreak)
	assert.Equal(t, tempo.StatusRunning, a.state.Status)
	assert.Equal(t, 300, a.state.Duration)
	assert.False(t, a.showSummary())
	assert.False(t, a.keys.StartBreak.Enabled())

	require.Eventually(t, func() bool {
		fc.Advance(5 * time.Second)
		return machine.Snapshot().Status == tempo.StatusCompleted
	}, 5*time.Second, 5*time.Millisecond)
	m, _ := a.Update(refreshMsg(time.Now()))
	a = m.(App)
	assert.Contains(t, a.View(), "break over")

	a = press(t, a, "enter")
	assert.Equal(t, tempo.StatusIdle, a.state.Status)
	assert.False(t, a.state.OnBreak)
}
