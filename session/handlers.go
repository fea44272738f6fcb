package session

import (
	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/modes"
)

const (
	flowZoneAfter       = 20 * 60
	ultradianLimitAfter = 90 * 60
)

// modeHandler holds the per-mode reactions to clock output. Methods run with
// the machine lock held.
type modeHandler interface {
	tick(m *Machine, prev, elapsed int)
	complete(m *Machine)
	ambientSound(s modes.Settings) string
}

func handlerFor(mode tempo.Mode) modeHandler {
	switch mode {
	case tempo.ModeMeditation:
		return meditationHandler{}
	case tempo.ModePomodoro:
		return pomodoroHandler{}
	case tempo.ModeFlow:
		return flowHandler{}
	default:
		return stopwatchHandler{}
	}
}

type meditationHandler struct{}

// tick rings every checkpoint crossed in (prev, elapsed], so a skipped
// tick still rings and a repeated one does not.
func (meditationHandler) tick(m *Machine, prev, elapsed int) {
	for _, offset := range m.runSettings.Meditation.Intervals {
		if offset <= prev || offset > elapsed || m.fired[offset] {
			continue
		}
		m.fired[offset] = true
		m.emit(IntervalBell{Offset: offset, Sound: m.runSettings.Meditation.IntervalSound})
	}
}

func (meditationHandler) complete(m *Machine) {
	m.completeSession(m.runSettings.Meditation.EndSound)
}

func (meditationHandler) ambientSound(s modes.Settings) string {
	return s.Meditation.AmbientSound
}

type pomodoroHandler struct{}

func (pomodoroHandler) tick(*Machine, int, int) {}

// complete advances to the next step. A pause that raced the completion
// carries over to the new step.
func (pomodoroHandler) complete(m *Machine) {
	if !m.plan.HasNext() {
		m.completeSession(m.runSettings.Pomodoro.EndSound)
		return
	}

	next, err := modes.Resolve(tempo.ModePomodoro, m.runSettings, m.plan.StepIndex+1)
	if err != nil {
		m.l.Error("failed to resolve next step", "step", m.plan.StepIndex+1, "err", err)
		m.completeSession(m.runSettings.Pomodoro.EndSound)
		return
	}

	paused := m.state.Status == tempo.StatusPaused
	m.sessionSeconds += m.plan.Seconds
	m.arm(next)
	if paused {
		m.engine.Pause()
		m.state.Status = tempo.StatusPaused
	}
	sound := m.runSettings.Pomodoro.FocusSound
	if next.StepType == modes.StepBreak {
		sound = m.runSettings.Pomodoro.BreakSound
	}
	m.l.Debug("advancing sequence", "step", next.StepIndex, "type", next.StepType)
	m.emit(PhaseChange{Next: next.StepType, StepIndex: next.StepIndex, Sound: sound})
}

func (pomodoroHandler) ambientSound(modes.Settings) string {
	return ""
}

type flowHandler struct{}

func (flowHandler) tick(m *Machine, prev, elapsed int) {
	switch {
	case elapsed > ultradianLimitAfter:
		m.raiseFlowState(tempo.FlowUltradianLimit)
	case elapsed > flowZoneAfter:
		m.raiseFlowState(tempo.FlowZone)
	}
	if !m.ultradianFired && elapsed >= ultradianLimitAfter {
		m.ultradianFired = true
		m.emit(UltradianBell{Sound: m.runSettings.Flow.UltradianSound})
	}
}

func (flowHandler) complete(m *Machine) {
	m.completeSession("")
}

func (flowHandler) ambientSound(s modes.Settings) string {
	return s.Flow.AmbientSound
}

type stopwatchHandler struct{}

func (stopwatchHandler) tick(*Machine, int, int) {}

func (stopwatchHandler) complete(m *Machine) {
	m.completeSession("")
}

func (stopwatchHandler) ambientSound(modes.Settings) string {
	return ""
}

// breakHandler runs the rest after a flow session.
type breakHandler struct{}

func (breakHandler) tick(*Machine, int, int) {}

func (breakHandler) complete(m *Machine) {
	m.run++
	m.state.Status = tempo.StatusCompleted
	m.state.Remaining = 0
	m.state.Elapsed = m.plan.Seconds
	m.state.Progress = 1
	m.l.Info("break finished", "seconds", m.plan.Seconds)
	m.emit(SessionEndBell{Mode: m.state.Mode, Sound: m.runSettings.Flow.BreakEndSound})
	m.emit(StateChanged{State: m.state})
}

func (breakHandler) ambientSound(modes.Settings) string {
	return ""
}

// BreakRecommendation maps focused minutes to suggested rest minutes.
func BreakRecommendation(focusedMinutes int) int {
	switch {
	case focusedMinutes < 25:
		return 5
	case focusedMinutes < 50:
		return 10
	case focusedMinutes < 90:
		return 15
	default:
		return 25
	}
}
