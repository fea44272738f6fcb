package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/modes"
	"github.com/benjamonnguyen/tempo/session"
)

const (
	refreshInterval     = 100 * time.Millisecond
	minMeditationSecond = 60
)

type refreshMsg time.Time

type signalMsg struct {
	sig session.Signal
}

type inputKind uint8

const (
	noInput inputKind = iota
	durationInput
	bellInput
)

func (k inputKind) prompt() string {
	switch k {
	case durationInput:
		return "duration (MM:SS): "
	case bellInput:
		return "bell at (MM:SS): "
	}
	return ""
}

// App renders the machine's snapshot and maps keys onto its operations.
type App struct {
	machine   *session.Machine
	sigs      <-chan session.Signal
	keys      KeyMap
	help      help.Model
	input     textinput.Model
	inputKind inputKind
	state     session.State
	settings  modes.Settings
	dismissed tempo.SessionID
	feedback  string
	err       error
}

func newModel(machine *session.Machine, sigs <-chan session.Signal) App {
	input := textinput.New()
	input.Placeholder = "10:00"
	input.CharLimit = 8
	a := App{
		machine: machine,
		sigs:    sigs,
		keys:    Keys,
		help:    help.New(),
		input:   input,
	}
	a.sync()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(refresh(), waitForSignal(a.sigs))
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func waitForSignal(sigs <-chan session.Signal) tea.Cmd {
	if sigs == nil {
		return nil
	}
	return func() tea.Msg {
		sig, ok := <-sigs
		if !ok {
			return nil
		}
		return signalMsg{sig: sig}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.help.Width = msg.Width
		return a, nil
	case refreshMsg:
		a.sync()
		return a, refresh()
	case signalMsg:
		if fb := feedbackFor(msg.sig); fb != "" {
			a.feedback = fb
		}
		a.sync()
		return a, waitForSignal(a.sigs)
	case tea.KeyMsg:
		if a.inputKind != noInput {
			cmd := a.handleInput(msg)
			a.sync()
			return a, cmd
		}
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		a.err = nil
		cmd := a.handleKey(msg)
		a.sync()
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Toggle):
		a.feedback = ""
		a.err = a.machine.Toggle()
	case key.Matches(msg, a.keys.Stop):
		a.machine.Stop()
	case key.Matches(msg, a.keys.Reset):
		a.feedback = ""
		a.machine.Reset()
	case key.Matches(msg, a.keys.Distraction):
		if a.machine.AddDistraction() {
			a.feedback = "distraction noted"
		}
	case key.Matches(msg, a.keys.NextMode):
		if a.state.Status == tempo.StatusRunning {
			a.feedback = "pause or stop before switching modes"
			return nil
		}
		a.feedback = ""
		a.err = a.machine.SetMode(a.state.Mode.Next())
	case key.Matches(msg, a.keys.NextSequence):
		if a.state.Mode == tempo.ModePomodoro {
			a.err = a.machine.NextSequence()
		}
	case key.Matches(msg, a.keys.Infinite):
		if a.state.Mode == tempo.ModeMeditation {
			a.err = a.machine.UpdateSettings(func(s *modes.Settings) error {
				s.SetInfinite(!s.Meditation.Infinite)
				return nil
			})
		}
	case key.Matches(msg, a.keys.Longer):
		if a.state.Mode == tempo.ModeMeditation {
			a.err = a.machine.UpdateSettings(func(s *modes.Settings) error {
				return s.SetMeditationDuration(s.Meditation.DurationSeconds + 60)
			})
		}
	case key.Matches(msg, a.keys.Shorter):
		if a.state.Mode == tempo.ModeMeditation {
			a.err = a.machine.UpdateSettings(func(s *modes.Settings) error {
				return s.SetMeditationDuration(max(s.Meditation.DurationSeconds-60, minMeditationSecond))
			})
		}
	case key.Matches(msg, a.keys.EnterTime):
		if a.state.Mode == tempo.ModeMeditation {
			return a.openInput(durationInput)
		}
	case key.Matches(msg, a.keys.ToggleBell):
		if a.state.Mode == tempo.ModeMeditation {
			return a.openInput(bellInput)
		}
	case key.Matches(msg, a.keys.StartBreak):
		last := a.state.LastSession
		if err := a.machine.StartBreak(); err != nil {
			a.err = err
			return nil
		}
		a.dismissed = last.ID
		a.feedback = ""
	case key.Matches(msg, a.keys.Acknowledge):
		if a.state.LastSession != nil {
			a.dismissed = a.state.LastSession.ID
		}
		a.feedback = ""
		a.machine.Acknowledge()
	case key.Matches(msg, a.keys.Rate):
		if !a.showSummary() {
			return nil
		}
		stars, _ := strconv.Atoi(msg.String())
		if err := a.machine.RateLastSession(stars); err != nil && !errors.Is(err, session.ErrNoLastSession) {
			a.err = err
		}
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return nil
}

func (a *App) openInput(kind inputKind) tea.Cmd {
	a.inputKind = kind
	a.input.Prompt = kind.prompt()
	a.input.Reset()
	return a.input.Focus()
}

func (a *App) closeInput() {
	a.inputKind = noInput
	a.input.Blur()
	a.input.Reset()
}

// handleInput feeds keys to the open time field until it is submitted or cancelled.
func (a *App) handleInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		a.closeInput()
		return nil
	case tea.KeyEnter:
		kind := a.inputKind
		value := a.input.Value()
		a.closeInput()
		a.submitTime(kind, value)
		return nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd
}

func (a *App) submitTime(kind inputKind, value string) {
	seconds, err := modes.ParseClock(value)
	if err != nil {
		a.err = err
		return
	}
	a.err = nil
	switch kind {
	case durationInput:
		a.err = a.machine.UpdateSettings(func(s *modes.Settings) error {
			return s.SetMeditationDuration(seconds)
		})
	case bellInput:
		var added bool
		a.err = a.machine.UpdateSettings(func(s *modes.Settings) error {
			added = !s.Meditation.Intervals.Contains(seconds)
			return s.ToggleInterval(seconds)
		})
		if a.err != nil {
			return
		}
		if added {
			a.feedback = "bell added at " + modes.FormatClock(seconds)
		} else {
			a.feedback = "bell removed at " + modes.FormatClock(seconds)
		}
	}
}

func (a *App) sync() {
	a.state = a.machine.Snapshot()
	a.settings = a.machine.Settings()
	a.keys.StartBreak.SetEnabled(a.canStartBreak())
}

func (a App) showSummary() bool {
	if a.state.LastSession == nil || a.state.LastSession.ID == a.dismissed {
		return false
	}
	return a.state.Status == tempo.StatusCompleted || a.state.Status == tempo.StatusIdle
}

func (a App) canStartBreak() bool {
	return a.showSummary() && a.state.LastSession.BreakRecommendationMinutes > 0
}

func (a App) View() string {
	rows := []string{renderState(a.state, a.settings, a.showSummary())}
	if a.inputKind != noInput {
		rows = append(rows, FeedbackStyle.Render(a.input.View()))
	}
	if a.err != nil {
		rows = append(rows, ErrorStyle.Render(a.err.Error()))
	} else if a.feedback != "" {
		rows = append(rows, FeedbackStyle.Render(a.feedback))
	}
	rows = append(rows, "", a.help.View(a.keys))
	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func feedbackFor(sig session.Signal) string {
	switch sig := sig.(type) {
	case session.IntervalBell:
		return "interval bell at " + modes.FormatClock(sig.Offset)
	case session.UltradianBell:
		return "90 minutes in flow, time to rest"
	case session.PhaseChange:
		return "next up: " + string(sig.Next)
	case session.SessionEndBell:
		return sig.Mode.String() + " complete"
	}
	return ""
}
