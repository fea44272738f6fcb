// Package session implements the timer session state machine. It interprets
// mode configuration, drives the clock engine and turns its ticks into
// domain signals.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/clock"
	"github.com/benjamonnguyen/tempo/modes"
)

var (
	ErrRunning         = errors.New("session is running")
	ErrNoLastSession   = errors.New("no finished session")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrNothingToFinish = errors.New("no elapsed session to finish")
	ErrNoBreak         = errors.New("no recommended break")
)

const (
	pauseFade    = time.Second
	completeFade = 5 * time.Second
)

// Engine is the part of clock.Engine the machine drives.
type Engine interface {
	Start(run uint64, seconds int, dir clock.Direction)
	Pause()
	Stop()
	Events() <-chan clock.Event
}

var _ Engine = (*clock.Engine)(nil)

type State struct {
	Mode      tempo.Mode
	Status    tempo.Status
	Remaining int
	Elapsed   int
	Progress  float64
	// Duration is the length of the current run in seconds, 0 when counting up.
	Duration   int
	Direction  clock.Direction
	Unresolved bool

	FlowState    tempo.FlowState
	Distractions int

	StepIndex    int
	StepType     modes.StepType
	Steps        int
	SequenceName string

	// OnBreak is set while the rest recommended by the last flow session runs.
	OnBreak bool

	LastSession *tempo.ExistingSessionRecord
}

type Machine struct {
	engine Engine
	clock  clock.Clock
	l      log.Logger

	mu          sync.Mutex
	state       State
	settings    modes.Settings
	handler     modeHandler
	run         uint64
	plan        modes.Plan
	runSettings modes.Settings

	prevElapsed    int
	sessionSeconds int
	fired          map[int]bool
	ultradianFired bool

	subsMu sync.Mutex
	subs   []chan Signal
}

func NewMachine(engine Engine, c clock.Clock, l log.Logger, mode tempo.Mode, settings modes.Settings) *Machine {
	if _, err := tempo.ParseMode(mode.String()); err != nil {
		mode = tempo.ModeMeditation
	}
	m := &Machine{
		engine:   engine,
		clock:    c,
		l:        l,
		settings: settings.Clone(),
		handler:  handlerFor(mode),
		fired:    make(map[int]bool),
	}
	m.state.Mode = mode
	m.resetLocked()
	return m
}

// Subscribe registers a signal observer. Signals are dropped for a
// subscriber whose buffer is full.
func (m *Machine) Subscribe(buffer int) <-chan Signal {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Signal, buffer)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

// Close closes all subscriber channels.
func (m *Machine) Close() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}

func (m *Machine) emit(s Signal) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- s:
		default:
			m.l.Warn("subscriber full, dropping signal", "signal", fmt.Sprintf("%T", s))
		}
	}
}

// Run consumes engine events until ctx is done or the engine shuts down.
func (m *Machine) Run(ctx context.Context) error {
	events := m.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.handle(ev)
		}
	}
}

func (m *Machine) handle(ev clock.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev.RunID() != m.run {
		return
	}
	if m.state.Status != tempo.StatusRunning && m.state.Status != tempo.StatusPaused {
		return
	}

	switch ev := ev.(type) {
	case clock.Tick:
		m.state.Remaining = ev.Remaining
		m.state.Elapsed = ev.Elapsed
		m.state.Progress = ev.Progress
		// paused snapshots only mirror values; checkpoints wait for resume
		if m.state.Status != tempo.StatusRunning {
			return
		}
		if ev.Elapsed > m.prevElapsed {
			m.handler.tick(m, m.prevElapsed, ev.Elapsed)
			m.prevElapsed = ev.Elapsed
		}
	case clock.Completed:
		m.handler.complete(m)
	}
}

func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Settings() modes.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.Clone()
}

// SetMode switches modes. Rejected while running; a paused run is discarded.
func (m *Machine) SetMode(mode tempo.Mode) error {
	if _, err := tempo.ParseMode(mode.String()); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status == tempo.StatusRunning {
		return fmt.Errorf("change mode to %s: %w", mode, ErrRunning)
	}
	if m.state.Status == tempo.StatusPaused {
		m.halt()
	}
	m.state.Mode = mode
	m.handler = handlerFor(mode)
	m.resetLocked()
	m.emit(SettingsChanged{Mode: mode, Settings: m.settings.Clone()})
	m.emit(StateChanged{State: m.state})
	return nil
}

// Start begins a new session from idle or completed, or resumes a paused one.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state.Status {
	case tempo.StatusRunning:
		return nil
	case tempo.StatusPaused:
		m.resumeLocked()
		return nil
	}

	plan, err := modes.Resolve(m.state.Mode, m.settings, 0)
	if err != nil {
		m.resetLocked()
		m.emit(StateChanged{State: m.state})
		return fmt.Errorf("start %s: %w", m.state.Mode, err)
	}

	m.resetLocked()
	m.runSettings = m.settings.Clone()
	m.arm(plan)
	m.l.Debug("session started", "mode", m.state.Mode, "seconds", plan.Seconds, "direction", plan.Direction)
	m.emit(StateChanged{State: m.state})
	return nil
}

func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status != tempo.StatusRunning {
		return
	}
	m.engine.Pause()
	m.state.Status = tempo.StatusPaused
	m.fadeAmbient(pauseFade)
	m.emit(StateChanged{State: m.state})
}

func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumeLocked()
}

func (m *Machine) resumeLocked() {
	if m.state.Status != tempo.StatusPaused {
		return
	}
	m.engine.Start(m.run, m.plan.Seconds, m.plan.Direction)
	m.state.Status = tempo.StatusRunning
	m.emit(StateChanged{State: m.state})
}

// Toggle starts, pauses or resumes depending on status.
func (m *Machine) Toggle() error {
	switch m.Snapshot().Status {
	case tempo.StatusRunning:
		m.Pause()
		return nil
	case tempo.StatusPaused:
		m.Resume()
		return nil
	default:
		return m.Start()
	}
}

// Stop halts the clock and returns to idle. A flow session with elapsed time
// is finished first so its summary is kept.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.state.Status == tempo.StatusRunning || m.state.Status == tempo.StatusPaused
	if active && m.state.Mode == tempo.ModeFlow && !m.state.OnBreak && m.state.Elapsed > 0 {
		m.finishLocked(0)
		return
	}
	m.halt()
	if active {
		m.fadeAmbient(pauseFade)
	}
	m.resetLocked()
	m.emit(StateChanged{State: m.state})
}

// Reset discards the current session without recording it.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.halt()
	m.resetLocked()
	m.emit(StateChanged{State: m.state})
}

// Acknowledge closes a completed session's summary.
func (m *Machine) Acknowledge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status != tempo.StatusCompleted {
		return
	}
	m.resetLocked()
	m.emit(StateChanged{State: m.state})
}

// FinishSession records the active session as completed and returns to idle.
// rating is 0 when the user has not rated it.
func (m *Machine) FinishSession(rating int) (tempo.ExistingSessionRecord, error) {
	if rating < 0 || rating > 5 {
		return tempo.ExistingSessionRecord{}, ErrInvalidRating
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.state.Status == tempo.StatusRunning || m.state.Status == tempo.StatusPaused
	if !active || m.state.OnBreak || m.sessionSeconds+m.state.Elapsed <= 0 {
		return tempo.ExistingSessionRecord{}, ErrNothingToFinish
	}
	return m.finishLocked(rating), nil
}

func (m *Machine) finishLocked(rating int) tempo.ExistingSessionRecord {
	seconds := m.sessionSeconds + m.state.Elapsed
	breakMinutes := 0
	if m.state.Mode == tempo.ModeFlow {
		breakMinutes = BreakRecommendation(seconds / 60)
	}
	rec := m.newRecord(seconds, breakMinutes, rating)

	m.halt()
	m.fadeAmbient(pauseFade)
	distractions := m.state.Distractions
	m.resetLocked()
	m.state.LastSession = &rec
	m.l.Info("session finished", "sid", rec.ID, "mode", rec.Mode, "seconds", seconds, "distractions", distractions, "break", breakMinutes)
	m.emit(SessionFinished{Record: rec})
	m.emit(StateChanged{State: m.state})
	return rec
}

// RateLastSession attaches a 1-5 star rating to the last finished session.
func (m *Machine) RateLastSession(stars int) error {
	if stars < 1 || stars > 5 {
		return ErrInvalidRating
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.LastSession == nil {
		return ErrNoLastSession
	}
	rated := *m.state.LastSession
	rated.Rating = stars
	rated.UpdatedAt = m.clock.Now()
	m.state.LastSession = &rated
	m.emit(SessionRated{ID: rated.ID, Rating: stars})
	return nil
}

// AddDistraction counts a self-reported distraction. Only flow sessions in
// progress count them.
func (m *Machine) AddDistraction() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Mode != tempo.ModeFlow {
		return false
	}
	if m.state.Status != tempo.StatusRunning && m.state.Status != tempo.StatusPaused {
		return false
	}
	if m.state.OnBreak {
		return false
	}
	m.state.Distractions++
	return true
}

// StartBreak counts down the rest recommended by the last flow session. The
// break is not recorded as a session.
func (m *Machine) StartBreak() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status == tempo.StatusRunning || m.state.Status == tempo.StatusPaused {
		return fmt.Errorf("start break: %w", ErrRunning)
	}
	last := m.state.LastSession
	if last == nil || last.BreakRecommendationMinutes <= 0 {
		return ErrNoBreak
	}

	m.resetLocked()
	m.runSettings = m.settings.Clone()
	m.handler = breakHandler{}
	m.state.OnBreak = true
	m.state.SequenceName = ""
	m.arm(modes.Plan{
		Seconds:   last.BreakRecommendationMinutes * 60,
		Direction: clock.CountDown,
		StepType:  modes.StepBreak,
		Steps:     1,
	})
	m.l.Debug("break started", "minutes", last.BreakRecommendationMinutes, "after", last.ID)
	m.emit(StateChanged{State: m.state})
	return nil
}

func (m *Machine) SetDuration(seconds int) error {
	return m.UpdateSettings(func(s *modes.Settings) error {
		return s.SetMeditationDuration(seconds)
	})
}

func (m *Machine) ToggleInterval(offset int) error {
	return m.UpdateSettings(func(s *modes.Settings) error {
		return s.ToggleInterval(offset)
	})
}

func (m *Machine) SetInfinite(infinite bool) error {
	return m.UpdateSettings(func(s *modes.Settings) error {
		s.SetInfinite(infinite)
		return nil
	})
}

func (m *Machine) AddSequence(name string, steps []modes.Step) (modes.Sequence, error) {
	var seq modes.Sequence
	err := m.UpdateSettings(func(s *modes.Settings) error {
		var err error
		seq, err = s.AddSequence(name, steps)
		return err
	})
	return seq, err
}

func (m *Machine) UpdateSequence(id, name string, steps []modes.Step) error {
	return m.UpdateSettings(func(s *modes.Settings) error {
		return s.UpdateSequence(id, name, steps)
	})
}

func (m *Machine) DeleteSequence(id string) error {
	return m.UpdateSettings(func(s *modes.Settings) error {
		return s.DeleteSequence(id)
	})
}

func (m *Machine) SetActiveSequence(id string) error {
	return m.UpdateSettings(func(s *modes.Settings) error {
		return s.SetActiveSequence(id)
	})
}

func (m *Machine) NextSequence() error {
	return m.UpdateSettings(func(s *modes.Settings) error {
		if _, ok := s.NextSequence(); !ok {
			return modes.ErrSequenceNotFound
		}
		return nil
	})
}

// UpdateSettings applies fn to a copy of the settings and keeps the result
// when fn succeeds. A running session keeps the settings it started with.
func (m *Machine) UpdateSettings(fn func(*modes.Settings) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.settings.Clone()
	if err := fn(&next); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	m.settings = next
	if m.state.Status == tempo.StatusIdle {
		m.resolveIdle()
	}
	m.emit(SettingsChanged{Mode: m.state.Mode, Settings: m.settings.Clone()})
	m.emit(StateChanged{State: m.state})
	return nil
}

// arm starts a clock run for plan under a fresh run id.
func (m *Machine) arm(plan modes.Plan) {
	m.run++
	m.plan = plan
	m.prevElapsed = 0
	m.state.Status = tempo.StatusRunning
	m.state.Remaining = plan.Seconds
	m.state.Elapsed = 0
	m.state.Progress = 0
	m.state.Duration = plan.Seconds
	m.state.Direction = plan.Direction
	m.state.Unresolved = false
	m.state.StepIndex = plan.StepIndex
	m.state.StepType = plan.StepType
	m.state.Steps = plan.Steps
	m.engine.Start(m.run, plan.Seconds, plan.Direction)
}

// halt stops the engine and orphans any in-flight events of the current run.
func (m *Machine) halt() {
	m.engine.Stop()
	m.run++
}

func (m *Machine) completeSession(sound string) {
	seconds := m.sessionSeconds + m.plan.Seconds
	rec := m.newRecord(seconds, 0, 0)

	m.run++
	m.state.Status = tempo.StatusCompleted
	m.state.Remaining = 0
	m.state.Elapsed = m.plan.Seconds
	m.state.Progress = 1
	m.state.LastSession = &rec

	m.l.Info("session completed", "sid", rec.ID, "mode", rec.Mode, "seconds", seconds)
	m.emit(SessionEndBell{Mode: m.state.Mode, Sound: sound})
	m.fadeAmbient(completeFade)
	m.emit(SessionFinished{Record: rec})
	m.emit(StateChanged{State: m.state})
}

func (m *Machine) newRecord(seconds, breakMinutes, rating int) tempo.ExistingSessionRecord {
	now := m.clock.Now()
	return tempo.ExistingSessionRecord{
		ExistingRecord: tempo.NewExistingRecordAt[tempo.SessionID](string(tempo.NewSessionID()), now),
		SessionRecord: tempo.SessionRecord{
			Mode:                       m.state.Mode,
			StartedAt:                  now.Add(-time.Duration(seconds) * time.Second),
			DurationSeconds:            seconds,
			Distractions:               m.state.Distractions,
			BreakRecommendationMinutes: breakMinutes,
			Rating:                     rating,
			Completed:                  true,
		},
	}
}

func (m *Machine) fadeAmbient(fade time.Duration) {
	sound := m.handler.ambientSound(m.runSettings)
	if sound == "" || sound == modes.SoundNone {
		return
	}
	m.emit(AmbientFadeOut{Sound: sound, Fade: fade})
}

func (m *Machine) raiseFlowState(fs tempo.FlowState) {
	if fs > m.state.FlowState {
		m.state.FlowState = fs
	}
}

// resetLocked returns to idle with configured durations. lastSession survives.
func (m *Machine) resetLocked() {
	m.state.Status = tempo.StatusIdle
	m.state.Elapsed = 0
	m.state.Progress = 0
	m.state.FlowState = tempo.FlowWarmup
	m.state.Distractions = 0
	m.prevElapsed = 0
	m.sessionSeconds = 0
	m.ultradianFired = false
	clear(m.fired)
	m.handler = handlerFor(m.state.Mode)
	m.state.OnBreak = false
	m.resolveIdle()
}

func (m *Machine) resolveIdle() {
	plan, err := modes.Resolve(m.state.Mode, m.settings, 0)
	m.state.Unresolved = err != nil
	m.state.Remaining = plan.Seconds
	m.state.Duration = plan.Seconds
	m.state.Direction = plan.Direction
	m.state.StepIndex = 0
	m.state.StepType = plan.StepType
	m.state.Steps = plan.Steps
	m.state.SequenceName = ""
	if seq, ok := m.settings.ActiveSequence(); ok && m.state.Mode == tempo.ModePomodoro {
		m.state.SequenceName = seq.Name
	}
}
