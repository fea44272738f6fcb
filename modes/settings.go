// Package modes holds per-mode timer configuration and resolves it into the
// duration and direction of the next clock run.
package modes

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnresolved       = errors.New("timer configuration unresolved")
	ErrSequenceNotFound = errors.New("sequence not found")
	ErrInvalidInterval  = errors.New("invalid interval")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrInvalidSteps     = errors.New("invalid steps")
)

type StepType string

const (
	StepFocus StepType = "focus"
	StepBreak StepType = "break"
)

type Step struct {
	Type            StepType `yaml:"type"`
	DurationMinutes int      `yaml:"duration_minutes"`
}

func (s Step) Seconds() int {
	return s.DurationMinutes * 60
}

type Sequence struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// IntervalSet holds distinct checkpoint offsets in seconds, ascending.
type IntervalSet []int

func (s IntervalSet) Contains(offset int) bool {
	_, found := slices.BinarySearch(s, offset)
	return found
}

type MeditationSettings struct {
	DurationSeconds int         `yaml:"duration_seconds"`
	Infinite        bool        `yaml:"infinite"`
	Intervals       IntervalSet `yaml:"intervals"`
	EndSound        string      `yaml:"end_sound"`
	IntervalSound   string      `yaml:"interval_sound"`
	AmbientSound    string      `yaml:"ambient_sound"`
}

type PomodoroSettings struct {
	Sequences        []Sequence `yaml:"sequences"`
	ActiveSequenceID string     `yaml:"active_sequence_id"`
	FocusSound       string     `yaml:"focus_sound"`
	BreakSound       string     `yaml:"break_sound"`
	EndSound         string     `yaml:"end_sound"`
}

type FlowSettings struct {
	UltradianSound string `yaml:"ultradian_sound"`
	AmbientSound   string `yaml:"ambient_sound"`
	BreakEndSound  string `yaml:"break_end_sound"`
}

type Settings struct {
	Meditation MeditationSettings `yaml:"meditation"`
	Pomodoro   PomodoroSettings   `yaml:"pomodoro"`
	Flow       FlowSettings       `yaml:"flow"`
}

const (
	SoundBowl  = "bowl"
	SoundChime = "chime"
	SoundRain  = "rain"
	SoundNone  = "none"
)

func DefaultSettings() Settings {
	s := Settings{
		Meditation: MeditationSettings{
			DurationSeconds: 600,
			EndSound:        SoundBowl,
			IntervalSound:   SoundChime,
			AmbientSound:    SoundNone,
		},
		Pomodoro: PomodoroSettings{
			FocusSound: SoundBowl,
			BreakSound: SoundChime,
			EndSound:   SoundBowl,
		},
		Flow: FlowSettings{
			UltradianSound: SoundChime,
			AmbientSound:   SoundNone,
			BreakEndSound:  SoundBowl,
		},
	}
	classic, _ := ParseSteps("25 5 25 5 25 5 25 15")
	deep, _ := ParseSteps("50 10 50 10")
	_, _ = s.AddSequence("Classic", classic)
	_, _ = s.AddSequence("Deep Work", deep)
	return s
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	c := s
	c.Meditation.Intervals = slices.Clone(s.Meditation.Intervals)
	c.Pomodoro.Sequences = make([]Sequence, len(s.Pomodoro.Sequences))
	for i, seq := range s.Pomodoro.Sequences {
		seq.Steps = slices.Clone(seq.Steps)
		c.Pomodoro.Sequences[i] = seq
	}
	return c
}

// Normalize repairs settings loaded from an older or hand-edited file.
func (s *Settings) Normalize() {
	defaults := DefaultSettings()
	if s.Meditation.DurationSeconds <= 0 {
		s.Meditation.DurationSeconds = defaults.Meditation.DurationSeconds
	}
	for _, sound := range []struct {
		dst *string
		def string
	}{
		{&s.Meditation.EndSound, defaults.Meditation.EndSound},
		{&s.Meditation.IntervalSound, defaults.Meditation.IntervalSound},
		{&s.Pomodoro.FocusSound, defaults.Pomodoro.FocusSound},
		{&s.Pomodoro.BreakSound, defaults.Pomodoro.BreakSound},
		{&s.Pomodoro.EndSound, defaults.Pomodoro.EndSound},
		{&s.Flow.UltradianSound, defaults.Flow.UltradianSound},
		{&s.Flow.BreakEndSound, defaults.Flow.BreakEndSound},
	} {
		if *sound.dst == "" {
			*sound.dst = sound.def
		}
	}
	var intervals IntervalSet
	for _, offset := range s.Meditation.Intervals {
		if s.validInterval(offset) {
			intervals = append(intervals, offset)
		}
	}
	slices.Sort(intervals)
	s.Meditation.Intervals = slices.Compact(intervals)

	s.Pomodoro.Sequences = slices.DeleteFunc(s.Pomodoro.Sequences, func(seq Sequence) bool {
		return seq.ID == "" || validateSteps(seq.Steps) != nil
	})
	if _, ok := s.ActiveSequence(); !ok {
		s.Pomodoro.ActiveSequenceID = ""
		if len(s.Pomodoro.Sequences) > 0 {
			s.Pomodoro.ActiveSequenceID = s.Pomodoro.Sequences[0].ID
		}
	}
}

func (s Settings) Validate() error {
	if s.Meditation.DurationSeconds <= 0 {
		return fmt.Errorf("meditation duration %d: %w", s.Meditation.DurationSeconds, ErrInvalidDuration)
	}
	for i, offset := range s.Meditation.Intervals {
		if !s.validInterval(offset) {
			return fmt.Errorf("interval %d: %w", offset, ErrInvalidInterval)
		}
		if i > 0 && s.Meditation.Intervals[i-1] >= offset {
			return fmt.Errorf("intervals not ascending at %d: %w", offset, ErrInvalidInterval)
		}
	}
	for _, seq := range s.Pomodoro.Sequences {
		if err := validateSteps(seq.Steps); err != nil {
			return fmt.Errorf("sequence %q: %w", seq.Name, err)
		}
	}
	if s.Pomodoro.ActiveSequenceID == "" {
		if len(s.Pomodoro.Sequences) > 0 {
			return fmt.Errorf("no active sequence selected")
		}
		return nil
	}
	if _, ok := s.ActiveSequence(); !ok {
		return fmt.Errorf("active sequence %s: %w", s.Pomodoro.ActiveSequenceID, ErrSequenceNotFound)
	}
	return nil
}

// ToggleInterval adds offset to the checkpoint set, or removes it if present.
func (s *Settings) ToggleInterval(offset int) error {
	m := &s.Meditation
	if i, found := slices.BinarySearch(m.Intervals, offset); found {
		m.Intervals = slices.Delete(m.Intervals, i, i+1)
		return nil
	}
	if !s.validInterval(offset) {
		return fmt.Errorf("offset %ds outside (0, %ds): %w", offset, m.DurationSeconds, ErrInvalidInterval)
	}
	i, _ := slices.BinarySearch(m.Intervals, offset)
	m.Intervals = slices.Insert(m.Intervals, i, offset)
	return nil
}

// SetMeditationDuration drops checkpoints that no longer fall inside the session.
func (s *Settings) SetMeditationDuration(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("meditation duration %d: %w", seconds, ErrInvalidDuration)
	}
	s.Meditation.DurationSeconds = seconds
	s.Meditation.Intervals = slices.DeleteFunc(s.Meditation.Intervals, func(offset int) bool {
		return !s.validInterval(offset)
	})
	return nil
}

func (s Settings) validInterval(offset int) bool {
	if offset <= 0 {
		return false
	}
	return s.Meditation.Infinite || offset < s.Meditation.DurationSeconds
}
