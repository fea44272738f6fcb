package modes

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func (s Settings) ActiveSequence() (Sequence, bool) {
	return s.Sequence(s.Pomodoro.ActiveSequenceID)
}

func (s Settings) Sequence(id string) (Sequence, bool) {
	if id == "" {
		return Sequence{}, false
	}
	for _, seq := range s.Pomodoro.Sequences {
		if seq.ID == id {
			return seq, true
		}
	}
	return Sequence{}, false
}

// AddSequence appends a sequence and makes it active when none is.
func (s *Settings) AddSequence(name string, steps []Step) (Sequence, error) {
	if err := validateSteps(steps); err != nil {
		return Sequence{}, err
	}
	seq := Sequence{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Steps: slices.Clone(steps),
	}
	if seq.Name == "" {
		seq.Name = fmt.Sprintf("Sequence %d", len(s.Pomodoro.Sequences)+1)
	}
	s.Pomodoro.Sequences = append(s.Pomodoro.Sequences, seq)
	if s.Pomodoro.ActiveSequenceID == "" {
		s.Pomodoro.ActiveSequenceID = seq.ID
	}
	return seq, nil
}

func (s *Settings) UpdateSequence(id, name string, steps []Step) error {
	if err := validateSteps(steps); err != nil {
		return err
	}
	i := s.sequenceIndex(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrSequenceNotFound)
	}
	if name = strings.TrimSpace(name); name != "" {
		s.Pomodoro.Sequences[i].Name = name
	}
	s.Pomodoro.Sequences[i].Steps = slices.Clone(steps)
	return nil
}

// DeleteSequence removes a sequence. Deleting the active one selects the
// first remaining sequence, or none.
func (s *Settings) DeleteSequence(id string) error {
	i := s.sequenceIndex(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrSequenceNotFound)
	}
	s.Pomodoro.Sequences = slices.Delete(s.Pomodoro.Sequences, i, i+1)
	if s.Pomodoro.ActiveSequenceID == id {
		s.Pomodoro.ActiveSequenceID = ""
		if len(s.Pomodoro.Sequences) > 0 {
			s.Pomodoro.ActiveSequenceID = s.Pomodoro.Sequences[0].ID
		}
	}
	return nil
}

func (s *Settings) SetActiveSequence(id string) error {
	if s.sequenceIndex(id) < 0 {
		return fmt.Errorf("activate %s: %w", id, ErrSequenceNotFound)
	}
	s.Pomodoro.ActiveSequenceID = id
	return nil
}

// NextSequence activates the sequence after the active one, wrapping around.
func (s *Settings) NextSequence() (Sequence, bool) {
	n := len(s.Pomodoro.Sequences)
	if n == 0 {
		return Sequence{}, false
	}
	next := s.Pomodoro.Sequences[(s.sequenceIndex(s.Pomodoro.ActiveSequenceID)+1)%n]
	s.Pomodoro.ActiveSequenceID = next.ID
	return next, true
}

func (s Settings) sequenceIndex(id string) int {
	return slices.IndexFunc(s.Pomodoro.Sequences, func(seq Sequence) bool {
		return seq.ID == id
	})
}

// SetInfinite toggles open-ended meditation. Turning it off drops checkpoints
// past the configured duration.
func (s *Settings) SetInfinite(infinite bool) {
	s.Meditation.Infinite = infinite
	if !infinite {
		s.Meditation.Intervals = slices.DeleteFunc(s.Meditation.Intervals, func(offset int) bool {
			return !s.validInterval(offset)
		})
	}
}

func validateSteps(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("sequence needs at least one step: %w", ErrInvalidSteps)
	}
	for i, step := range steps {
		if step.Type != StepFocus && step.Type != StepBreak {
			return fmt.Errorf("step %d has type %q: %w", i, step.Type, ErrInvalidSteps)
		}
		if step.DurationMinutes <= 0 {
			return fmt.Errorf("step %d has %d minutes: %w", i, step.DurationMinutes, ErrInvalidSteps)
		}
	}
	return nil
}

// ParseSteps reads a quick-entry string like "25 5 25 10". Values are minutes
// separated by spaces, commas or periods, alternating focus and break.
func ParseSteps(s string) ([]Step, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '.' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty sequence: %w", ErrInvalidSteps)
	}

	steps := make([]Step, 0, len(fields))
	for i, f := range fields {
		minutes, err := strconv.Atoi(f)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("%q is not a positive number of minutes: %w", f, ErrInvalidSteps)
		}
		typ := StepFocus
		if i%2 == 1 {
			typ = StepBreak
		}
		steps = append(steps, Step{Type: typ, DurationMinutes: minutes})
	}
	return steps, nil
}

// FormatSteps is the inverse of ParseSteps.
func FormatSteps(steps []Step) string {
	parts := make([]string, len(steps))
	for i, step := range steps {
		parts[i] = strconv.Itoa(step.DurationMinutes)
	}
	return strings.Join(parts, " ")
}
