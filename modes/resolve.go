package modes

import (
	"fmt"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/clock"
)

// Plan is what the clock should run for a mode.
type Plan struct {
	Seconds   int
	Direction clock.Direction
	// StepType, StepIndex and Steps describe the pomodoro step being run.
	StepType  StepType
	StepIndex int
	Steps     int
}

// HasNext reports whether a pomodoro step follows this one.
func (p Plan) HasNext() bool {
	return p.StepIndex+1 < p.Steps
}

// Resolve maps mode and settings to a clock run. Missing configuration returns
// ErrUnresolved instead of a zero-length plan.
func Resolve(mode tempo.Mode, s Settings, stepIndex int) (Plan, error) {
	switch mode {
	case tempo.ModeMeditation:
		if s.Meditation.Infinite {
			return Plan{Direction: clock.CountUp}, nil
		}
		if s.Meditation.DurationSeconds <= 0 {
			return Plan{}, fmt.Errorf("meditation duration %d: %w", s.Meditation.DurationSeconds, ErrUnresolved)
		}
		return Plan{Seconds: s.Meditation.DurationSeconds, Direction: clock.CountDown}, nil

	case tempo.ModePomodoro:
		seq, ok := s.ActiveSequence()
		if !ok {
			return Plan{}, fmt.Errorf("no active sequence: %w", ErrUnresolved)
		}
		if stepIndex < 0 || stepIndex >= len(seq.Steps) {
			return Plan{}, fmt.Errorf("step %d of %d in %q: %w", stepIndex, len(seq.Steps), seq.Name, ErrUnresolved)
		}
		step := seq.Steps[stepIndex]
		if step.DurationMinutes <= 0 {
			return Plan{}, fmt.Errorf("step %d has no duration: %w", stepIndex, ErrUnresolved)
		}
		return Plan{
			Seconds:   step.Seconds(),
			Direction: clock.CountDown,
			StepType:  step.Type,
			StepIndex: stepIndex,
			Steps:     len(seq.Steps),
		}, nil

	case tempo.ModeFlow, tempo.ModeStopwatch:
		return Plan{Direction: clock.CountUp}, nil

	default:
		return Plan{}, fmt.Errorf("mode %s: %w", mode, ErrUnresolved)
	}
}
