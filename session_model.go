package tempo

import (
	"context"
	"fmt"
	"time"
)

type Mode uint8

const (
	_ Mode = iota
	ModeMeditation
	ModePomodoro
	ModeFlow
	ModeStopwatch
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeMeditation, ModePomodoro, ModeFlow, ModeStopwatch}

func (m Mode) String() string {
	switch m {
	case ModeMeditation:
		return "meditation"
	case ModePomodoro:
		return "pomodoro"
	case ModeFlow:
		return "flow"
	case ModeStopwatch:
		return "stopwatch"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Next cycles through Modes.
func (m Mode) Next() Mode {
	for i, candidate := range Modes {
		if candidate == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeMeditation
}

type Status uint8

const (
	_ Status = iota
	StatusIdle
	StatusRunning
	StatusPaused
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// FlowState is the focus depth tier of a flow session.
type FlowState uint8

const (
	FlowWarmup FlowState = iota
	FlowZone
	FlowUltradianLimit
)

func (f FlowState) String() string {
	switch f {
	case FlowWarmup:
		return "warmup"
	case FlowZone:
		return "flow_zone"
	case FlowUltradianLimit:
		return "ultradian_limit"
	default:
		return fmt.Sprintf("FlowState(%d)", uint8(f))
	}
}

type SessionID string

// SessionRecord is the immutable summary of a finished session.
type SessionRecord struct {
	Mode            Mode
	StartedAt       time.Time
	DurationSeconds int
	Distractions    int
	// BreakRecommendationMinutes is only set for flow sessions.
	BreakRecommendationMinutes int
	// Rating is 0 until the user rates the session.
	Rating    int
	Completed bool
}

type ExistingSessionRecord struct {
	ExistingRecord[SessionID]
	SessionRecord
}

type SessionRepo interface {
	InsertSession(context.Context, ExistingSessionRecord) (ExistingSessionRecord, error)
	UpdateRating(ctx context.Context, id SessionID, rating int) (ExistingSessionRecord, error)
	GetSession(ctx context.Context, id SessionID) (ExistingSessionRecord, error)
	ListSessions(ctx context.Context, limit int) ([]ExistingSessionRecord, error)
	GetSessionsByMode(ctx context.Context, modes ...Mode) ([]ExistingSessionRecord, error)
}
