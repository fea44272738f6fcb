package session

import (
	"time"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/modes"
)

// Signal is a fire-and-forget notification for audio, UI and storage
// collaborators.
type Signal interface {
	signal()
}

// IntervalBell marks a meditation checkpoint.
type IntervalBell struct {
	Offset int
	Sound  string
}

// UltradianBell fires once when a flow session reaches 90 minutes.
type UltradianBell struct {
	Sound string
}

// PhaseChange is emitted when a pomodoro sequence moves to its next step.
type PhaseChange struct {
	Next      modes.StepType
	StepIndex int
	Sound     string
}

type SessionEndBell struct {
	Mode  tempo.Mode
	Sound string
}

type AmbientFadeOut struct {
	Sound string
	Fade  time.Duration
}

type StateChanged struct {
	State State
}

type SessionFinished struct {
	Record tempo.ExistingSessionRecord
}

type SessionRated struct {
	ID     tempo.SessionID
	Rating int
}

type SettingsChanged struct {
	Mode     tempo.Mode
	Settings modes.Settings
}

func (IntervalBell) signal()    {}
func (UltradianBell) signal()   {}
func (PhaseChange) signal()     {}
func (SessionEndBell) signal()  {}
func (AmbientFadeOut) signal()  {}
func (StateChanged) signal()    {}
func (SessionFinished) signal() {}
func (SessionRated) signal()    {}
func (SettingsChanged) signal() {}
