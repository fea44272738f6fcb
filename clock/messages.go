package clock

import (
	"fmt"
	"time"
)

type Direction uint8

const (
	_ Direction = iota
	CountDown
	CountUp
)

func (d Direction) String() string {
	switch d {
	case CountDown:
		return "COUNT_DOWN"
	case CountUp:
		return "COUNT_UP"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

type CommandKind uint8

const (
	_ CommandKind = iota
	CmdStart
	CmdPause
	CmdStop
)

func (k CommandKind) String() string {
	switch k {
	case CmdStart:
		return "START"
	case CmdPause:
		return "PAUSE"
	case CmdStop:
		return "STOP"
	default:
		return fmt.Sprintf("CommandKind(%d)", uint8(k))
	}
}

// Command is a control message for the engine. At is the instant the command
// was issued; Send fills it in when left zero.
type Command struct {
	Kind            CommandKind
	Run             uint64
	DurationSeconds int
	Direction       Direction
	At              time.Time
}

// Event is emitted by the engine. Every event carries the run it belongs to so
// consumers can ignore output of superseded runs.
type Event interface {
	RunID() uint64
}

type Tick struct {
	Run       uint64
	Remaining int
	Elapsed   int
	Progress  float64
}

func (t Tick) RunID() uint64 { return t.Run }

type Completed struct {
	Run uint64
}

func (c Completed) RunID() uint64 { return c.Run }
