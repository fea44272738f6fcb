package clock

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultInterval = 100 * time.Millisecond
	defaultBuffer   = 64
)

type Option func(*Engine)

// WithInterval sets the poll cadence.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithBuffer sets the capacity of the events channel.
func WithBuffer(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.buffer = n
		}
	}
}

// Engine owns at most one timer run. Commands are queued without blocking the
// caller and applied by Run, which is the only goroutine touching run state.
type Engine struct {
	clock    Clock
	l        log.Logger
	interval time.Duration
	buffer   int

	mu      sync.Mutex
	pending []Command
	wake    chan struct{}
	events  chan Event

	run    *run
	ticker Ticker
}

type run struct {
	id     uint64
	dir    Direction
	total  time.Duration
	anchor time.Time
	target time.Time

	paused     bool
	pausedLeft time.Duration
	pausedSpan time.Duration
}

func NewEngine(c Clock, l log.Logger, opts ...Option) *Engine {
	e := &Engine{
		clock:    c,
		l:        l,
		interval: DefaultInterval,
		buffer:   defaultBuffer,
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.events = make(chan Event, e.buffer)
	return e
}

// Events is closed when Run returns.
func (e *Engine) Events() <-chan Event {
	return e.events
}

func (e *Engine) Start(runID uint64, seconds int, dir Direction) {
	e.Send(Command{Kind: CmdStart, Run: runID, DurationSeconds: seconds, Direction: dir})
}

func (e *Engine) Pause() {
	e.Send(Command{Kind: CmdPause})
}

func (e *Engine) Stop() {
	e.Send(Command{Kind: CmdStop})
}

// Send queues cmd. It never blocks.
func (e *Engine) Send(cmd Command) {
	if cmd.At.IsZero() {
		cmd.At = e.clock.Now()
	}
	e.mu.Lock()
	e.pending = append(e.pending, cmd)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) Run(ctx context.Context) error {
	defer close(e.events)
	defer e.stopTicker()

	for {
		var tickC <-chan time.Time
		if e.ticker != nil {
			tickC = e.ticker.C()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wake:
			if !e.drain(ctx) {
				return ctx.Err()
			}
		case <-tickC:
			// queued commands always win over the tick that raced them
			if !e.drain(ctx) {
				return ctx.Err()
			}
			if e.run != nil && !e.run.paused {
				if !e.tick(ctx, e.clock.Now()) {
					return ctx.Err()
				}
			}
		}
	}
}

func (e *Engine) drain(ctx context.Context) bool {
	e.mu.Lock()
	cmds := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, cmd := range cmds {
		e.l.Debug("handling command", "kind", cmd.Kind, "run", cmd.Run, "seconds", cmd.DurationSeconds, "direction", cmd.Direction)
		var ok bool
		switch cmd.Kind {
		case CmdStart:
			ok = e.handleStart(ctx, cmd)
		case CmdPause:
			ok = e.handlePause(ctx, cmd)
		case CmdStop:
			e.handleStop()
			ok = true
		default:
			e.l.Warn("unknown command", "kind", cmd.Kind)
			ok = true
		}
		if !ok {
			return false
		}
	}
	return true
}

func (e *Engine) handleStart(ctx context.Context, cmd Command) bool {
	if r := e.run; r != nil && r.paused {
		r.id = cmd.Run
		switch r.dir {
		case CountDown:
			r.target = cmd.At.Add(r.pausedLeft)
			r.anchor = cmd.At.Add(-(r.total - r.pausedLeft))
		case CountUp:
			r.anchor = cmd.At.Add(-r.pausedSpan)
		}
		r.paused = false
		e.startTicker()
		return e.tick(ctx, cmd.At)
	}

	switch cmd.Direction {
	case CountDown:
		if cmd.DurationSeconds <= 0 {
			e.l.Debug("ignoring start without duration", "run", cmd.Run)
			return true
		}
	case CountUp:
	default:
		e.l.Debug("ignoring start with unknown direction", "run", cmd.Run, "direction", cmd.Direction)
		return true
	}

	total := time.Duration(max(cmd.DurationSeconds, 0)) * time.Second
	e.run = &run{
		id:     cmd.Run,
		dir:    cmd.Direction,
		total:  total,
		anchor: cmd.At,
		target: cmd.At.Add(total),
	}
	e.startTicker()
	return e.tick(ctx, cmd.At)
}

func (e *Engine) handlePause(ctx context.Context, cmd Command) bool {
	r := e.run
	if r == nil || r.paused {
		return true
	}
	if r.dir == CountDown && !r.target.After(cmd.At) {
		// ran out before the pause landed
		return e.tick(ctx, cmd.At)
	}

	r.paused = true
	r.pausedLeft = r.target.Sub(cmd.At)
	r.pausedSpan = cmd.At.Sub(r.anchor)
	e.stopTicker()
	e.emit(r.pausedTick())
	return true
}

func (e *Engine) handleStop() {
	e.run = nil
	e.stopTicker()
}

// tick emits the snapshot at now. Reports false only when ctx ended while
// delivering completion.
func (e *Engine) tick(ctx context.Context, now time.Time) bool {
	r := e.run
	if r.dir == CountDown && !r.target.After(now) {
		e.run = nil
		e.stopTicker()
		total := int(r.total / time.Second)
		e.l.Debug("run completed", "run", r.id, "seconds", total)
		return e.emitWait(ctx, Tick{Run: r.id, Remaining: 0, Elapsed: total, Progress: 1}) &&
			e.emitWait(ctx, Completed{Run: r.id})
	}
	e.emit(r.snapshot(now))
	return true
}

func (r *run) snapshot(now time.Time) Tick {
	span := max(now.Sub(r.anchor), 0)
	if r.dir == CountUp {
		elapsed := floorSeconds(span)
		return Tick{Run: r.id, Elapsed: elapsed, Progress: float64(elapsed%60) / 60}
	}

	left := r.target.Sub(now)
	return Tick{
		Run:       r.id,
		Remaining: ceilSeconds(left),
		Elapsed:   min(floorSeconds(span), int(r.total/time.Second)),
		Progress:  clamp(1-float64(left)/float64(r.total), 0, 1),
	}
}

func (r *run) pausedTick() Tick {
	if r.dir == CountUp {
		elapsed := floorSeconds(r.pausedSpan)
		return Tick{Run: r.id, Elapsed: elapsed, Progress: float64(elapsed%60) / 60}
	}
	return Tick{
		Run:       r.id,
		Remaining: ceilSeconds(r.pausedLeft),
		Elapsed:   floorSeconds(r.pausedSpan),
		Progress:  clamp(1-float64(r.pausedLeft)/float64(r.total), 0, 1),
	}
}

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.l.Warn("events buffer full, dropping tick", "run", ev.RunID())
	}
}

func (e *Engine) emitWait(ctx context.Context, ev Event) bool {
	select {
	case e.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) startTicker() {
	if e.ticker == nil {
		e.ticker = e.clock.NewTicker(e.interval)
	}
}

func (e *Engine) stopTicker() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

func floorSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
