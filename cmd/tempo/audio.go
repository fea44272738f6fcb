package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/tempo/modes"
	"github.com/benjamonnguyen/tempo/session"
)

type cue uint8

const (
	IntervalCue cue = iota + 1
	EndCue
	UltradianCue
	FocusCue
	BreakCue
	FadeCue
)

func (c cue) String() string {
	switch c {
	case IntervalCue:
		return "interval"
	case EndCue:
		return "end"
	case UltradianCue:
		return "ultradian"
	case FocusCue:
		return "focus"
	case BreakCue:
		return "break"
	case FadeCue:
		return "fade"
	}
	return fmt.Sprintf("cue(%d)", uint8(c))
}

type cueRequest struct {
	Cue    cue
	Sound  string
	Volume float64
	Fade   time.Duration
}

type CuePlayer interface {
	Play(req cueRequest) error
}

// cueFor maps a session signal to the sound it should trigger.
func cueFor(sig session.Signal) (cueRequest, bool) {
	var req cueRequest
	switch sig := sig.(type) {
	case session.IntervalBell:
		req = cueRequest{Cue: IntervalCue, Sound: sig.Sound, Volume: 0.5}
	case session.SessionEndBell:
		req = cueRequest{Cue: EndCue, Sound: sig.Sound, Volume: 1.0}
	case session.UltradianBell:
		req = cueRequest{Cue: UltradianCue, Sound: sig.Sound, Volume: 1.0}
	case session.PhaseChange:
		req = cueRequest{Cue: FocusCue, Sound: sig.Sound, Volume: 1.0}
		if sig.Next == modes.StepBreak {
			req.Cue = BreakCue
		}
	case session.AmbientFadeOut:
		req = cueRequest{Cue: FadeCue, Sound: sig.Sound, Fade: sig.Fade}
	default:
		return cueRequest{}, false
	}
	return req, true
}

// cuePlayer plays cues off the signal stream. Failures are logged and dropped.
type cuePlayer struct {
	player CuePlayer
	l      log.Logger
	wg     sync.WaitGroup
}

func newCuePlayer(player CuePlayer, l log.Logger) *cuePlayer {
	return &cuePlayer{player: player, l: l}
}

func (p *cuePlayer) Start(sigs <-chan session.Signal) {
	p.wg.Go(func() {
		for sig := range sigs {
			req, ok := cueFor(sig)
			if !ok {
				continue
			}
			if req.Sound == "" || req.Sound == modes.SoundNone {
				continue
			}
			if err := p.player.Play(req); err != nil {
				p.l.Warn("dropped cue", "cue", req.Cue, "sound", req.Sound, "err", err)
			}
		}
	})
}

func (p *cuePlayer) Wait() {
	p.wg.Wait()
}

// terminalBell rings the terminal bell for audible cues.
type terminalBell struct {
	w  io.Writer
	l  log.Logger
	mu sync.Mutex
}

var _ CuePlayer = (*terminalBell)(nil)

func newTerminalBell(w io.Writer, l log.Logger) *terminalBell {
	return &terminalBell{w: w, l: l}
}

func (b *terminalBell) Play(req cueRequest) error {
	b.l.Debug("playing cue", "cue", req.Cue, "sound", req.Sound, "volume", req.Volume, "fade", req.Fade)
	if req.Cue == FadeCue {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		return fmt.Errorf("failed to ring bell: %w", err)
	}
	return nil
}
