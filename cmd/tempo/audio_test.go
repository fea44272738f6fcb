package main

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/modes"
	"github.com/benjamonnguyen/tempo/session"
)

type mockPlayer struct {
	played []cueRequest
	err    error
}

func (m *mockPlayer) Play(req cueRequest) error {
	m.played = append(m.played, req)
	return m.err
}

func TestCueFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		sig  session.Signal
		want cueRequest
		ok   bool
	}{
		{
			name: "interval bell is quieter",
			sig:  session.IntervalBell{Offset: 60, Sound: modes.SoundChime},
			want: cueRequest{Cue: IntervalCue, Sound: modes.SoundChime, Volume: 0.5},
			ok:   true,
		},
		{
			name: "end bell",
			sig:  session.SessionEndBell{Mode: tempo.ModeMeditation, Sound: modes.SoundBowl},
			want: cueRequest{Cue: EndCue, Sound: modes.SoundBowl, Volume: 1.0},
			ok:   true,
		},
		{
			name: "ultradian",
			sig:  session.UltradianBell{Sound: modes.SoundChime},
			want: cueRequest{Cue: UltradianCue, Sound: modes.SoundChime, Volume: 1.0},
			ok:   true,
		},
		{
			name: "phase to break",
			sig:  session.PhaseChange{Next: modes.StepBreak, StepIndex: 1, Sound: modes.SoundChime},
			want: cueRequest{Cue: BreakCue, Sound: modes.SoundChime, Volume: 1.0},
			ok:   true,
		},
		{
			name: "phase to focus",
			sig:  session.PhaseChange{Next: modes.StepFocus, StepIndex: 2, Sound: modes.SoundBowl},
			want: cueRequest{Cue: FocusCue, Sound: modes.SoundBowl, Volume: 1.0},
			ok:   true,
		},
		{
			name: "fade",
			sig:  session.AmbientFadeOut{Sound: modes.SoundRain, Fade: time.Second},
			want: cueRequest{Cue: FadeCue, Sound: modes.SoundRain, Fade: time.Second},
			ok:   true,
		},
		{
			name: "state changes are silent",
			sig:  session.StateChanged{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := cueFor(tc.sig)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCuePlayer(t *testing.T) {
	t.Parallel()

	player := &mockPlayer{err: errors.New("device busy")}
	p := newCuePlayer(player, *log.New(io.Discard))

	ch := make(chan session.Signal, 4)
	ch <- session.IntervalBell{Offset: 60, Sound: modes.SoundNone}
	ch <- session.SessionEndBell{Sound: ""}
	ch <- session.SessionEndBell{Sound: modes.SoundBowl}
	ch <- session.SessionEndBell{Sound: modes.SoundBowl}
	close(ch)
	p.Start(ch)
	p.Wait()

	// failures are dropped and later cues still play
	require.Len(t, player.played, 2)
	assert.Equal(t, EndCue, player.played[0].Cue)
}

func TestTerminalBell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	b := newTerminalBell(&buf, *log.New(io.Discard))
	require.NoError(t, b.Play(cueRequest{Cue: EndCue, Sound: modes.SoundBowl, Volume: 1}))
	require.NoError(t, b.Play(cueRequest{Cue: FadeCue, Sound: modes.SoundRain, Fade: time.Second}))
	assert.Equal(t, "\a", buf.String())
}
