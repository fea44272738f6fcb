package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/clock"
	"github.com/benjamonnguyen/tempo/modes"
	"github.com/benjamonnguyen/tempo/session"
)

func TestTimerBar(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		state          session.State
		expectedFilled int
		expectedEmpty  int
	}{
		{
			name:           "just started",
			state:          session.State{Direction: clock.CountDown, Remaining: 1800, Duration: 1800},
			expectedFilled: 20,
			expectedEmpty:  0,
		},
		{
			name:           "half elapsed",
			state:          session.State{Direction: clock.CountDown, Remaining: 900, Duration: 1800, Progress: 0.5},
			expectedFilled: 10,
			expectedEmpty:  10,
		},
		{
			name:           "one minute left",
			state:          session.State{Direction: clock.CountDown, Remaining: 60, Duration: 1200, Progress: 0.95},
			expectedFilled: 1,
			expectedEmpty:  19,
		},
		{
			name:           "expired",
			state:          session.State{Direction: clock.CountDown, Remaining: 0, Duration: 1800, Progress: 1},
			expectedFilled: 0,
			expectedEmpty:  20,
		},
		{
			name:           "count up follows the minute",
			state:          session.State{Direction: clock.CountUp, Elapsed: 75, Progress: 0.25},
			expectedFilled: 5,
			expectedEmpty:  15,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := timerBar(tc.state)
			expected := strings.Repeat(timerBarFilledChar, tc.expectedFilled) + strings.Repeat(timerBarEmptyChar, tc.expectedEmpty)
			if result != expected {
				t.Errorf("timerBar() = %q, want %q", result, expected)
			}
		})
	}
}

func TestClockText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "9:59", clockText(session.State{Direction: clock.CountDown, Remaining: 599, Elapsed: 1}))
	assert.Equal(t, "1:02:05", clockText(session.State{Direction: clock.CountUp, Elapsed: 3725}))
	assert.Equal(t, "--:--", clockText(session.State{Unresolved: true}))
}

func TestSummaryText(t *testing.T) {
	t.Parallel()

	rec := flowRecord()
	assert.Equal(t, "flow session · 30:00 · 2 distractions · rest 10 min · rate 1-5", summaryText(rec))

	rec.Mode = tempo.ModeMeditation
	rec.Rating = 5
	assert.Equal(t, "meditation session · 30:00 · ★★★★★", summaryText(rec))
}

func TestRenderState(t *testing.T) {
	t.Parallel()

	cfg := modes.DefaultSettings()
	cfg.Meditation.Intervals = modes.IntervalSet{60, 300}

	t.Run("meditation", func(t *testing.T) {
		t.Parallel()
		out := renderState(session.State{Mode: tempo.ModeMeditation, Status: tempo.StatusIdle, Direction: clock.CountDown, Remaining: 600, Duration: 600}, cfg, false)
		assert.Contains(t, out, "meditation")
		assert.Contains(t, out, "ready")
		assert.Contains(t, out, "10:00")
		assert.Contains(t, out, "bells at 1:00, 5:00")
	})

	t.Run("pomodoro step", func(t *testing.T) {
		t.Parallel()
		s := session.State{
			Mode:         tempo.ModePomodoro,
			Status:       tempo.StatusRunning,
			Direction:    clock.CountDown,
			Remaining:    300,
			Duration:     300,
			StepIndex:    1,
			Steps:        8,
			StepType:     modes.StepBreak,
			SequenceName: "Classic",
		}
		out := renderState(s, cfg, false)
		assert.Contains(t, out, "Classic · step 2/8 · break")
	})

	t.Run("pomodoro idle lists steps", func(t *testing.T) {
		t.Parallel()
		s := session.State{
			Mode:         tempo.ModePomodoro,
			Status:       tempo.StatusIdle,
			Direction:    clock.CountDown,
			Remaining:    1500,
			Duration:     1500,
			Steps:        8,
			StepType:     modes.StepFocus,
			SequenceName: "Classic",
		}
		out := renderState(s, cfg, false)
		assert.Contains(t, out, "steps 25 5 25 5 25 5 25 15")
	})

	t.Run("break", func(t *testing.T) {
		t.Parallel()
		s := session.State{
			Mode:      tempo.ModeFlow,
			Status:    tempo.StatusRunning,
			OnBreak:   true,
			Direction: clock.CountDown,
			Remaining: 540,
			Duration:  600,
			Progress:  0.1,
		}
		out := renderState(s, cfg, false)
		assert.Contains(t, out, "on break")
		assert.Contains(t, out, "recommended rest")
		assert.Contains(t, out, "9:00")
		assert.NotContains(t, out, "warming up")
	})

	t.Run("flow with summary", func(t *testing.T) {
		t.Parallel()
		rec := flowRecord()
		s := session.State{
			Mode:         tempo.ModeFlow,
			Direction:    clock.CountUp,
			FlowState:    tempo.FlowZone,
			Distractions: 1,
			LastSession:  &rec,
		}
		out := renderState(s, cfg, true)
		assert.Contains(t, out, "in the zone")
		assert.Contains(t, out, "distractions 1")
		assert.Contains(t, out, "rest 10 min")

		hidden := renderState(s, cfg, false)
		assert.NotContains(t, hidden, "rest 10 min")
	})
}
