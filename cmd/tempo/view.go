package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/clock"
	"github.com/benjamonnguyen/tempo/modes"
	"github.com/benjamonnguyen/tempo/session"
)

const (
	timerBarFilledChar = "⣶"
	timerBarEmptyChar  = "⡀"
	timerBarLength     = 20
)

// timerBar fills with the remaining share of a countdown and with the
// minute hand of a count-up run.
func timerBar(s session.State) string {
	share := s.Progress
	if s.Direction == clock.CountDown {
		if s.Remaining <= 0 {
			return strings.Repeat(timerBarEmptyChar, timerBarLength)
		}
		share = 1 - s.Progress
	}
	filled := min(int(math.Round(share*timerBarLength*10)/10), timerBarLength)
	filled = max(filled, 0)
	return strings.Repeat(timerBarFilledChar, filled) + strings.Repeat(timerBarEmptyChar, timerBarLength-filled)
}

// clockText shows elapsed time for count-up runs and remaining time otherwise.
func clockText(s session.State) string {
	if s.Unresolved {
		return "--:--"
	}
	if s.Direction == clock.CountUp {
		return modes.FormatClock(s.Elapsed)
	}
	return modes.FormatClock(s.Remaining)
}

func statusText(s session.State) string {
	if s.OnBreak {
		switch s.Status {
		case tempo.StatusPaused:
			return "break paused"
		case tempo.StatusCompleted:
			return "break over"
		default:
			return "on break"
		}
	}
	switch s.Status {
	case tempo.StatusIdle:
		return "ready"
	case tempo.StatusRunning:
		return "running"
	case tempo.StatusPaused:
		return "paused"
	case tempo.StatusCompleted:
		return "complete"
	}
	return s.Status.String()
}

func flowTierText(fs tempo.FlowState) string {
	switch fs {
	case tempo.FlowZone:
		return "in the zone"
	case tempo.FlowUltradianLimit:
		return "ultradian limit, take a break"
	default:
		return "warming up"
	}
}

func detailLines(s session.State, cfg modes.Settings) []string {
	var lines []string
	switch s.Mode {
	case tempo.ModeMeditation:
		if cfg.Meditation.Infinite {
			lines = append(lines, "infinite")
		}
		if len(cfg.Meditation.Intervals) > 0 {
			var marks []string
			for _, o := range cfg.Meditation.Intervals {
				marks = append(marks, modes.FormatClock(o))
			}
			lines = append(lines, "bells at "+strings.Join(marks, ", "))
		}
	case tempo.ModePomodoro:
		if s.Unresolved {
			lines = append(lines, "no sequence selected")
			break
		}
		lines = append(lines, fmt.Sprintf("%s · step %d/%d · %s", s.SequenceName, s.StepIndex+1, s.Steps, s.StepType))
		if seq, ok := cfg.ActiveSequence(); ok && s.Status == tempo.StatusIdle {
			lines = append(lines, "steps "+modes.FormatSteps(seq.Steps))
		}
	case tempo.ModeFlow:
		if s.OnBreak {
			lines = append(lines, "recommended rest")
			break
		}
		lines = append(lines, flowTierText(s.FlowState))
		lines = append(lines, fmt.Sprintf("distractions %d", s.Distractions))
	}
	return lines
}

func summaryText(rec tempo.ExistingSessionRecord) string {
	parts := []string{
		fmt.Sprintf("%s session", rec.Mode),
		modes.FormatClock(rec.DurationSeconds),
	}
	if rec.Mode == tempo.ModeFlow {
		parts = append(parts,
			fmt.Sprintf("%d distractions", rec.Distractions),
			fmt.Sprintf("rest %d min", rec.BreakRecommendationMinutes),
		)
	}
	if rec.Rating > 0 {
		parts = append(parts, stars(rec.Rating))
	} else {
		parts = append(parts, "rate 1-5")
	}
	return strings.Join(parts, " · ")
}

func stars(rating int) string {
	rating = min(max(rating, 0), 5)
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func renderState(s session.State, cfg modes.Settings, showSummary bool) string {
	title := TitleStyle.
		Background(modeColors[s.Mode]).
		Foreground(lipgloss.Color("0")).
		Render(s.Mode.String())
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", StatusStyle.Render(statusText(s)))

	rows := []string{
		header,
		ClockStyle.Render(clockText(s)),
		BarStyle.Render(timerBar(s)),
	}
	for _, l := range detailLines(s, cfg) {
		rows = append(rows, DetailStyle.Render(l))
	}
	if showSummary && s.LastSession != nil {
		rows = append(rows, SummaryStyle.Render(summaryText(*s.LastSession)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
