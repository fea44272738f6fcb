package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/benjamonnguyen/tempo"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	ClockStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(1, 0)

	BarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("109"))

	DetailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	SummaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			MarginTop(1)

	FeedbackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			MarginTop(1)

	AppStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// modeColors match the discord embed palette.
var modeColors = map[tempo.Mode]lipgloss.Color{
	tempo.ModeMeditation: lipgloss.Color("#9b59b6"),
	tempo.ModePomodoro:   lipgloss.Color("#57f287"),
	tempo.ModeFlow:       lipgloss.Color("#3498db"),
	tempo.ModeStopwatch:  lipgloss.Color("#f1c40f"),
}
