package main

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Toggle       key.Binding
	Stop         key.Binding
	Reset        key.Binding
	Distraction  key.Binding
	NextMode     key.Binding
	NextSequence key.Binding
	Infinite     key.Binding
	Longer       key.Binding
	Shorter      key.Binding
	EnterTime    key.Binding
	ToggleBell   key.Binding
	StartBreak   key.Binding
	Cancel       key.Binding
	Acknowledge  key.Binding
	Rate         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

var Keys = KeyMap{
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "start/pause"),
	),
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Distraction: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "distraction"),
	),
	NextMode: key.NewBinding(
		key.WithKeys("m", "tab"),
		key.WithHelp("m", "next mode"),
	),
	NextSequence: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next sequence"),
	),
	Infinite: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "infinite"),
	),
	Longer: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "+1 min"),
	),
	Shorter: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "-1 min"),
	),
	EnterTime: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "set duration"),
	),
	ToggleBell: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "toggle bell"),
	),
	StartBreak: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "start break"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Acknowledge: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "dismiss"),
	),
	Rate: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5"),
		key.WithHelp("1-5", "rate"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Stop, k.NextMode, k.StartBreak, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Stop, k.Reset, k.Distraction},
		{k.NextMode, k.NextSequence, k.Infinite, k.Longer, k.Shorter},
		{k.EnterTime, k.ToggleBell, k.StartBreak},
		{k.Acknowledge, k.Rate, k.Help, k.Quit},
	}
}
