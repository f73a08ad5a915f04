package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/Dicklesworthstone/procdash/internal/store"
)

type keyMap struct {
	Quit          key.Binding
	Help          key.Binding
	Tab           key.Binding
	Search        key.Binding
	Select        key.Binding
	Refresh       key.Binding
	Pause         key.Binding
	Mute          key.Binding
	Theme         key.Binding
	Export        key.Binding
	Kill          key.Binding
	Raise         key.Binding
	Lower         key.Binding
	Analyze       key.Binding
	AnalyzeSystem key.Binding
	Sort          key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "processes/graphs"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p/space", "pause"),
	),
	Mute: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mute alerts"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export csv"),
	),
	Kill: key.NewBinding(
		key.WithKeys("K", "delete"),
		key.WithHelp("K", "kill"),
	),
	Raise: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "raise priority"),
	),
	Lower: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "lower priority"),
	),
	Analyze: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "analyze process"),
	),
	AnalyzeSystem: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "analyze system"),
	),
	Sort: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
		key.WithHelp("1-7", "sort column"),
	),
}

// sortKeys maps the digit keys to table columns in display order.
var sortKeys = map[string]store.Column{
	"1": store.ColumnPID,
	"2": store.ColumnName,
	"3": store.ColumnCPU,
	"4": store.ColumnMemory,
	"5": store.ColumnUser,
	"6": store.ColumnThreads,
	"7": store.ColumnStartTime,
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Select, k.Kill, k.Analyze, k.Pause, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Search, k.Select, k.Sort, k.Refresh},
		{k.Kill, k.Raise, k.Lower, k.Analyze, k.AnalyzeSystem},
		{k.Pause, k.Mute, k.Theme, k.Export},
		{k.Help, k.Quit},
	}
}
