package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"brvm/internal/dashboard"
)

type keyMap struct {
	Quit       key.Binding
	Search     key.Binding
	Clear      key.Binding
	Up         key.Binding
	Down       key.Binding
	Sort       key.Binding
	Details    key.Binding
	Watch      key.Binding
	Unwatch    key.Binding
	Refresh    key.Binding
	ToggleAuto key.Binding
	Export     key.Binding
	Print      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Sort:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "sort")),
		Details:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Watch:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watch")),
		Unwatch:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "unwatch")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		ToggleAuto: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "csv")),
		Print:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "print")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Sort, k.Details, k.Watch, k.Refresh, k.ToggleAuto, k.Export, k.Print, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Clear, k.Up, k.Down, k.Sort},
		{k.Details, k.Watch, k.Unwatch},
		{k.Refresh, k.ToggleAuto, k.Export, k.Print, k.Quit},
	}
}

var keys = defaultKeyMap()

// keyAction binds a key to its handler.
type keyAction struct {
	binding key.Binding
	run     func(m *Model, msg tea.KeyMsg) tea.Cmd
}

// dispatch is consulted in order for every key press outside the search box.
var dispatch = []keyAction{
	{keys.Quit, (*Model).quit},
	{keys.Search, (*Model).focusSearch},
	{keys.Clear, (*Model).clearSearch},
	{keys.Up, (*Model).moveUp},
	{keys.Down, (*Model).moveDown},
	{keys.Sort, (*Model).sortByKey},
	{keys.Details, (*Model).activateRow},
	{keys.Watch, (*Model).watchSelected},
	{keys.Unwatch, (*Model).unwatchSelected},
	{keys.Refresh, (*Model).forceRefresh},
	{keys.ToggleAuto, (*Model).toggleAutoRefresh},
	{keys.Export, (*Model).exportCSV},
	{keys.Print, (*Model).printTable},
}

// rowActions handles the per-row actions the renderer attaches to each row.
var rowActions = map[dashboard.Action]func(m *Model, symbol string) tea.Cmd{
	dashboard.ActionDetails: (*Model).showDetail,
	dashboard.ActionWatch:   (*Model).addToWatchlist,
}
