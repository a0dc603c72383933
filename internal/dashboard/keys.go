package dashboard

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/timvw/agent-studio/internal/tabs"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevKind key.Binding
	NextKind key.Binding
	Search   key.Binding
	Open     key.Binding
	Back     key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevKind: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev category")),
		NextKind: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next category")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// contextHelp shows the bindings of the focused panel.
type contextHelp struct {
	keys  keyMap
	tabs  tabs.KeyMap
	focus focus
}

func (h contextHelp) ShortHelp() []key.Binding {
	k := h.keys
	switch h.focus {
	case focusDetail:
		return append(h.tabs.ShortHelp(), k.Back, k.Help, k.Quit)
	case focusSearch:
		return []key.Binding{k.Open, k.Back}
	}
	return []key.Binding{k.Up, k.Down, k.NextKind, k.Open, k.Search, k.Help, k.Quit}
}

func (h contextHelp) FullHelp() [][]key.Binding {
	k := h.keys
	return append([][]key.Binding{
		{k.Up, k.Down, k.PrevKind, k.NextKind},
		{k.Search, k.Open, k.Back},
		{k.Reload, k.Help, k.Quit},
	}, h.tabs.FullHelp()...)
}
