package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the bindings shown in help.
type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Favorite key.Binding
	Remove   key.Binding
	Tab      key.Binding
	Font     key.Binding
	Size     key.Binding
	Dismiss  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("j", "down", " ", "pgdown"),
			key.WithHelp("↓/j", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("k", "up", "pgup"),
			key.WithHelp("↑/k", "previous"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f", "enter"),
			key.WithHelp("f", "save"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete", "backspace"),
			key.WithHelp("x", "remove"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "favorites"),
		),
		Font: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "font"),
		),
		Size: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "size"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
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
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Favorite, k.Tab, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Favorite, k.Remove},
		{k.Tab, k.Font, k.Size},
		{k.Dismiss, k.Help, k.Quit},
	}
}
