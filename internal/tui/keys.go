package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the browse key bindings.
type KeyMap struct {
	Down      key.Binding
	Up        key.Binding
	First     key.Binding
	Last      key.Binding
	Slideshow key.Binding
	Command   key.Binding
	Help      key.Binding
	Quit      key.Binding
	Yes       key.Binding
	No        key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "next")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "previous")),
		First:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("gg", "first")),
		Last:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Slideshow: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "slideshow")),
		Command:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Yes:       key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "reload")),
		No:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "keep")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Slideshow, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.First, k.Last},
		{k.Slideshow, k.Command, k.Help, k.Quit},
	}
}
