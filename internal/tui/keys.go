package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	UpDown  key.Binding
	Select  key.Binding
	Check   key.Binding
	Clear   key.Binding
	Next    key.Binding
	Prev    key.Binding
	Back    key.Binding
	History key.Binding
	Wipe    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		UpDown:  key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "choose")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		Check:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "check")),
		Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Next:    key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next")),
		Prev:    key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		History: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Wipe:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear history")),
	}
}

// selectKeys, gameKeys and historyKeys feed help.Model for each view.

type selectKeys struct{ keyMap }

func (k selectKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.UpDown, k.Select, k.History, k.Quit}
}

func (k selectKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type gameKeys struct{ keyMap }

func (k gameKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Check, k.Clear, k.Prev, k.Next, k.Back, k.Quit}
}

func (k gameKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type historyKeys struct{ keyMap }

func (k historyKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Wipe, k.Back, k.Quit}
}

func (k historyKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
