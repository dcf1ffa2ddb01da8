package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	pause key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		pause: key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause/resume polling")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.pause, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.pause, k.quit}}
}
