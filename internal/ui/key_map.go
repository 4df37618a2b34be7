package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	toggle  key.Binding
	all     key.Binding
	clear   key.Binding
	enter   key.Binding
	back    key.Binding
	covers  key.Binding
	rename  key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		all:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "export")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		covers:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "embed covers")),
		rename:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename files")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new selection")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle},
		{k.all, k.clear, k.enter},
		{k.back, k.quit},
	}
}
