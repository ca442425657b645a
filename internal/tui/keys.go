package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Reset     key.Binding
	Dismiss   key.Binding
	ColorMode key.Binding
	Open      key.Binding
	Sidebar   key.Binding
	Legend    key.Binding
	Help      key.Binding
	Quit      key.Binding

	// country page
	Refresh key.Binding
	Back    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓←→", "pan")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Left:      key.NewBinding(key.WithKeys("left", "h")),
		Right:     key.NewBinding(key.WithKeys("right", "l")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		ColorMode: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "colours")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Sidebar:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "countries")),
		Legend:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "legend")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh news")),
		Back:      key.NewBinding(key.WithKeys("b", "esc", "backspace"), key.WithHelp("b", "back")),
	}
}

// mapKeys is the help.KeyMap of the map screen.
type mapKeys struct{ k keyMap }

func (h mapKeys) ShortHelp() []key.Binding {
	k := h.k
	return []key.Binding{k.Up, k.ZoomIn, k.Reset, k.ColorMode, k.Open, k.Sidebar, k.Legend, k.Help, k.Quit}
}

func (h mapKeys) FullHelp() [][]key.Binding {
	k := h.k
	return [][]key.Binding{
		{k.Up, k.ZoomIn, k.Reset, k.Dismiss},
		{k.ColorMode, k.Open, k.Sidebar, k.Legend},
		{k.Help, k.Quit},
	}
}

// pageKeys is the help.KeyMap of a country page.
type pageKeys struct{ k keyMap }

func (h pageKeys) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Refresh, h.k.Back, h.k.Help, h.k.Quit}
}

func (h pageKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
