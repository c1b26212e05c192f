package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit   key.Binding
	Record key.Binding
	Save   key.Binding
	Reset  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Record: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record")),
		Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Reset:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "reset")),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Record, k.Save, k.Reset, k.Quit}
}

// helpLine renders the enabled bindings as "key action" pairs.
func (k keyMap) helpLine() string {
	parts := make([]string, 0, 4)
	for _, b := range k.bindings() {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
