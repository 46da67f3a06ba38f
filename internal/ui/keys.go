package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings the model intercepts before the text input
// sees a key. Everything else edits the prompt.
type keyMap struct {
	Quit       key.Binding
	CycleTheme key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Submit    key.Binding
	Cancel    key.Binding
	Backspace key.Binding
	DelWord   key.Binding
	DelLine   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "request / run"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to queue"),
		),
		Backspace: key.NewBinding(key.WithKeys("backspace")),
		DelWord:   key.NewBinding(key.WithKeys("ctrl+w")),
		DelLine:   key.NewBinding(key.WithKeys("ctrl+u")),
	}
}

// hints is the short help shown in an empty prompt.
func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.CycleTheme, k.Quit}
}
