package editor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keybindings for the editor
type KeyMap struct {
	// File
	New    key.Binding
	Open   key.Binding
	Save   key.Binding
	SaveAs key.Binding
	Quit   key.Binding

	// Panes
	SwitchPane key.Binding
	Outline    key.Binding
	Help       key.Binding

	// Assistant
	Continue  key.Binding
	Improve   key.Binding
	Summarize key.Binding
	Accept    key.Binding
	Dismiss   key.Binding
	Copy      key.Binding

	// Credentials
	SetKey   key.Binding
	ClearKey key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		New: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new"),
		),
		Open: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		SaveAs: key.NewBinding(
			key.WithKeys("alt+s"),
			key.WithHelp("alt+s", "save as"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("ctrl+q", "quit"),
		),

		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "source/preview"),
		),
		Outline: key.NewBinding(
			key.WithKeys("alt+o"),
			key.WithHelp("alt+o", "outline"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "alt+h"),
			key.WithHelp("f1", "help"),
		),

		Continue: key.NewBinding(
			key.WithKeys("alt+c"),
			key.WithHelp("alt+c", "continue"),
		),
		Improve: key.NewBinding(
			key.WithKeys("alt+i"),
			key.WithHelp("alt+i", "improve"),
		),
		Summarize: key.NewBinding(
			key.WithKeys("alt+u"),
			key.WithHelp("alt+u", "summarize"),
		),
		Accept: key.NewBinding(
			key.WithKeys("alt+y"),
			key.WithHelp("alt+y", "accept"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc", "alt+x"),
			key.WithHelp("esc", "dismiss"),
		),
		Copy: key.NewBinding(
			key.WithKeys("alt+p"),
			key.WithHelp("alt+p", "copy"),
		),

		SetKey: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "set API key"),
		),
		ClearKey: key.NewBinding(
			key.WithKeys("alt+k"),
			key.WithHelp("alt+k", "remove API key"),
		),
	}
}

// helpSections groups bindings for the help overlay.
func (k KeyMap) helpSections() []helpSection {
	return []helpSection{
		{title: "File", keys: []key.Binding{k.New, k.Open, k.Save, k.SaveAs, k.Quit}},
		{title: "View", keys: []key.Binding{k.SwitchPane, k.Outline, k.Help}},
		{title: "Assistant", keys: []key.Binding{k.Continue, k.Improve, k.Summarize, k.Accept, k.Dismiss, k.Copy}},
		{title: "API key", keys: []key.Binding{k.SetKey, k.ClearKey}},
	}
}

type helpSection struct {
	title string
	keys  []key.Binding
}
