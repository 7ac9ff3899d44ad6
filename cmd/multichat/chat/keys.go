package chat

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the chat shell bindings.
type keyMap struct {
	Send          key.Binding
	Newline       key.Binding
	Providers     key.Binding
	Settings      key.Binding
	Attach        key.Binding
	ClearImage    key.Binding
	Voice         key.Binding
	NewSession    key.Binding
	PrevSession   key.Binding
	NextSession   key.Binding
	ToggleSidebar key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:       key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline")),
		Providers:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "model")),
		Settings:      key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "api key")),
		Attach:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "image")),
		ClearImage:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "drop image")),
		Voice:         key.NewBinding(key.WithKeys("alt+v"), key.WithHelp("alt+v", "voice")),
		NewSession:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		PrevSession:   key.NewBinding(key.WithKeys("alt+up"), key.WithHelp("alt+↑", "prev chat")),
		NextSession:   key.NewBinding(key.WithKeys("alt+down"), key.WithHelp("alt+↓", "next chat")),
		ToggleSidebar: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "sidebar")),
		Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Providers, k.Settings, k.Attach, k.NewSession, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Newline, k.Attach, k.ClearImage, k.Voice},
		{k.Providers, k.Settings},
		{k.NewSession, k.PrevSession, k.NextSession, k.ToggleSidebar, k.Quit},
	}
}
