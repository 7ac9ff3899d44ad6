package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "light", "dark" or "auto". Auto (or empty) follows the terminal background.
	Theme string `yaml:"theme"`

	// SidebarOpen controls whether the session sidebar starts visible.
	SidebarOpen bool `yaml:"sidebar_open"`

	// SidebarWidth is the sidebar column width in cells.
	SidebarWidth int `yaml:"sidebar_width"`
}

// ValidThemes lists accepted theme names.
var ValidThemes = []string{"light", "dark", "auto"}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Theme:        "light",
		SidebarOpen:  true,
		SidebarWidth: 24,
	}
}

// IsDark reports whether the dark theme is selected explicitly.
func (c UIConfig) IsDark() bool {
	return c.Theme == "dark"
}
