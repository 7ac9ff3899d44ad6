// Package ui provides the visual styling for the multichat terminal client.
// Colors follow the Material indigo palette with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f5f6fa")
	LightForeground = lipgloss.Color("#222222")
	LightPrimary    = lipgloss.Color("#3f51b5") // Indigo 500
	LightAccent     = lipgloss.Color("#5c6bc0") // Indigo 400
	LightUserBubble = lipgloss.Color("#e3e7f1")
	LightBotBubble  = lipgloss.Color("#ffffff")
	LightMuted      = lipgloss.Color("#8a8fa3")
	LightBorder     = lipgloss.Color("#dce0e5")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#141824")
	DarkForeground = lipgloss.Color("#eceff4")
	DarkPrimary    = lipgloss.Color("#7986cb") // Indigo 300
	DarkAccent     = lipgloss.Color("#9fa8da") // Indigo 200
	DarkUserBubble = lipgloss.Color("#2a3148")
	DarkBotBubble  = lipgloss.Color("#1c2030")
	DarkMuted      = lipgloss.Color("#6b7289")
	DarkBorder     = lipgloss.Color("#2f3650")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#d32f2f")
	Success     = lipgloss.Color("#43a047")
	Warning     = lipgloss.Color("#ffa000")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	UserBubble lipgloss.Color
	BotBubble  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		UserBubble: LightUserBubble,
		BotBubble:  LightBotBubble,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		UserBubble: DarkUserBubble,
		BotBubble:  DarkBotBubble,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeByName maps the config value to a theme. "auto" and "" detect it.
func ThemeByName(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme auto-detects based on terminal or returns light mode
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; low background indexes are dark.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
		}
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style
	Sidebar lipgloss.Style

	// Text
	Title lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style

	// Sidebar entries
	SessionItem     lipgloss.Style
	SessionSelected lipgloss.Style

	// Messages
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	ImageTag   lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Notice  lipgloss.Style

	// Components
	Spinner     lipgloss.Style
	Divider     lipgloss.Style
	Badge       lipgloss.Style
	Dialog      lipgloss.Style
	MenuItem    lipgloss.Style
	MenuCurrent lipgloss.Style
	Input       lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Sidebar: lipgloss.NewStyle().
			BorderRight(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(1, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		SessionItem: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),

		SessionSelected: lipgloss.NewStyle().
			Background(theme.UserBubble).
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		UserLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		BotLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		UserBubble: lipgloss.NewStyle().
			Background(theme.UserBubble).
			Foreground(theme.Foreground).
			Padding(0, 1),

		BotBubble: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		ImageTag: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Italic(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive),

		Notice: lipgloss.NewStyle().
			Foreground(Warning).
			Italic(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(1, 2),

		MenuItem: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),

		MenuCurrent: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 0 {
		width = 0
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
