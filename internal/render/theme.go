package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the color scheme of the terminal chat view
type Theme struct {
	Name        string
	Description string

	Border lipgloss.Color

	Primary   lipgloss.Color // bot label and bubble
	Secondary lipgloss.Color // user label and bubble
	Accent    lipgloss.Color // spinner and highlights
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var themes = map[string]Theme{
	"tokyonight": {
		Name:        "tokyonight",
		Description: "Tokyo Night - dark with blue accents",
		Border:      lipgloss.Color("#414868"),
		Primary:     lipgloss.Color("#7aa2f7"),
		Secondary:   lipgloss.Color("#9ece6a"),
		Accent:      lipgloss.Color("#bb9af7"),
		Error:       lipgloss.Color("#f7768e"),
		Text:        lipgloss.Color("#c0caf5"),
		TextDim:     lipgloss.Color("#565f89"),
		TextMute:    lipgloss.Color("#3b4261"),
	},
	"slate": {
		Name:        "slate",
		Description: "Slate - blue user bubbles on slate gray",
		Border:      lipgloss.Color("#334155"),
		Primary:     lipgloss.Color("#cbd5e1"),
		Secondary:   lipgloss.Color("#2563eb"),
		Accent:      lipgloss.Color("#3b82f6"),
		Error:       lipgloss.Color("#f87171"),
		Text:        lipgloss.Color("#f1f5f9"),
		TextDim:     lipgloss.Color("#94a3b8"),
		TextMute:    lipgloss.Color("#475569"),
	},
	"catppuccin": {
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - warm pastels",
		Border:      lipgloss.Color("#45475a"),
		Primary:     lipgloss.Color("#89b4fa"),
		Secondary:   lipgloss.Color("#a6e3a1"),
		Accent:      lipgloss.Color("#cba6f7"),
		Error:       lipgloss.Color("#f38ba8"),
		Text:        lipgloss.Color("#cdd6f4"),
		TextDim:     lipgloss.Color("#6c7086"),
		TextMute:    lipgloss.Color("#45475a"),
	},
	"nord": {
		Name:        "nord",
		Description: "Nord - arctic cool tones",
		Border:      lipgloss.Color("#4c566a"),
		Primary:     lipgloss.Color("#88c0d0"),
		Secondary:   lipgloss.Color("#a3be8c"),
		Accent:      lipgloss.Color("#b48ead"),
		Error:       lipgloss.Color("#bf616a"),
		Text:        lipgloss.Color("#eceff4"),
		TextDim:     lipgloss.Color("#7b88a1"),
		TextMute:    lipgloss.Color("#4c566a"),
	},
}

// DefaultThemeName is used when the configured theme is unknown
const DefaultThemeName = "tokyonight"

// LookupTheme returns the named theme, or the default theme and false.
func LookupTheme(name string) (Theme, bool) {
	if t, ok := themes[name]; ok {
		return t, true
	}
	return themes[DefaultThemeName], false
}

// ThemeNames returns the available theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
