package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the dot field in the terminal.
type Theme struct {
	Name      string
	Dot       lipgloss.Color
	Described lipgloss.Color
	Held      lipgloss.Color
	Zone      lipgloss.Color
	Floor     lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
}

var (
	ThemeInk = Theme{
		Name:      "ink",
		Dot:       lipgloss.Color("#e0e0e0"),
		Described: lipgloss.Color("#ffb000"),
		Held:      lipgloss.Color("#00ccff"),
		Zone:      lipgloss.Color("#ff4757"),
		Floor:     lipgloss.Color("#444466"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Dot:       lipgloss.Color("#00ff00"), // Green phosphor
		Described: lipgloss.Color("#88ff88"),
		Held:      lipgloss.Color("#ffff00"),
		Zone:      lipgloss.Color("#ff0000"),
		Floor:     lipgloss.Color("#005500"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Dot:       lipgloss.Color("#ff6b6b"), // Coral
		Described: lipgloss.Color("#feca57"),
		Held:      lipgloss.Color("#ff9ff3"),
		Zone:      lipgloss.Color("#ff4757"),
		Floor:     lipgloss.Color("#8b6b8c"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
	}

	Themes = []Theme{
		ThemeInk,
		ThemeRetroGreen,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
