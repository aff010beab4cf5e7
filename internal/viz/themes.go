package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Water   lipgloss.Color
	Snow    lipgloss.Color
	Soil    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeForest = Theme{
		Name:    "forest",
		Primary: lipgloss.Color("#7fd67f"),
		Water:   lipgloss.Color("#3fa9f5"),
		Snow:    lipgloss.Color("#f0f8ff"),
		Soil:    lipgloss.Color("#a0784a"),
		Muted:   lipgloss.Color("#667766"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeTundra = Theme{
		Name:    "tundra",
		Primary: lipgloss.Color("#a8d8ff"),
		Water:   lipgloss.Color("#0077be"),
		Snow:    lipgloss.Color("#ffffff"),
		Soil:    lipgloss.Color("#8b7d6b"),
		Muted:   lipgloss.Color("#4488aa"),
		Success: lipgloss.Color("#88ffcc"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Water:   lipgloss.Color("#cccccc"),
		Snow:    lipgloss.Color("#ffffff"),
		Soil:    lipgloss.Color("#888888"),
		Muted:   lipgloss.Color("#666666"),
		Success: lipgloss.Color("#ffffff"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeForest, ThemeTundra, ThemeMinimal}
)

// GetTheme returns the named theme, or the forest theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeForest
}

func nextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeForest
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
