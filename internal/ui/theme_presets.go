package ui

import "sort"

// ThemePreset represents a predefined color theme
type ThemePreset struct {
	Name        string
	Description string
	Config      ThemeConfig
}

// PresetThemes contains all predefined themes
var PresetThemes = map[string]ThemePreset{
	"gruvbox": {
		Name:        "gruvbox",
		Description: "Retro groove color scheme (default)",
		Config: ThemeConfig{
			Primary:   "#b8bb26", // green
			Secondary: "#83a598", // aqua
			Success:   "#b8bb26",
			Error:     "#fb4934",
			Warning:   "#fabd2f",
			Muted:     "#928374",
			Text:      "#ebdbb2",
			Spinner:   "#d3869b",
			PanelBg:   "#282828",
		},
	},
	"dracula": {
		Name:        "dracula",
		Description: "Dark theme with purple accents",
		Config: ThemeConfig{
			Primary:   "#bd93f9",
			Secondary: "#8be9fd",
			Success:   "#50fa7b",
			Error:     "#ff5555",
			Warning:   "#f1fa8c",
			Muted:     "#6272a4",
			Text:      "#f8f8f2",
			Spinner:   "#ff79c6",
			PanelBg:   "#282a36",
		},
	},
	"nord": {
		Name:        "nord",
		Description: "Arctic, north-bluish color palette",
		Config: ThemeConfig{
			Primary:   "#88c0d0",
			Secondary: "#81a1c1",
			Success:   "#a3be8c",
			Error:     "#bf616a",
			Warning:   "#ebcb8b",
			Muted:     "#4c566a",
			Text:      "#eceff4",
			Spinner:   "#b48ead",
			PanelBg:   "#2e3440",
		},
	},
	"paper": {
		Name:        "paper",
		Description: "High contrast for light terminals",
		Config: ThemeConfig{
			Primary:   "#005f87",
			Secondary: "#5f5faf",
			Success:   "#008700",
			Error:     "#af0000",
			Warning:   "#af5f00",
			Muted:     "#808080",
			Text:      "#1c1c1c",
			Spinner:   "#af005f",
			PanelBg:   "#eeeeee",
		},
	},
}

// PresetThemeNames returns preset names in sorted order.
func PresetThemeNames() []string {
	names := make([]string, 0, len(PresetThemes))
	for name := range PresetThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPresetTheme returns a preset by name, or nil if not found
func GetPresetTheme(name string) *ThemePreset {
	if preset, ok := PresetThemes[name]; ok {
		return &preset
	}
	return nil
}
