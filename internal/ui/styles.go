package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the editor
type Theme struct {
	Primary   lipgloss.Color // focused borders, key hints
	Secondary lipgloss.Color // headings, inactive borders

	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color // unsaved indicator
	Muted   lipgloss.Color
	Text    lipgloss.Color

	Spinner lipgloss.Color
	Border  lipgloss.Color

	DiffAddBg    lipgloss.Color
	DiffRemoveBg lipgloss.Color

	PanelBg lipgloss.Color // assistant suggestion panel
}

// DefaultTheme returns the default color theme (gruvbox)
func DefaultTheme() *Theme {
	return ThemeFromConfig(PresetThemes["gruvbox"].Config)
}

// ThemeConfig holds color overrides from the config file
type ThemeConfig struct {
	Primary   string `mapstructure:"primary" yaml:"primary,omitempty"`
	Secondary string `mapstructure:"secondary" yaml:"secondary,omitempty"`
	Success   string `mapstructure:"success" yaml:"success,omitempty"`
	Error     string `mapstructure:"error" yaml:"error,omitempty"`
	Warning   string `mapstructure:"warning" yaml:"warning,omitempty"`
	Muted     string `mapstructure:"muted" yaml:"muted,omitempty"`
	Text      string `mapstructure:"text" yaml:"text,omitempty"`
	Spinner   string `mapstructure:"spinner" yaml:"spinner,omitempty"`
	PanelBg   string `mapstructure:"panel_bg" yaml:"panel_bg,omitempty"`
}

// ThemeFromConfig creates a theme from cfg. Empty fields fall back to
// gruvbox.
func ThemeFromConfig(cfg ThemeConfig) *Theme {
	base := PresetThemes["gruvbox"].Config
	pick := func(v, fallback string) lipgloss.Color {
		if v != "" {
			return lipgloss.Color(v)
		}
		return lipgloss.Color(fallback)
	}

	theme := &Theme{
		Primary:      pick(cfg.Primary, base.Primary),
		Secondary:    pick(cfg.Secondary, base.Secondary),
		Success:      pick(cfg.Success, base.Success),
		Error:        pick(cfg.Error, base.Error),
		Warning:      pick(cfg.Warning, base.Warning),
		Muted:        pick(cfg.Muted, base.Muted),
		Text:         pick(cfg.Text, base.Text),
		Spinner:      pick(cfg.Spinner, base.Spinner),
		PanelBg:      pick(cfg.PanelBg, base.PanelBg),
		DiffAddBg:    lipgloss.Color("#1e3c1e"),
		DiffRemoveBg: lipgloss.Color("#3c1e1e"),
	}
	theme.Border = theme.Secondary // border follows secondary
	return theme
}

// ResolveTheme picks a preset by name and applies overrides on top.
func ResolveTheme(name string, overrides ThemeConfig) *Theme {
	cfg := PresetThemes["gruvbox"].Config
	if preset := GetPresetTheme(name); preset != nil {
		cfg = preset.Config
	}
	merge := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	merge(&cfg.Primary, overrides.Primary)
	merge(&cfg.Secondary, overrides.Secondary)
	merge(&cfg.Success, overrides.Success)
	merge(&cfg.Error, overrides.Error)
	merge(&cfg.Warning, overrides.Warning)
	merge(&cfg.Muted, overrides.Muted)
	merge(&cfg.Text, overrides.Text)
	merge(&cfg.Spinner, overrides.Spinner)
	merge(&cfg.PanelBg, overrides.PanelBg)
	return ThemeFromConfig(cfg)
}

// currentTheme is the active theme instance
var currentTheme = DefaultTheme()

// GetTheme returns the current active theme
func GetTheme() *Theme {
	return currentTheme
}

// SetTheme sets the current active theme
func SetTheme(t *Theme) {
	currentTheme = t
}

// Status indicators
const (
	SuccessIcon = "✓"
	FailIcon    = "✗"
	DirtyIcon   = "●"
)

// Styles returns styled text helpers bound to a renderer
type Styles struct {
	renderer *lipgloss.Renderer
	theme    *Theme

	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style

	// Editor chrome
	FocusedPane lipgloss.Style
	BlurredPane lipgloss.Style
	PaneTitle   lipgloss.Style
	StatusBar   lipgloss.Style
	Unsaved     lipgloss.Style
	KeyHint     lipgloss.Style
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	Overlay     lipgloss.Style
	Selected    lipgloss.Style
	Spinner     lipgloss.Style

	// Diff styles
	DiffAdd    lipgloss.Style
	DiffRemove lipgloss.Style
	DiffHeader lipgloss.Style
}

// NewStyles creates a new Styles instance for the given output
func NewStyles(output io.Writer) *Styles {
	return NewStyledWithTheme(output, currentTheme)
}

// NewStyledWithTheme creates styles with a specific theme
func NewStyledWithTheme(output io.Writer, theme *Theme) *Styles {
	r := lipgloss.NewRenderer(output)

	pane := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return &Styles{
		renderer: r,
		theme:    theme,

		Title:   r.NewStyle().Bold(true).Foreground(theme.Text),
		Success: r.NewStyle().Foreground(theme.Success),
		Error:   r.NewStyle().Foreground(theme.Error),
		Muted:   r.NewStyle().Foreground(theme.Muted),
		Bold:    r.NewStyle().Bold(true),

		FocusedPane: pane.BorderForeground(theme.Primary),
		BlurredPane: pane.BorderForeground(theme.Muted),
		PaneTitle:   r.NewStyle().Bold(true).Foreground(theme.Secondary),
		StatusBar:   r.NewStyle().Foreground(theme.Text).Padding(0, 1),
		Unsaved:     r.NewStyle().Foreground(theme.Warning).Bold(true),
		KeyHint:     r.NewStyle().Foreground(theme.Muted),

		Panel: r.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(theme.Border).
			Background(theme.PanelBg).
			Padding(0, 1),
		PanelTitle: r.NewStyle().Bold(true).Foreground(theme.Primary),

		Overlay: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(1, 2),
		Selected: r.NewStyle().Bold(true).Foreground(theme.Primary),
		Spinner:  r.NewStyle().Foreground(theme.Spinner),

		DiffAdd:    r.NewStyle().Foreground(theme.Success),
		DiffRemove: r.NewStyle().Foreground(theme.Error),
		DiffHeader: r.NewStyle().Foreground(theme.Secondary).Bold(true),
	}
}

// DefaultStyles returns styles for stderr
func DefaultStyles() *Styles {
	return NewStyles(os.Stderr)
}

// Theme returns the theme used by these styles
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Renderer returns the lipgloss renderer the styles are bound to.
func (s *Styles) Renderer() *lipgloss.Renderer {
	return s.renderer
}

// FormatResult returns a styled success/fail result
func (s *Styles) FormatResult(success bool, msg string) string {
	if success {
		return s.Success.Render(SuccessIcon+" ") + msg
	}
	return s.Error.Render(FailIcon+" ") + msg
}
