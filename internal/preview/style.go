package preview

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"

	"github.com/samsaffron/term-md/internal/ui"
)

// Preview styles accepted by editor.preview_style.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleTheme = "theme"
)

// ResolveStyle maps a configured style name to a concrete one. auto asks
// the terminal for its background color.
func ResolveStyle(name string) string {
	switch name {
	case StyleDark, StyleLight, StyleTheme:
		return name
	}
	if termenv.HasDarkBackground() {
		return StyleDark
	}
	return StyleLight
}

// StyleConfig returns the glamour style for a resolved style name.
func StyleConfig(name string, theme *ui.Theme) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	switch name {
	case StyleLight:
		cfg = styles.LightStyleConfig
	case StyleTheme:
		cfg = themeStyle(theme)
	default:
		cfg = styles.DarkStyleConfig
	}
	// the pane border supplies the margin
	margin := uint(0)
	cfg.Document.Margin = &margin
	cfg.Document.BlockPrefix = ""
	cfg.Document.BlockSuffix = ""
	return cfg
}

// themeStyle builds a glamour style from the editor theme colors.
func themeStyle(theme *ui.Theme) ansi.StyleConfig {
	if theme == nil {
		theme = ui.DefaultTheme()
	}
	primary := string(theme.Primary)
	secondary := string(theme.Secondary)
	success := string(theme.Success)
	warning := string(theme.Warning)
	muted := string(theme.Muted)
	text := string(theme.Text)

	heading := func(prefix string) ansi.StyleBlock {
		return ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: prefix}}
	}

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &text},
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &warning, Italic: boolPtr(true)},
			Indent:         uintPtr(1),
			IndentToken:    stringPtr("│ "),
		},
		List: ansi.StyleList{
			LevelIndent: 2,
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: &text},
			},
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       &secondary,
				Bold:        boolPtr(true),
			},
		},
		H1:            heading("# "),
		H2:            heading("## "),
		H3:            heading("### "),
		H4:            heading("#### "),
		H5:            heading("##### "),
		H6:            heading("###### "),
		Strikethrough: ansi.StylePrimitive{CrossedOut: boolPtr(true)},
		Emph:          ansi.StylePrimitive{Color: &warning, Italic: boolPtr(true)},
		Strong:        ansi.StylePrimitive{Color: &primary, Bold: boolPtr(true)},
		HorizontalRule: ansi.StylePrimitive{
			Color:  &muted,
			Format: "\n--------\n",
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". ", Color: &secondary},
		Task: ansi.StyleTask{
			Ticked:   "[✓] ",
			Unticked: "[ ] ",
		},
		Link:      ansi.StylePrimitive{Color: &secondary, Underline: boolPtr(true)},
		LinkText:  ansi.StylePrimitive{Color: &primary},
		Image:     ansi.StylePrimitive{Color: &secondary, Underline: boolPtr(true)},
		ImageText: ansi.StylePrimitive{Color: &muted, Format: "Image: {{.text}} →"},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &primary},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: &text},
				Margin:         uintPtr(2),
			},
			Chroma: &ansi.Chroma{
				Text:            ansi.StylePrimitive{Color: &text},
				Comment:         ansi.StylePrimitive{Color: &muted},
				Keyword:         ansi.StylePrimitive{Color: &primary},
				KeywordType:     ansi.StylePrimitive{Color: &secondary},
				NameFunction:    ansi.StylePrimitive{Color: &success},
				NameBuiltin:     ansi.StylePrimitive{Color: &secondary},
				LiteralNumber:   ansi.StylePrimitive{Color: &secondary},
				LiteralString:   ansi.StylePrimitive{Color: &warning},
				GenericDeleted:  ansi.StylePrimitive{Color: &muted},
				GenericInserted: ansi.StylePrimitive{Color: &success},
			},
		},
		Table: ansi.StyleTable{
			CenterSeparator: stringPtr("┼"),
			ColumnSeparator: stringPtr("│"),
			RowSeparator:    stringPtr("─"),
		},
		DefinitionDescription: ansi.StylePrimitive{BlockPrefix: "\n→ "},
	}
}

func boolPtr(b bool) *bool       { return &b }
func uintPtr(u uint) *uint       { return &u }
func stringPtr(s string) *string { return &s }
