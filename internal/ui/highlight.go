package ui

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// Highlighter colors diff lines by the language of the file they came from.
// Callers only highlight when writing to a terminal, so output is always
// true color.
type Highlighter struct {
	lexer    chroma.Lexer
	style    *chroma.Style
	renderer *lipgloss.Renderer
	cache    map[chroma.TokenType]lipgloss.Style
}

// NewHighlighter returns a highlighter for filePath. Unknown extensions fall
// back to markdown.
func NewHighlighter(filePath string) *Highlighter {
	lexer := lexers.Match(filePath)
	if lexer == nil {
		lexer = lexers.Get("markdown")
	}
	if lexer == nil {
		return nil
	}

	style := styles.Get("gruvbox")
	if style == nil {
		style = styles.Fallback
	}
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)
	return &Highlighter{
		lexer:    chroma.Coalesce(lexer),
		style:    style,
		renderer: r,
		cache:    make(map[chroma.TokenType]lipgloss.Style),
	}
}

// HighlightLine colors one line, painting bg (a hex color) under every token
// when it is non-empty.
func (h *Highlighter) HighlightLine(line, bg string) string {
	if h == nil {
		return line
	}
	tokens, err := h.lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var b strings.Builder
	for tok := tokens(); tok != chroma.EOF; tok = tokens() {
		value := strings.TrimRight(tok.Value, "\n")
		if value == "" {
			continue
		}
		st := h.tokenStyle(tok.Type)
		if bg != "" {
			st = st.Background(lipgloss.Color(bg))
		}
		b.WriteString(st.Render(value))
	}
	return b.String()
}

func (h *Highlighter) tokenStyle(t chroma.TokenType) lipgloss.Style {
	if st, ok := h.cache[t]; ok {
		return st
	}
	entry := h.style.Get(t)
	st := h.renderer.NewStyle().
		Bold(entry.Bold == chroma.Yes).
		Italic(entry.Italic == chroma.Yes).
		Underline(entry.Underline == chroma.Yes)
	if entry.Colour.IsSet() {
		st = st.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	h.cache[t] = st
	return st
}

// StripANSI removes ANSI escape codes.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// ANSILen is the display width of s ignoring escape codes.
func ANSILen(s string) int {
	return ansi.StringWidth(s)
}
