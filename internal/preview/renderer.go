// Package preview renders markdown for the preview pane and extracts
// document structure.
package preview

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/samsaffron/term-md/internal/ui"
)

type cacheKey struct {
	width int
	style string
}

// Renderer renders markdown with glamour. Creating a glamour renderer is
// expensive, so one is kept per width and style.
type Renderer struct {
	style string
	theme *ui.Theme
	cache sync.Map // cacheKey -> *glamour.TermRenderer
}

// NewRenderer returns a renderer for the configured style name.
func NewRenderer(style string, theme *ui.Theme) *Renderer {
	return &Renderer{style: ResolveStyle(style), theme: theme}
}

// Style returns the resolved style name.
func (r *Renderer) Style() string {
	return r.style
}

func (r *Renderer) get(width int) (*glamour.TermRenderer, error) {
	key := cacheKey{width: width, style: r.style}
	if cached, ok := r.cache.Load(key); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStyles(StyleConfig(r.style, r.theme)),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, err
	}
	// if another goroutine stored first, ours is discarded
	actual, _ := r.cache.LoadOrStore(key, tr)
	return actual.(*glamour.TermRenderer), nil
}

// Render renders content wrapped at width.
func (r *Renderer) Render(content string, width int) (string, error) {
	if width < 10 {
		width = 10
	}
	tr, err := r.get(width)
	if err != nil {
		return "", err
	}
	out, err := tr.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// RenderOrRaw renders content, returning it unchanged on error.
func (r *Renderer) RenderOrRaw(content string, width int) string {
	if content == "" {
		return ""
	}
	out, err := r.Render(content, width)
	if err != nil {
		return content
	}
	return out
}
