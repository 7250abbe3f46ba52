package editor

import (
	"math"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/samsaffron/term-md/internal/scroll"
)

// sourceSurface measures the source pane in logical lines. The textarea has
// no settable offset, so scrolling it moves the cursor to the edge of the
// wanted window.
type sourceSurface struct {
	m *Model
}

func (s sourceSurface) ScrollMetrics() scroll.Metrics {
	return scroll.Metrics{
		Top:    float64(s.m.sourceTop),
		Height: float64(s.m.editor.LineCount()),
		Client: float64(s.m.editor.Height()),
	}
}

func (s sourceSurface) SetScrollTop(top float64) {
	m := s.m
	t := int(math.Round(top))
	switch {
	case t < m.sourceTop:
		m.gotoLine(t)
	case t > m.sourceTop:
		m.gotoLine(t + m.editor.Height() - 1)
	}
	m.sourceTop = min(max(t, 0), max(m.editor.LineCount()-m.editor.Height(), 0))
}

// previewSurface measures the preview viewport in rendered rows.
type previewSurface struct {
	vp *viewport.Model
}

func (p previewSurface) ScrollMetrics() scroll.Metrics {
	return scroll.Metrics{
		Top:    float64(p.vp.YOffset),
		Height: float64(p.vp.TotalLineCount()),
		Client: float64(p.vp.Height),
	}
}

func (p previewSurface) SetScrollTop(top float64) {
	p.vp.SetYOffset(int(math.Round(top)))
}
