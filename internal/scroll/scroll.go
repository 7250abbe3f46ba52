// Package scroll couples two independently scrollable surfaces by their
// fractional position.
package scroll

// Metrics describes one surface: Top is the offset of the first visible
// row, Height the full content height and Client the visible height, all in
// the surface's own units.
type Metrics struct {
	Top    float64
	Height float64
	Client float64
}

// Surface is a scrollable view.
type Surface interface {
	ScrollMetrics() Metrics
	SetScrollTop(top float64)
}

// Fraction returns how far through its overflow m is, in [0, 1]. A surface
// whose content fits is always at 0.
func Fraction(m Metrics) float64 {
	if m.Height <= m.Client {
		return 0
	}
	f := m.Top / max(m.Height-m.Client, 1)
	return min(max(f, 0), 1)
}

// Target returns the offset that puts m at fraction f.
func Target(f float64, m Metrics) float64 {
	return f * max(m.Height-m.Client, 0)
}

// Sync moves to so that it sits at the same fraction as from.
func Sync(from, to Surface) {
	to.SetScrollTop(Target(Fraction(from.ScrollMetrics()), to.ScrollMetrics()))
}

// Synchronizer keeps the source and preview surfaces aligned. A programmatic
// scroll on one side may echo back as a scroll event; re-applying the
// formula to the same fraction lands on the same offset, so the echo
// converges without being suppressed.
type Synchronizer struct {
	Source  Surface
	Preview Surface
	// Disabled turns coupling off.
	Disabled bool
}

// SourceScrolled aligns the preview to the source.
func (s *Synchronizer) SourceScrolled() {
	if s.Disabled || s.Source == nil || s.Preview == nil {
		return
	}
	Sync(s.Source, s.Preview)
}

// PreviewScrolled aligns the source to the preview.
func (s *Synchronizer) PreviewScrolled() {
	if s.Disabled || s.Source == nil || s.Preview == nil {
		return
	}
	Sync(s.Preview, s.Source)
}
