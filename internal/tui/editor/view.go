package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/samsaffron/term-md/internal/assistant"
	"github.com/samsaffron/term-md/internal/ui"
)

// View renders the UI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	panel := m.renderAssistantPanel()
	panelHeight := 0
	if panel != "" {
		panelHeight = lipgloss.Height(panel)
	}
	m.layout(panelHeight)

	left, right := m.paneWidths()
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, m.renderSource(left), m.renderPreview(right)),
	}
	if panel != "" {
		parts = append(parts, panel)
	}
	parts = append(parts, m.renderStatusBar())
	view := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.overlay != nil {
		view = m.overlayBox(view, m.styles.Overlay.Render(m.overlay.view(m)))
	}
	return view
}

func (m *Model) paneStyle(p pane) lipgloss.Style {
	if m.focus == p {
		return m.styles.FocusedPane
	}
	return m.styles.BlurredPane
}

func (m *Model) renderSource(width int) string {
	doc := m.store.Snapshot()
	inner := max(width-4, 1)

	name := doc.FileName
	suffix := ""
	if doc.HasUnsavedChanges {
		suffix = " " + ui.DirtyIcon
	}
	title := m.styles.PaneTitle.Render(runewidth.Truncate(name, max(inner-runewidth.StringWidth(suffix), 1), "…"))
	if suffix != "" {
		title += m.styles.Unsaved.Render(suffix)
	}

	return m.paneStyle(paneSource).Width(width - 2).Render(title + "\n" + m.editor.View())
}

func (m *Model) renderPreview(width int) string {
	inner := max(width-4, 1)

	label := "Preview"
	if m.stats.Words > 0 {
		label += fmt.Sprintf(" · %d words", m.stats.Words)
	}
	if m.stats.Headings > 0 {
		label += fmt.Sprintf(" · %d headings", m.stats.Headings)
	}
	title := m.styles.PaneTitle.Render(runewidth.Truncate(label, inner, "…"))

	return m.paneStyle(panePreview).Width(width - 2).Render(title + "\n" + m.viewport.View())
}

// renderAssistantPanel shows the in-flight request, its failure or the
// staged suggestion. It is empty while idle.
func (m *Model) renderAssistantPanel() string {
	state := m.assist.State()
	width := max(m.width-2, 10)

	var b strings.Builder
	switch state.Phase {
	case assistant.PhaseIdle:
		return ""

	case assistant.PhaseLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.styles.PanelTitle.Render(state.Kind.Label() + "…"))
		b.WriteString("  ")
		b.WriteString(m.styles.KeyHint.Render("esc cancel"))

	case assistant.PhaseFailed:
		b.WriteString(m.styles.Error.Render(ui.FailIcon + " " + state.Kind.Label() + " failed"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(state.Message, width))
		b.WriteString("\n")
		b.WriteString(m.styles.KeyHint.Render("esc dismiss"))

	case assistant.PhaseSucceeded:
		b.WriteString(m.styles.PanelTitle.Render("Suggestion · " + state.Kind.Label()))
		if state.Usage != nil {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %d tokens", state.Usage.TotalTokens)))
		}
		b.WriteString("\n")
		b.WriteString(clampLines(wordwrap.String(state.Result, width), max(m.height/3, 3)))
		b.WriteString("\n")
		b.WriteString(m.styles.KeyHint.Render("alt+y accept · alt+p copy · esc dismiss"))
	}

	return m.styles.Panel.Width(m.width).Render(b.String())
}

// clampLines keeps the first n lines of s and notes how many were dropped.
func clampLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	more := len(lines) - n + 1
	return strings.Join(lines[:n-1], "\n") + fmt.Sprintf("\n… %d more lines", more)
}

func (m *Model) renderStatusBar() string {
	doc := m.store.Snapshot()

	var left string
	if doc.HasUnsavedChanges {
		left = m.styles.Unsaved.Render(doc.FileName + " has unsaved changes")
	} else {
		left = m.styles.Muted.Render(doc.FileName)
	}
	if m.status != "" {
		style := m.styles.Success
		if m.statusErr {
			style = m.styles.Error
		}
		left += "  " + style.Render(m.status)
	}

	right := m.renderAssistantStatus() + m.styles.KeyHint.Render(" · f1 help")

	// StatusBar padding takes two columns
	width := max(m.width-2, 1)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	line := left + strings.Repeat(" ", max(gap, 1)) + right
	if lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	return m.styles.StatusBar.Render(line)
}

func (m *Model) renderAssistantStatus() string {
	switch {
	case m.assist.Busy():
		return m.styles.Muted.Render("assistant busy")
	case m.creds.Present():
		return m.styles.Success.Render(ui.SuccessIcon + " " + m.creds.Provider())
	default:
		return m.styles.Muted.Render("AI off · ctrl+k add key")
	}
}
