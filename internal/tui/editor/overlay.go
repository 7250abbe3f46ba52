package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/samsaffron/term-md/internal/files"
	"github.com/samsaffron/term-md/internal/llm"
	"github.com/samsaffron/term-md/internal/preview"
)

// overlay is a modal box that consumes all key input while open.
type overlay interface {
	update(m *Model, msg tea.KeyMsg) tea.Cmd
	view(m *Model) string
}

// --- confirm ---------------------------------------------------------

type confirmOverlay struct {
	title string
	body  string
	yes   func() tea.Cmd
}

func (o *confirmOverlay) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		m.overlay = nil
		return o.yes()
	case "n", "N", "esc", "ctrl+c", "q":
		m.overlay = nil
	}
	return nil
}

func (o *confirmOverlay) view(m *Model) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(o.title))
	if o.body != "" {
		b.WriteString("\n\n")
		b.WriteString(o.body)
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.KeyHint.Render("y confirm · n cancel"))
	return b.String()
}

// --- help ------------------------------------------------------------

type helpOverlay struct{}

func (o *helpOverlay) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	// Any key closes help.
	m.overlay = nil
	return nil
}

func (o *helpOverlay) view(m *Model) string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.Theme().Primary)

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Keyboard Shortcuts"))
	for _, section := range m.keys.helpSections() {
		b.WriteString("\n\n")
		b.WriteString(m.styles.PaneTitle.Render(section.title))
		for _, k := range section.keys {
			h := k.Help()
			b.WriteString("\n  ")
			b.WriteString(keyStyle.Render(fmt.Sprintf("%-10s", h.Key)))
			b.WriteString(m.styles.Muted.Render(h.Desc))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.KeyHint.Render("Press any key to close"))
	return b.String()
}

// --- outline ---------------------------------------------------------

type outlineOverlay struct {
	headings []preview.Heading
	cursor   int
}

func newOutlineOverlay(content string) *outlineOverlay {
	return &outlineOverlay{headings: preview.Outline(content)}
}

func (o *outlineOverlay) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k", "ctrl+p":
		if o.cursor > 0 {
			o.cursor--
		}
	case "down", "j", "ctrl+n":
		if o.cursor < len(o.headings)-1 {
			o.cursor++
		}
	case "enter":
		m.overlay = nil
		if len(o.headings) == 0 {
			return nil
		}
		m.setFocus(paneSource)
		m.gotoLine(o.headings[o.cursor].Line)
		m.sync.SourceScrolled()
	case "esc", "ctrl+c", "q":
		m.overlay = nil
	}
	return nil
}

func (o *outlineOverlay) view(m *Model) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Outline"))
	b.WriteString("\n\n")
	if len(o.headings) == 0 {
		b.WriteString(m.styles.Muted.Render("No headings"))
	}
	start, end := visibleWindow(o.cursor, len(o.headings), 15)
	for i := start; i < end; i++ {
		h := o.headings[i]
		line := strings.Repeat("  ", h.Level-1) + h.Text
		if i == o.cursor {
			b.WriteString(m.styles.Selected.Render("❯ " + line))
		} else {
			b.WriteString("  " + line)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.KeyHint.Render("j/k navigate · enter jump · esc close"))
	return b.String()
}

// --- API key ---------------------------------------------------------

type keyOverlay struct {
	provider string
	input    textinput.Model
}

func newKeyOverlay(provider string, width int) *keyOverlay {
	in := textinput.New()
	in.Placeholder = "paste API key"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Width = min(max(width-20, 20), 60)
	in.Focus()
	return &keyOverlay{provider: provider, input: in}
}

func (o *keyOverlay) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		value := o.input.Value()
		m.overlay = nil
		return m.keyCmd("set", func(ctx context.Context) error {
			return m.creds.Set(ctx, value)
		})
	case "esc", "ctrl+c":
		m.overlay = nil
		return nil
	}
	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return cmd
}

func (o *keyOverlay) view(m *Model) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(llm.ProviderLabel(o.provider) + " API key"))
	b.WriteString("\n\n")
	if m.creds.Present() {
		if m.creds.FromFallback() {
			b.WriteString(m.styles.Muted.Render("Using key from config or " + llm.EnvVar(o.provider)))
		} else {
			b.WriteString(m.styles.Success.Render("AI features enabled"))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(o.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.KeyHint.Render("enter save · esc cancel"))
	return b.String()
}

// --- file picker -----------------------------------------------------

type pickerOverlay struct {
	req     pickRequestMsg
	input   textinput.Model
	matches []string
	cursor  int
}

func newPickerOverlay(req pickRequestMsg, width int) *pickerOverlay {
	in := textinput.New()
	in.Width = min(max(width-20, 20), 60)
	in.Prompt = "> "
	if req.mode == pickSave {
		in.Placeholder = "file name"
		in.SetValue(req.defaultName)
		in.CursorEnd()
	} else {
		in.Placeholder = "filter or type a path"
	}
	in.Focus()
	return &pickerOverlay{req: req, input: in, matches: req.paths}
}

func (o *pickerOverlay) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		o.finish(m, pickResult{})
		return nil
	case "enter":
		o.finish(m, o.choose())
		return nil
	case "up", "ctrl+p":
		if o.cursor > 0 {
			o.cursor--
		}
		return nil
	case "down", "ctrl+n":
		if o.cursor < len(o.matches)-1 {
			o.cursor++
		}
		return nil
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	if o.req.mode == pickOpen {
		o.matches = files.Filter(o.input.Value(), o.req.paths)
		o.cursor = 0
	}
	return cmd
}

func (o *pickerOverlay) choose() pickResult {
	typed := strings.TrimSpace(o.input.Value())
	if o.req.mode == pickOpen && len(o.matches) > 0 {
		return pickResult{path: o.matches[o.cursor], ok: true}
	}
	if typed == "" {
		return pickResult{}
	}
	return pickResult{path: typed, ok: true}
}

func (o *pickerOverlay) finish(m *Model, r pickResult) {
	m.overlay = nil
	o.req.reply <- r
}

func (o *pickerOverlay) view(m *Model) string {
	var b strings.Builder
	title := "Open file"
	if o.req.mode == pickSave {
		title = "Save as"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(o.input.View())

	if o.req.mode == pickOpen {
		b.WriteString("\n\n")
		if len(o.matches) == 0 {
			b.WriteString(m.styles.Muted.Render("No matching files"))
		}
		start, end := visibleWindow(o.cursor, len(o.matches), 12)
		for i := start; i < end; i++ {
			if i == o.cursor {
				b.WriteString(m.styles.Selected.Render("❯ " + o.matches[i]))
			} else {
				b.WriteString("  " + o.matches[i])
			}
			if i < end-1 {
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.KeyHint.Render("enter select · esc cancel"))
	return b.String()
}

// visibleWindow returns the slice bounds that keep cursor in a list of n
// items showing at most size rows.
func visibleWindow(cursor, n, size int) (start, end int) {
	if cursor >= size {
		start = cursor - size + 1
	}
	end = min(start+size, n)
	return start, end
}

// overlayBox renders a box centered over the given base view.
// It replaces entire rows so styled ANSI content underneath is hidden cleanly.
func (m *Model) overlayBox(base string, overlay string) string {
	overlayLines := strings.Split(overlay, "\n")
	baseLines := strings.Split(base, "\n")

	overlayH := len(overlayLines)
	overlayW := 0
	for _, line := range overlayLines {
		if w := lipgloss.Width(line); w > overlayW {
			overlayW = w
		}
	}

	startRow := max((len(baseLines)-overlayH)/2, 0)
	startCol := max((m.width-overlayW)/2, 0)

	for len(baseLines) < startRow+overlayH {
		baseLines = append(baseLines, "")
	}

	pad := strings.Repeat(" ", startCol)
	for i, oLine := range overlayLines {
		rightPad := ""
		if w := lipgloss.Width(oLine); w < overlayW {
			rightPad = strings.Repeat(" ", overlayW-w)
		}
		baseLines[startRow+i] = pad + oLine + rightPad
	}

	return strings.Join(baseLines, "\n")
}
