// Package editor is the split-pane terminal editor: a markdown source pane,
// a rendered preview and the assistant panel.
package editor

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/samsaffron/term-md/internal/assistant"
	"github.com/samsaffron/term-md/internal/clipboard"
	"github.com/samsaffron/term-md/internal/credentials"
	"github.com/samsaffron/term-md/internal/document"
	"github.com/samsaffron/term-md/internal/files"
	"github.com/samsaffron/term-md/internal/preview"
	"github.com/samsaffron/term-md/internal/scroll"
	"github.com/samsaffron/term-md/internal/ui"
)

type pane int

const (
	paneSource pane = iota
	panePreview
)

// Deps are the collaborators the editor drives.
type Deps struct {
	Store       *document.Store
	Files       *files.Controller
	Assistant   *assistant.Lifecycle
	Credentials *credentials.Lifecycle
	Renderer    *preview.Renderer
	Styles      *ui.Styles
	Clipboard   clipboard.Writer
	Logger      *zap.Logger

	// SyncScroll couples source and preview scrolling.
	SyncScroll bool
	// WordWrap caps the preview width; 0 uses the pane width.
	WordWrap int
}

// Model is the editor TUI model.
type Model struct {
	// Dimensions
	width  int
	height int

	ctx      context.Context
	store    *document.Store
	files    *files.Controller
	assist   *assistant.Lifecycle
	creds    *credentials.Lifecycle
	renderer *preview.Renderer
	styles   *ui.Styles
	clip     clipboard.Writer
	log      *zap.Logger
	keys     KeyMap

	// Panes
	editor    textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model
	focus     pane
	sourceTop int // first visible source line, tracked from the cursor
	sync      scroll.Synchronizer
	wordWrap  int

	// Last document revision mirrored into the panes
	rev          uint64
	rendered     bool
	renderedRev  uint64
	renderedWide int
	stats        preview.Stats

	cancelAssist context.CancelFunc

	overlay overlay

	// Status message
	status    string
	statusErr bool
	statusID  int

	quitting bool
}

// New creates an editor over deps.Store.
func New(ctx context.Context, deps Deps) *Model {
	width := 80
	height := 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	styles := deps.Styles
	if styles == nil {
		styles = ui.DefaultStyles()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clip := deps.Clipboard
	if clip == nil {
		clip = clipboard.NewSystem()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	ta := textarea.New()
	ta.Placeholder = "Start writing markdown...\n\nPress F1 for shortcuts."
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(styles.Theme().Muted)
	ta.FocusedStyle.EndOfBuffer = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.BlurredStyle = ta.FocusedStyle
	ta.Focus()

	vp := viewport.New(width/2, height)
	vp.Style = lipgloss.NewStyle()

	doc := deps.Store.Snapshot()
	ta.SetValue(doc.Content)

	m := &Model{
		width:    width,
		height:   height,
		ctx:      ctx,
		store:    deps.Store,
		files:    deps.Files,
		assist:   deps.Assistant,
		creds:    deps.Credentials,
		renderer: deps.Renderer,
		styles:   styles,
		clip:     clip,
		log:      log,
		keys:     DefaultKeyMap(),
		editor:   ta,
		viewport: vp,
		spinner:  s,
		focus:    paneSource,
		wordWrap: deps.WordWrap,
		rev:      doc.Revision,
	}
	m.sync = scroll.Synchronizer{
		Source:   sourceSurface{m: m},
		Preview:  previewSurface{vp: &m.viewport},
		Disabled: !deps.SyncScroll,
	}
	m.layout(0)
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Quitting reports whether the user has confirmed quit.
func (m *Model) Quitting() bool {
	return m.quitting
}

// paneWidths splits the screen between source and preview.
func (m *Model) paneWidths() (left, right int) {
	left = m.width / 2
	return left, m.width - left
}

// layout sizes the panes, leaving panelHeight rows for the assistant panel
// and one for the status bar.
func (m *Model) layout(panelHeight int) {
	left, right := m.paneWidths()
	// border (2) + title (1)
	inner := max(m.height-panelHeight-1-3, 1)

	m.editor.SetWidth(max(left-4, 1))
	m.editor.SetHeight(inner)
	m.viewport.Width = max(right-4, 1)
	m.viewport.Height = inner

	m.followCursor()
	m.refreshPreview()
}

// previewWidth is the wrap width of rendered markdown.
func (m *Model) previewWidth() int {
	w := m.viewport.Width
	if m.wordWrap > 0 && m.wordWrap < w {
		w = m.wordWrap
	}
	return w
}

// refresh mirrors store changes made outside the source pane (open, new,
// accept) into the editor and re-renders the preview.
func (m *Model) refresh() {
	doc := m.store.Snapshot()
	if doc.Revision == m.rev {
		return
	}
	m.rev = doc.Revision
	if doc.Content != m.editor.Value() {
		m.editor.SetValue(doc.Content)
		m.followCursor()
	}
	m.refreshPreview()
}

func (m *Model) refreshPreview() {
	if m.renderer == nil {
		return
	}
	width := m.previewWidth()
	if m.rendered && m.renderedRev == m.rev && m.renderedWide == width {
		return
	}
	content := m.store.Snapshot().Content
	m.viewport.SetContent(m.renderer.RenderOrRaw(content, width))
	m.stats = preview.Analyze(content)
	m.rendered = true
	m.renderedRev = m.rev
	m.renderedWide = width
}

// commitEditor pushes the source pane's text into the store.
// commitEditor writes the textarea back to the store. The write is tied to
// the revision the textarea was last synced at; when a load or new document
// landed in between, the edit is dropped and the textarea takes the store's
// content instead.
func (m *Model) commitEditor() {
	value := m.editor.Value()
	if value == m.store.Snapshot().Content {
		return
	}
	if !m.store.SetContentAt(m.rev, value) {
		m.refresh()
	}
}

// followCursor keeps sourceTop in step with the textarea, which scrolls
// only as far as needed to keep the cursor visible.
func (m *Model) followCursor() {
	row := m.editor.Line()
	h := m.editor.Height()
	if row < m.sourceTop {
		m.sourceTop = row
	}
	if row >= m.sourceTop+h {
		m.sourceTop = row - h + 1
	}
	m.sourceTop = min(max(m.sourceTop, 0), max(m.editor.LineCount()-h, 0))
}

// gotoLine moves the source cursor to the given logical line.
func (m *Model) gotoLine(target int) {
	target = min(max(target, 0), max(m.editor.LineCount()-1, 0))
	guard := 4*m.editor.LineCount() + 8
	for i := 0; m.editor.Line() < target && i < guard; i++ {
		m.editor.CursorDown()
	}
	for i := 0; m.editor.Line() > target && i < guard; i++ {
		m.editor.CursorUp()
	}
	m.followCursor()
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	if p == paneSource {
		m.editor.Focus()
	} else {
		m.editor.Blur()
	}
}
