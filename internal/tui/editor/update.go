package editor

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/samsaffron/term-md/internal/assistant"
	"github.com/samsaffron/term-md/internal/prompt"
)

// fileDoneMsg reports a finished open or save.
type fileDoneMsg struct {
	op  string
	ok  bool
	err error
}

// assistantDoneMsg reports that a request settled.
type assistantDoneMsg struct {
	err error
}

// keyDoneMsg reports a finished credential change.
type keyDoneMsg struct {
	op  string
	err error
}

type statusClearMsg struct {
	id int
}

const statusTTL = 4 * time.Second

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Pick up loads that finished in a command before editing on top of them.
	m.refresh()

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout(0)
		return m, nil

	case tea.KeyMsg:
		if m.overlay != nil {
			cmds = append(cmds, m.overlay.update(m, msg))
		} else {
			cmds = append(cmds, m.handleKeyMsg(msg))
		}

	case tea.MouseMsg:
		if m.overlay == nil {
			cmds = append(cmds, m.handleMouseMsg(msg))
		}

	case pickRequestMsg:
		m.handlePickRequest(msg)

	case fileDoneMsg:
		cmds = append(cmds, m.handleFileDone(msg))

	case assistantDoneMsg:
		m.cancelAssist = nil
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.log.Debug("assistant request ended with error", zap.Error(msg.err))
		}

	case keyDoneMsg:
		cmds = append(cmds, m.handleKeyDone(msg))

	case spinner.TickMsg:
		if m.assist.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case statusClearMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusErr = false
		}

	default:
		if m.focus == paneSource && m.overlay == nil {
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.confirmDiscard("Quit term-md?", m.quit)

	case key.Matches(msg, m.keys.New):
		return m.confirmDiscard("Start a new document?", func() tea.Cmd {
			m.store.New()
			m.resetAssist()
			return m.setStatus("New document")
		})

	case key.Matches(msg, m.keys.Open):
		return m.confirmDiscard("Open another file?", func() tea.Cmd {
			return m.fileCmd("open", m.files.Open)
		})

	case key.Matches(msg, m.keys.Save):
		m.commitEditor()
		return m.fileCmd("save", m.files.Save)

	case key.Matches(msg, m.keys.SaveAs):
		m.commitEditor()
		return m.fileCmd("save", m.files.SaveAs)

	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == paneSource {
			m.setFocus(panePreview)
		} else {
			m.setFocus(paneSource)
		}
		return nil

	case key.Matches(msg, m.keys.Help):
		m.overlay = &helpOverlay{}
		return nil

	case key.Matches(msg, m.keys.Outline):
		m.overlay = newOutlineOverlay(m.store.Snapshot().Content)
		return nil

	case key.Matches(msg, m.keys.Continue):
		return m.startAssist(prompt.Continue)
	case key.Matches(msg, m.keys.Improve):
		return m.startAssist(prompt.Improve)
	case key.Matches(msg, m.keys.Summarize):
		return m.startAssist(prompt.Summarize)

	case key.Matches(msg, m.keys.Accept):
		return m.acceptSuggestion()

	case key.Matches(msg, m.keys.Dismiss):
		if m.assist.State().Phase == assistant.PhaseIdle {
			break
		}
		m.dismissSuggestion()
		return nil

	case key.Matches(msg, m.keys.Copy):
		if err := m.assist.CopyResult(m.clip); err != nil {
			return m.setError(err)
		}
		return m.setStatus("Suggestion copied to clipboard")

	case key.Matches(msg, m.keys.SetKey):
		m.overlay = newKeyOverlay(m.creds.Provider(), m.width)
		return nil

	case key.Matches(msg, m.keys.ClearKey):
		if !m.creds.Present() || m.creds.FromFallback() {
			return m.setError(errors.New("no stored API key to remove"))
		}
		m.overlay = &confirmOverlay{
			title: "Remove API key?",
			body:  "AI features will be disabled until a new key is added.",
			yes: func() tea.Cmd {
				return m.keyCmd("clear", func(ctx context.Context) error {
					return m.creds.Clear(ctx)
				})
			},
		}
		return nil
	}

	if m.focus == panePreview {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.sync.PreviewScrolled()
		return cmd
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.commitEditor()
	top := m.sourceTop
	m.followCursor()
	if m.sourceTop != top {
		m.sync.SourceScrolled()
	}
	return cmd
}

func (m *Model) handleMouseMsg(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	left, _ := m.paneWidths()
	up := msg.Button == tea.MouseButtonWheelUp
	down := msg.Button == tea.MouseButtonWheelDown
	if !up && !down {
		return nil
	}

	if msg.X >= left {
		if up {
			m.viewport.ScrollUp(3)
		} else {
			m.viewport.ScrollDown(3)
		}
		m.sync.PreviewScrolled()
		return nil
	}

	for i := 0; i < 3; i++ {
		if up {
			m.editor.CursorUp()
		} else {
			m.editor.CursorDown()
		}
	}
	m.followCursor()
	m.sync.SourceScrolled()
	return nil
}

// confirmDiscard runs then directly on a clean document and behind a
// confirmation when there are unsaved changes.
func (m *Model) confirmDiscard(title string, then func() tea.Cmd) tea.Cmd {
	m.commitEditor()
	doc := m.store.Snapshot()
	if !doc.HasUnsavedChanges {
		return then()
	}
	m.overlay = &confirmOverlay{
		title: title,
		body:  doc.FileName + " has unsaved changes that will be lost.",
		yes:   then,
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	if m.cancelAssist != nil {
		m.cancelAssist()
	}
	m.quitting = true
	return tea.Quit
}

// fileCmd runs a controller operation off the event loop. Open and
// save-as block in the picker until the overlay replies.
func (m *Model) fileCmd(op string, fn func(context.Context) (bool, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ok, err := fn(ctx)
		return fileDoneMsg{op: op, ok: ok, err: err}
	}
}

func (m *Model) handleFileDone(msg fileDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Warn("file operation failed", zap.String("op", msg.op), zap.Error(msg.err))
		return m.setError(msg.err)
	}
	if !msg.ok {
		return nil
	}
	m.refresh()
	doc := m.store.Snapshot()
	switch msg.op {
	case "open":
		m.resetAssist()
		m.editor.CursorStart()
		m.gotoLine(0)
		m.viewport.GotoTop()
		return m.setStatus("Opened " + doc.FileName)
	default:
		if doc.HasUnsavedChanges {
			return m.setStatus("Saved " + doc.FileName + " (edited since)")
		}
		return m.setStatus("Saved " + doc.FileName)
	}
}

// startAssist moves the assistant to loading before returning, so a second
// trigger in the same frame is refused.
func (m *Model) startAssist(kind prompt.Kind) tea.Cmd {
	m.commitEditor()
	pending, err := m.assist.Begin(kind)
	if err != nil {
		if errors.Is(err, assistant.ErrBusy) {
			return m.setStatus("Assistant is busy")
		}
		// NoContentError is already reflected in the panel
		return nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelAssist = cancel
	run := func() tea.Msg {
		defer cancel()
		return assistantDoneMsg{err: pending.Run(ctx)}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) acceptSuggestion() tea.Cmd {
	if err := m.assist.Accept(); err != nil {
		return m.setError(err)
	}
	m.refresh()
	m.editor.CursorEnd()
	m.gotoLine(m.editor.LineCount() - 1)
	m.sync.SourceScrolled()
	return m.setStatus("Suggestion added")
}

func (m *Model) dismissSuggestion() {
	if m.cancelAssist != nil {
		m.cancelAssist()
		m.cancelAssist = nil
	}
	m.assist.Dismiss()
}

// handlePickRequest shows a picker. A picker already on screen is cancelled
// first; any other overlay refuses the request. Every request gets a reply.
func (m *Model) handlePickRequest(msg pickRequestMsg) {
	switch cur := m.overlay.(type) {
	case nil:
	case *pickerOverlay:
		cur.finish(m, pickResult{})
	default:
		msg.reply <- pickResult{}
		return
	}
	m.overlay = newPickerOverlay(msg, m.width)
}

// resetAssist drops a suggestion that belonged to the replaced document.
func (m *Model) resetAssist() {
	if m.cancelAssist != nil {
		m.cancelAssist()
		m.cancelAssist = nil
	}
	m.assist.Reset()
}

func (m *Model) keyCmd(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return keyDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m *Model) handleKeyDone(msg keyDoneMsg) tea.Cmd {
	if msg.err != nil {
		return m.setError(msg.err)
	}
	if msg.op == "clear" {
		return m.setStatus("API key removed")
	}
	return m.setStatus("AI features enabled")
}

func (m *Model) setStatus(text string) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusErr = false
	return m.clearStatusLater()
}

func (m *Model) setError(err error) tea.Cmd {
	m.statusID++
	m.status = err.Error()
	m.statusErr = true
	return m.clearStatusLater()
}

func (m *Model) clearStatusLater() tea.Cmd {
	id := m.statusID
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusClearMsg{id: id}
	})
}
