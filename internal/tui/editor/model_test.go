package editor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/samsaffron/term-md/internal/assistant"
	"github.com/samsaffron/term-md/internal/credentials"
	"github.com/samsaffron/term-md/internal/document"
	"github.com/samsaffron/term-md/internal/files"
	"github.com/samsaffron/term-md/internal/preview"
	"github.com/samsaffron/term-md/internal/prompt"
	"github.com/samsaffron/term-md/internal/testutil"
	"github.com/samsaffron/term-md/internal/ui"
)

type recordingClipboard struct {
	copied []string
}

func (c *recordingClipboard) CopyText(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

type testEditor struct {
	*Model
	client  *testutil.FakeCompleter
	secrets *testutil.MemoryCredentialStore
	access  *testutil.FakeAccess
	clip    *recordingClipboard
}

func newTestEditor(t *testing.T, content string, texts ...string) *testEditor {
	t.Helper()
	ctx := context.Background()

	store := document.NewStore()
	if content != "" {
		store.SetContent(content)
	}
	client := testutil.NewFakeCompleter(texts...)
	secrets := testutil.NewMemoryCredentialStore("k")
	creds := credentials.NewLifecycle(secrets, client, credentials.Options{})
	creds.Start(ctx)
	access := testutil.NewFakeAccess(nil)
	clip := &recordingClipboard{}

	m := New(ctx, Deps{
		Store:       store,
		Files:       files.NewController(store, access, nil),
		Assistant:   assistant.New(store, client, creds, assistant.Options{}),
		Credentials: creds,
		Renderer:    preview.NewRenderer("dark", ui.DefaultTheme()),
		Styles:      ui.DefaultStyles(),
		Clipboard:   clip,
		SyncScroll:  true,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return &testEditor{Model: m, client: client, secrets: secrets, access: access, clip: clip}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	if rest, ok := strings.CutPrefix(s, "alt+"); ok {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(rest), Alt: true}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (e *testEditor) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = e.Update(keyPress(k))
	}
	return cmd
}

func TestQuitWithUnsavedChangesAsksForConfirmation(t *testing.T) {
	e := newTestEditor(t, "draft")

	e.press("ctrl+q")
	if e.Quitting() {
		t.Fatal("quit without confirmation on a dirty document")
	}
	if _, ok := e.overlay.(*confirmOverlay); !ok {
		t.Fatalf("overlay = %T, want *confirmOverlay", e.overlay)
	}
	if !strings.Contains(e.View(), "untitled.md has unsaved changes") {
		t.Fatal("confirm view should mention unsaved changes")
	}

	e.press("n")
	if e.overlay != nil || e.Quitting() {
		t.Fatal("declining should close the overlay and keep running")
	}
	if e.store.Snapshot().Content != "draft" {
		t.Fatalf("content = %q, want draft", e.store.Snapshot().Content)
	}

	e.press("ctrl+q", "y")
	if !e.Quitting() {
		t.Fatal("confirming should quit")
	}
}

func TestQuitCleanDocumentQuitsImmediately(t *testing.T) {
	e := newTestEditor(t, "")
	e.press("ctrl+q")
	if !e.Quitting() {
		t.Fatal("expected immediate quit on a clean document")
	}
}

func TestTypingMarksDocumentDirty(t *testing.T) {
	e := newTestEditor(t, "")
	e.press("h", "i")

	doc := e.store.Snapshot()
	if doc.Content != "hi" || !doc.HasUnsavedChanges {
		t.Fatalf("doc = %+v", doc)
	}
	if !strings.Contains(e.View(), "untitled.md has unsaved changes") {
		t.Fatal("status bar should show the unsaved indicator")
	}
}

func TestAcceptKeyAppendsSuggestion(t *testing.T) {
	e := newTestEditor(t, "A", "X")
	if err := e.assist.Run(context.Background(), prompt.Continue); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(e.View(), "Suggestion") {
		t.Fatal("staged suggestion should be shown")
	}

	e.press("alt+y")

	doc := e.store.Snapshot()
	if doc.Content != "A\n\nX" {
		t.Fatalf("content = %q", doc.Content)
	}
	if e.editor.Value() != doc.Content {
		t.Fatalf("editor = %q, want %q", e.editor.Value(), doc.Content)
	}
	if !doc.HasUnsavedChanges {
		t.Fatal("accepting should leave the document dirty")
	}
	if e.assist.State().Phase != assistant.PhaseIdle {
		t.Fatalf("phase = %s, want idle", e.assist.State().Phase)
	}
}

func TestAssistKeyRefusedWhileLoading(t *testing.T) {
	e := newTestEditor(t, "text", "unused")
	e.client.Block = make(chan struct{})

	if cmd := e.press("alt+c"); cmd == nil {
		t.Fatal("expected a command running the request")
	}
	if !e.assist.Busy() {
		t.Fatal("expected loading right after the key press")
	}

	e.press("alt+i")
	if e.status != "Assistant is busy" {
		t.Fatalf("status = %q", e.status)
	}
	if e.assist.State().Kind != prompt.Continue {
		t.Fatalf("kind = %s, want continue", e.assist.State().Kind)
	}

	e.press("esc")
	if e.assist.State().Phase != assistant.PhaseIdle {
		t.Fatal("esc should dismiss the in-flight request")
	}
}

func TestImproveEmptyDocumentShowsMessage(t *testing.T) {
	e := newTestEditor(t, "")
	e.press("alt+i")

	if !strings.Contains(e.View(), "No content to improve") {
		t.Fatal("panel should show the local failure")
	}
	if e.client.Calls() != 0 {
		t.Fatalf("remote calls = %d, want 0", e.client.Calls())
	}
}

func TestCopyStagedSuggestion(t *testing.T) {
	e := newTestEditor(t, "A", "summary")
	if err := e.assist.Run(context.Background(), prompt.Summarize); err != nil {
		t.Fatalf("Run: %v", err)
	}
	e.press("alt+p")
	if len(e.clip.copied) != 1 || e.clip.copied[0] != "summary" {
		t.Fatalf("copied = %v", e.clip.copied)
	}
}

func TestClearKeyRequiresConfirmation(t *testing.T) {
	e := newTestEditor(t, "")
	e.press("alt+k")

	o, ok := e.overlay.(*confirmOverlay)
	if !ok {
		t.Fatalf("overlay = %T, want *confirmOverlay", e.overlay)
	}
	if !e.creds.Present() {
		t.Fatal("key removed before confirmation")
	}

	msg := o.yes()().(keyDoneMsg)
	e.Update(msg)
	if e.creds.Present() {
		t.Fatal("expected key removed")
	}
	if e.status != "API key removed" {
		t.Fatalf("status = %q", e.status)
	}
}

func TestSetKeyOverlaySavesTrimmedKey(t *testing.T) {
	e := newTestEditor(t, "")
	e.press("ctrl+k")
	o, ok := e.overlay.(*keyOverlay)
	if !ok {
		t.Fatalf("overlay = %T, want *keyOverlay", e.overlay)
	}
	o.input.SetValue("  new-key ")

	cmd := e.press("enter")
	if e.overlay != nil {
		t.Fatal("overlay should close on enter")
	}
	e.Update(cmd().(keyDoneMsg))

	key, ok, err := e.secrets.Load(context.Background())
	if err != nil || !ok || key != "new-key" {
		t.Fatalf("stored = %q %v %v", key, ok, err)
	}
}

func TestPickerOverlayFiltersAndReplies(t *testing.T) {
	e := newTestEditor(t, "")
	reply := make(chan pickResult, 1)
	e.Update(pickRequestMsg{mode: pickOpen, paths: []string{"alpha.md", "beta.md"}, reply: reply})

	e.press("b", "e", "t", "enter")

	got := <-reply
	if !got.ok || got.path != "beta.md" {
		t.Fatalf("reply = %+v", got)
	}
	if e.overlay != nil {
		t.Fatal("overlay should close")
	}
}

func TestPickerOverlayCancel(t *testing.T) {
	e := newTestEditor(t, "")
	reply := make(chan pickResult, 1)
	e.Update(pickRequestMsg{mode: pickSave, defaultName: "untitled.md", reply: reply})
	e.press("esc")

	if got := <-reply; got.ok {
		t.Fatalf("reply = %+v, want cancelled", got)
	}
}

func TestPickerResolvesAgainstRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "notes"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes", "a.md"), []byte("# a"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewPicker(dir)
	var listed []string
	p.Attach(func(msg tea.Msg) {
		req := msg.(pickRequestMsg)
		listed = req.paths
		if req.mode == pickSave {
			req.reply <- pickResult{path: "draft", ok: true}
			return
		}
		req.reply <- pickResult{path: "notes/a.md", ok: true}
	})

	path, ok, err := p.PickOpen(context.Background())
	if err != nil || !ok {
		t.Fatalf("PickOpen = %q %v %v", path, ok, err)
	}
	if path != filepath.Join(dir, "notes", "a.md") {
		t.Fatalf("path = %q", path)
	}
	if len(listed) != 1 || listed[0] != "notes/a.md" {
		t.Fatalf("listed = %v", listed)
	}

	path, _, err = p.PickSave(context.Background(), "untitled.md")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "draft.md") {
		t.Fatalf("save path = %q", path)
	}
}

func TestPickerDetached(t *testing.T) {
	p := NewPicker(t.TempDir())
	if _, _, err := p.PickSave(context.Background(), "x.md"); err != errPickerDetached {
		t.Fatalf("err = %v, want errPickerDetached", err)
	}
}

func TestOutlineJumpsToHeading(t *testing.T) {
	e := newTestEditor(t, "# One\n\ntext\n\n## Two\n\nmore")
	e.press("alt+o")
	if _, ok := e.overlay.(*outlineOverlay); !ok {
		t.Fatalf("overlay = %T, want *outlineOverlay", e.overlay)
	}
	e.press("j", "enter")
	if e.editor.Line() != 4 {
		t.Fatalf("cursor line = %d, want 4", e.editor.Line())
	}
}

func TestPreviewSurfaceScroll(t *testing.T) {
	vp := viewport.New(10, 5)
	vp.SetContent(strings.Repeat("line\n", 19) + "line")
	s := previewSurface{vp: &vp}

	got := s.ScrollMetrics()
	if got.Height != 20 || got.Client != 5 || got.Top != 0 {
		t.Fatalf("metrics = %+v", got)
	}
	s.SetScrollTop(7.4)
	if vp.YOffset != 7 {
		t.Fatalf("YOffset = %d, want 7", vp.YOffset)
	}
}

func TestClampLines(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "a\nb", n: 3, want: "a\nb"},
		{in: "a\nb\nc\nd\ne", n: 3, want: "a\nb\n… 3 more lines"},
	}
	for _, tc := range tests {
		if got := clampLines(tc.in, tc.n); got != tc.want {
			t.Errorf("clampLines(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		cursor, n, size int
		start, end      int
	}{
		{cursor: 0, n: 3, size: 5, start: 0, end: 3},
		{cursor: 6, n: 10, size: 5, start: 2, end: 7},
		{cursor: 0, n: 0, size: 5, start: 0, end: 0},
	}
	for _, tc := range tests {
		start, end := visibleWindow(tc.cursor, tc.n, tc.size)
		if start != tc.start || end != tc.end {
			t.Errorf("visibleWindow(%d, %d, %d) = %d, %d", tc.cursor, tc.n, tc.size, start, end)
		}
	}
}

func TestSaveAsThenOpen(t *testing.T) {
	e := newTestEditor(t, "")
	e.press("h", "i")
	e.access.SavePath = "/tmp/x.md"

	cmd := e.press("ctrl+s")
	e.Update(cmd().(fileDoneMsg))

	doc := e.store.Snapshot()
	if doc.FilePath != "/tmp/x.md" || doc.FileName != "x.md" || doc.HasUnsavedChanges {
		t.Fatalf("doc = %+v", doc)
	}
	if len(e.access.Writes) != 1 || e.access.Writes[0].Text != "hi" {
		t.Fatalf("writes = %+v", e.access.Writes)
	}
	if e.status != "Saved x.md" {
		t.Fatalf("status = %q", e.status)
	}

	e.access.Files["/a.md"] = "hello"
	e.access.OpenPath = "/a.md"
	cmd = e.press("ctrl+o")
	e.Update(cmd().(fileDoneMsg))

	if e.editor.Value() != "hello" {
		t.Fatalf("editor = %q, want hello", e.editor.Value())
	}
	if doc := e.store.Snapshot(); doc.FileName != "a.md" || doc.HasUnsavedChanges {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestSaveFailureKeepsDocumentDirty(t *testing.T) {
	e := newTestEditor(t, "")
	e.press("x")
	e.access.SavePath = "/tmp/x.md"
	e.access.WriteErr = os.ErrPermission

	cmd := e.press("ctrl+s")
	e.Update(cmd().(fileDoneMsg))

	if !e.store.Snapshot().HasUnsavedChanges {
		t.Fatal("failed save must leave the document dirty")
	}
	if !e.statusErr || !strings.Contains(e.status, "permission denied") {
		t.Fatalf("status = %q (err=%v)", e.status, e.statusErr)
	}
}

func TestShrinkingSourceKeepsPreviewAtTop(t *testing.T) {
	para := strings.TrimSpace(strings.Repeat("word ", 300))
	content := strings.Repeat(para+"\n", 4) + para + strings.Repeat("\nx", 40)
	e := newTestEditor(t, content)
	if e.sourceTop == 0 {
		t.Fatal("cursor at the end of a long document should scroll the source")
	}

	for i := 0; e.editor.LineCount() > 5 && i < 200; i++ {
		e.press("backspace")
	}
	if e.editor.LineCount() != 5 {
		t.Fatalf("line count = %d, want 5", e.editor.LineCount())
	}

	src := sourceSurface{m: e.Model}.ScrollMetrics()
	if src.Height > src.Client {
		t.Fatalf("source should fit its pane: %+v", src)
	}
	if e.sourceTop != 0 {
		t.Fatalf("sourceTop = %d, want 0", e.sourceTop)
	}
	if e.viewport.YOffset != 0 {
		t.Fatalf("preview offset = %d, want 0 (total %d)", e.viewport.YOffset, e.viewport.TotalLineCount())
	}
}

func TestEditAgainstReplacedDocumentIsDropped(t *testing.T) {
	e := newTestEditor(t, "old")

	// A keystroke reached the textarea, then an open finished before the
	// edit was committed.
	e.editor.SetValue("old!")
	e.store.Load("/notes/new.md", "new", "new.md")
	e.commitEditor()

	doc := e.store.Snapshot()
	if doc.Content != "new" || doc.FilePath != "/notes/new.md" || doc.HasUnsavedChanges {
		t.Fatalf("document = %+v, want the freshly loaded file", doc)
	}
	if e.editor.Value() != "new" {
		t.Fatalf("editor = %q, want new", e.editor.Value())
	}
}

func TestSecondPickRequestCancelsFirst(t *testing.T) {
	e := newTestEditor(t, "")
	first := make(chan pickResult, 1)
	second := make(chan pickResult, 1)

	e.Update(pickRequestMsg{mode: pickSave, defaultName: "untitled.md", reply: first})
	e.Update(pickRequestMsg{mode: pickSave, defaultName: "untitled.md", reply: second})

	if got := <-first; got.ok {
		t.Fatalf("first reply = %+v, want cancelled", got)
	}
	o, ok := e.overlay.(*pickerOverlay)
	if !ok || o.req.reply != (chan<- pickResult)(second) {
		t.Fatalf("overlay = %T, want the second picker", e.overlay)
	}
}

func TestPickRequestDoesNotReplaceConfirm(t *testing.T) {
	e := newTestEditor(t, "draft")
	e.press("ctrl+q")

	reply := make(chan pickResult, 1)
	e.Update(pickRequestMsg{mode: pickOpen, reply: reply})

	if got := <-reply; got.ok {
		t.Fatalf("reply = %+v, want refused", got)
	}
	if _, ok := e.overlay.(*confirmOverlay); !ok {
		t.Fatalf("overlay = %T, want *confirmOverlay", e.overlay)
	}
}

func TestNewDocumentDropsSuggestion(t *testing.T) {
	e := newTestEditor(t, "A", "X")
	if err := e.assist.Run(context.Background(), prompt.Continue); err != nil {
		t.Fatalf("Run: %v", err)
	}

	e.press("ctrl+n", "y")

	if e.store.Snapshot().Content != "" {
		t.Fatalf("content = %q, want empty", e.store.Snapshot().Content)
	}
	if e.assist.State().Phase != assistant.PhaseIdle {
		t.Fatalf("phase = %s, want idle", e.assist.State().Phase)
	}
}
