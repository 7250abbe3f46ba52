package document

import (
	"sync"
	"testing"
)

func TestNewStoreIsUntitled(t *testing.T) {
	s := NewStore()
	d := s.Snapshot()
	if d.Content != "" || d.FilePath != "" || d.FileName != UntitledName || d.HasUnsavedChanges {
		t.Fatalf("unexpected initial document: %+v", d)
	}
}

func TestSetContentAlwaysDirties(t *testing.T) {
	tests := []struct {
		name  string
		edits []string
	}{
		{"single", []string{"hello"}},
		{"empty text", []string{""}},
		{"many", []string{"a", "ab", "abc", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			for _, e := range tt.edits {
				s.SetContent(e)
			}
			d := s.Snapshot()
			if !d.HasUnsavedChanges {
				t.Fatal("expected document to be dirty after SetContent")
			}
			if want := tt.edits[len(tt.edits)-1]; d.Content != want {
				t.Fatalf("content=%q, want %q", d.Content, want)
			}
		})
	}
}

func TestLoadReplacesAllFields(t *testing.T) {
	s := NewStore()
	s.SetContent("scratch")
	s.Load("/a.md", "hello", "a.md")

	d := s.Snapshot()
	if d.FilePath != "/a.md" || d.Content != "hello" || d.FileName != "a.md" || d.HasUnsavedChanges {
		t.Fatalf("unexpected document after load: %+v", d)
	}

	s.SetContent("hello world")
	if !s.Snapshot().HasUnsavedChanges {
		t.Fatal("edit after load should dirty the document")
	}
}

func TestNewResetsRegardlessOfState(t *testing.T) {
	s := NewStore()
	s.Load("/notes/todo.md", "- milk", "todo.md")
	s.SetContent("- milk\n- eggs")
	s.New()

	d := s.Snapshot()
	if d.Content != "" || d.FilePath != "" || d.FileName != UntitledName || d.HasUnsavedChanges {
		t.Fatalf("unexpected document after New: %+v", d)
	}
}

func TestRecordSavedClearsDirtyAndAssignsPath(t *testing.T) {
	s := NewStore()
	s.SetContent("draft")
	rev := s.Snapshot().Revision

	s.RecordSaved(rev, "/tmp/x.md", "x.md")
	d := s.Snapshot()
	if d.HasUnsavedChanges {
		t.Fatal("expected clean document after save")
	}
	if d.FilePath != "/tmp/x.md" || d.FileName != "x.md" {
		t.Fatalf("identity not updated: %+v", d)
	}

	s.SetContent("draft 2")
	s.RecordSaved(s.Snapshot().Revision, "", "")
	d = s.Snapshot()
	if d.HasUnsavedChanges || d.FilePath != "/tmp/x.md" {
		t.Fatalf("resave should keep identity and clear dirty: %+v", d)
	}
}

func TestRecordSavedWithStaleRevisionStaysDirty(t *testing.T) {
	s := NewStore()
	s.SetContent("written")
	rev := s.Snapshot().Revision
	s.SetContent("written, then typed more")

	s.RecordSaved(rev, "/tmp/x.md", "x.md")
	d := s.Snapshot()
	if !d.HasUnsavedChanges {
		t.Fatal("edit during save must keep the document dirty")
	}
	if d.FilePath != "/tmp/x.md" {
		t.Fatalf("path should still be assigned, got %q", d.FilePath)
	}
}

func TestSetContentAtRejectsStaleRevision(t *testing.T) {
	s := NewStore()
	s.Load("/old.md", "old", "old.md")
	rev := s.Snapshot().Revision

	s.Load("/new.md", "new", "new.md")
	if s.SetContentAt(rev, "old!") {
		t.Fatal("SetContentAt applied at a stale revision")
	}
	d := s.Snapshot()
	if d.Content != "new" || d.FilePath != "/new.md" || d.HasUnsavedChanges {
		t.Fatalf("store changed by stale write: %+v", d)
	}

	if !s.SetContentAt(d.Revision, "new!") {
		t.Fatal("SetContentAt rejected the current revision")
	}
	if d := s.Snapshot(); d.Content != "new!" || !d.HasUnsavedChanges || d.Revision != rev+2 {
		t.Fatalf("after current write: %+v", d)
	}
}

func TestEditAppendsToCurrentContent(t *testing.T) {
	s := NewStore()
	s.Load("/a.md", "one", "a.md")
	s.Edit(func(cur string) string { return cur + "\n\ntwo" })
	d := s.Snapshot()
	if d.Content != "one\n\ntwo" || !d.HasUnsavedChanges {
		t.Fatalf("unexpected document after Edit: %+v", d)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s := NewStore()
	var got []Document
	cancel := s.Subscribe(func(d Document) { got = append(got, d) })

	s.SetContent("x")
	s.Load("/b.md", "y", "b.md")
	cancel()
	s.SetContent("z")

	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got))
	}
	if got[1].FilePath != "/b.md" || got[1].Content != "y" {
		t.Fatalf("second snapshot inconsistent: %+v", got[1])
	}
}

func TestConcurrentReadersSeeConsistentLoads(t *testing.T) {
	s := NewStore()
	files := map[string]string{"/a.md": "alpha", "/b.md": "bravo"}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			if i%2 == 0 {
				s.Load("/a.md", "alpha", "a.md")
			} else {
				s.Load("/b.md", "bravo", "b.md")
			}
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
		d := s.Snapshot()
		if d.FilePath == "" {
			continue
		}
		if files[d.FilePath] != d.Content {
			t.Fatalf("mixed snapshot: path=%q content=%q", d.FilePath, d.Content)
		}
		if DisplayName(d.FilePath) != d.FileName {
			t.Fatalf("name %q does not match path %q", d.FileName, d.FilePath)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"":                UntitledName,
		"/tmp/x.md":       "x.md",
		"notes/readme.md": "readme.md",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q)=%q, want %q", in, got, want)
		}
	}
}
