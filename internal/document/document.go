// Package document holds the single open markdown buffer and its save
// identity.
//
// The Store is the only owner of the Document value. Every transition builds
// a new Document and swaps it in under one lock, so readers never observe a
// loaded file's content paired with the previous file's path.
package document

import (
	"path/filepath"
	"sync"
)

// UntitledName is the display name of a document that has no path yet.
const UntitledName = "untitled.md"

// Document is an immutable snapshot of the open buffer.
type Document struct {
	Content           string
	FilePath          string // empty until the document is loaded or saved
	FileName          string
	HasUnsavedChanges bool
	Revision          uint64 // bumped on every store transition
}

// HasPath reports whether the document is associated with a file.
func (d Document) HasPath() bool {
	return d.FilePath != ""
}

// DisplayName returns the file name shown for path: its basename, or
// UntitledName when path is empty.
func DisplayName(path string) string {
	if path == "" {
		return UntitledName
	}
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		return UntitledName
	}
	return name
}

func untitled() Document {
	return Document{FileName: UntitledName}
}

// Store owns the live Document.
type Store struct {
	mu   sync.RWMutex
	doc  Document
	subs map[int]func(Document)
	next int
}

// NewStore returns a store holding an empty untitled document.
func NewStore() *Store {
	return &Store{doc: untitled(), subs: make(map[int]func(Document))}
}

// Snapshot returns the current document.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// SetContent replaces the content and marks the document dirty. Any text,
// including empty, is accepted.
func (s *Store) SetContent(text string) {
	s.replace(func(d Document) Document {
		d.Content = text
		d.HasUnsavedChanges = true
		return d
	})
}

// SetContentAt is SetContent that only applies while the document is still
// at revision rev. It reports false, leaving the store untouched, when
// another transition landed first.
func (s *Store) SetContentAt(rev uint64, text string) bool {
	applied := false
	s.replaceIf(func(d Document) (Document, bool) {
		if d.Revision != rev {
			return d, false
		}
		applied = true
		d.Content = text
		d.HasUnsavedChanges = true
		return d, true
	})
	return applied
}

// Edit applies fn to the current content and stores the result, marking the
// document dirty. fn runs under the store lock and must not call back into
// the store.
func (s *Store) Edit(fn func(current string) string) {
	s.replace(func(d Document) Document {
		d.Content = fn(d.Content)
		d.HasUnsavedChanges = true
		return d
	})
}

// New resets to an empty untitled document. Callers confirm with the user
// first when the current document is dirty.
func (s *Store) New() {
	s.replace(func(d Document) Document {
		fresh := untitled()
		fresh.Revision = d.Revision
		return fresh
	})
}

// Load replaces the whole document with a freshly read file.
func (s *Store) Load(path, content, name string) {
	s.replace(func(d Document) Document {
		return Document{
			Content:  content,
			FilePath: path,
			FileName: name,
			Revision: d.Revision,
		}
	})
}

// RecordSaved marks a successful write of the snapshot taken at revision rev.
// A non-empty path becomes the document's identity together with name. The
// dirty flag is cleared only when nothing changed since rev; an edit that
// landed while the write was in flight keeps the document dirty.
func (s *Store) RecordSaved(rev uint64, path, name string) {
	s.replace(func(d Document) Document {
		if path != "" {
			d.FilePath = path
			d.FileName = name
		}
		if d.Revision == rev {
			d.HasUnsavedChanges = false
		}
		return d
	})
}

// Subscribe registers fn to receive every new snapshot. fn is called outside
// the store lock. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Document)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) replace(fn func(Document) Document) {
	s.replaceIf(func(d Document) (Document, bool) { return fn(d), true })
}

func (s *Store) replaceIf(fn func(Document) (Document, bool)) {
	s.mu.Lock()
	next, ok := fn(s.doc)
	if !ok {
		s.mu.Unlock()
		return
	}
	next.Revision = s.doc.Revision + 1
	s.doc = next
	subs := make([]func(Document), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(next)
	}
}
