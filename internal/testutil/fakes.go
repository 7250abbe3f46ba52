// Package testutil holds hand-written fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/samsaffron/term-md/internal/llm"
)

// WriteCall records one FakeAccess.WriteFile invocation.
type WriteCall struct {
	Path string
	Text string
}

// FakeAccess is an in-memory file capability with scripted pickers.
type FakeAccess struct {
	mu sync.Mutex

	OpenPath string // empty = user cancels the open picker
	SavePath string // empty = user cancels the save picker
	PickErr  error

	Files    map[string]string
	ReadErr  error
	WriteErr error

	Writes       []WriteCall
	SaveDefaults []string // defaultName passed to each save pick
	OpenPicks    int
	// BeforeWrite runs inside WriteFile, before the write is recorded.
	BeforeWrite func()
}

// NewFakeAccess returns a FakeAccess holding files.
func NewFakeAccess(files map[string]string) *FakeAccess {
	if files == nil {
		files = make(map[string]string)
	}
	return &FakeAccess{Files: files}
}

func (f *FakeAccess) PickOpenPath(ctx context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OpenPicks++
	if f.PickErr != nil {
		return "", false, f.PickErr
	}
	return f.OpenPath, f.OpenPath != "", nil
}

func (f *FakeAccess) PickSavePath(ctx context.Context, defaultName string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveDefaults = append(f.SaveDefaults, defaultName)
	if f.PickErr != nil {
		return "", false, f.PickErr
	}
	return f.SavePath, f.SavePath != "", nil
}

func (f *FakeAccess) ReadFile(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return "", f.ReadErr
	}
	content, ok := f.Files[path]
	if !ok {
		return "", errors.New("no such file: " + path)
	}
	return content, nil
}

func (f *FakeAccess) WriteFile(ctx context.Context, path, text string) error {
	if f.BeforeWrite != nil {
		f.BeforeWrite()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.Writes = append(f.Writes, WriteCall{Path: path, Text: text})
	f.Files[path] = text
	return nil
}

// MemoryCredentialStore is an in-memory secure store.
type MemoryCredentialStore struct {
	mu  sync.Mutex
	key string

	SaveErr   error
	LoadErr   error
	DeleteErr error
	Saves     int
	Deletes   int
}

// NewMemoryCredentialStore returns a store pre-populated with key (may be empty).
func NewMemoryCredentialStore(key string) *MemoryCredentialStore {
	return &MemoryCredentialStore{key: key}
}

func (s *MemoryCredentialStore) Save(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.key = key
	return nil
}

func (s *MemoryCredentialStore) Load(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return "", false, s.LoadErr
	}
	return s.key, s.key != "", nil
}

func (s *MemoryCredentialStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.key = ""
	return nil
}

func (s *MemoryCredentialStore) Exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return false, s.LoadErr
	}
	return s.key != "", nil
}

// FakeCompleter is a scripted llm.Completer.
type FakeCompleter struct {
	mu sync.Mutex

	initialized bool
	Config      llm.Config
	InitErr     error
	Inits       int

	Responses []llm.Response
	Err       error
	Requests  []llm.Request
	// Block, when set, is received from before Complete returns.
	Block chan struct{}
}

// NewFakeCompleter returns a completer that answers with texts in order.
func NewFakeCompleter(texts ...string) *FakeCompleter {
	f := &FakeCompleter{}
	for _, t := range texts {
		f.Responses = append(f.Responses, llm.Response{Text: t})
	}
	return f
}

func (f *FakeCompleter) Initialize(cfg llm.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inits++
	if f.InitErr != nil {
		return f.InitErr
	}
	if cfg.APIKey == "" {
		return errors.New("api key is required")
	}
	f.Config = cfg
	f.initialized = true
	return nil
}

func (f *FakeCompleter) IsInitialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized
}

func (f *FakeCompleter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized = false
}

func (f *FakeCompleter) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return llm.Response{}, f.Err
	}
	if len(f.Responses) == 0 {
		return llm.Response{}, errors.New("no scripted response")
	}
	resp := f.Responses[0]
	f.Responses = f.Responses[1:]
	return resp, nil
}

// Calls returns how many Complete calls were made.
func (f *FakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}
