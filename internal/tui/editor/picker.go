package editor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/samsaffron/term-md/internal/files"
)

type pickMode int

const (
	pickOpen pickMode = iota
	pickSave
)

type pickResult struct {
	path string
	ok   bool
}

// pickRequestMsg asks the running program to show the picker overlay. The
// overlay answers on reply exactly once.
type pickRequestMsg struct {
	mode        pickMode
	defaultName string
	paths       []string
	reply       chan<- pickResult
}

var errPickerDetached = errors.New("file picker is not attached to a running editor")

// Picker is a files.Picker backed by the editor's overlay. Paths are
// discovered and resolved relative to Root.
type Picker struct {
	Root string

	mu   sync.Mutex
	send func(tea.Msg)
}

var _ files.Picker = (*Picker)(nil)

// NewPicker returns a picker rooted at root.
func NewPicker(root string) *Picker {
	if root == "" {
		root = "."
	}
	return &Picker{Root: root}
}

// Attach connects the picker to a program, usually (*tea.Program).Send.
func (p *Picker) Attach(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
}

func (p *Picker) PickOpen(ctx context.Context) (string, bool, error) {
	paths, err := files.Discover(p.Root)
	if err != nil {
		return "", false, fmt.Errorf("failed to list files: %w", err)
	}
	path, ok, err := p.request(ctx, pickRequestMsg{mode: pickOpen, paths: paths})
	if err != nil || !ok {
		return "", ok, err
	}
	return p.resolve(path), true, nil
}

func (p *Picker) PickSave(ctx context.Context, defaultName string) (string, bool, error) {
	path, ok, err := p.request(ctx, pickRequestMsg{mode: pickSave, defaultName: defaultName})
	if err != nil || !ok {
		return "", ok, err
	}
	return files.EnsureSaveExtension(p.resolve(path)), true, nil
}

func (p *Picker) request(ctx context.Context, req pickRequestMsg) (string, bool, error) {
	p.mu.Lock()
	send := p.send
	p.mu.Unlock()
	if send == nil {
		return "", false, errPickerDetached
	}

	reply := make(chan pickResult, 1)
	req.reply = reply
	send(req)

	select {
	case r := <-reply:
		return r.path, r.ok, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (p *Picker) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, filepath.FromSlash(path))
}
