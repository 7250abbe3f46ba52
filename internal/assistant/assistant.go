// Package assistant runs text-generation requests against the document and
// stages their results until the user accepts or dismisses them.
package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/samsaffron/term-md/internal/clipboard"
	"github.com/samsaffron/term-md/internal/credentials"
	"github.com/samsaffron/term-md/internal/document"
	"github.com/samsaffron/term-md/internal/llm"
	"github.com/samsaffron/term-md/internal/prompt"
)

// Phase is the lifecycle position of the assistant.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a snapshot of the assistant.
type State struct {
	Phase   Phase
	Kind    prompt.Kind
	Result  string // set in PhaseSucceeded
	Message string // set in PhaseFailed
	Usage   *llm.Usage
}

// Staged reports whether a result is waiting for accept or dismiss.
func (s State) Staged() bool {
	return s.Phase == PhaseSucceeded
}

// Gate readies the completer before a request. credentials.Lifecycle
// implements it.
type Gate interface {
	EnsureClient(ctx context.Context) error
}

// NotConfiguredError is returned when no credential is available.
type NotConfiguredError = credentials.NotConfiguredError

// NoContentError is returned by improve and summarize on a blank document.
type NoContentError struct {
	Kind prompt.Kind
}

func (e *NoContentError) Error() string {
	return "No content to " + e.Kind.Verb()
}

var (
	// ErrBusy is returned while another request is in flight.
	ErrBusy = errors.New("an assistant request is already in progress")
	// ErrNothingStaged is returned by Accept and CopyResult without a result.
	ErrNothingStaged = errors.New("no assistant result to accept")
)

// Options configures a Lifecycle.
type Options struct {
	ContextLines int
	MaxTokens    int
	Logger       *zap.Logger
}

// Lifecycle owns the assistant state. One request may be outstanding.
type Lifecycle struct {
	store  *document.Store
	client llm.Completer
	gate   Gate
	opts   Options
	log    *zap.Logger

	mu    sync.Mutex
	state State
	gen   uint64
	subs  map[int]func(State)
	next  int
}

// New returns an idle lifecycle.
func New(store *document.Store, client llm.Completer, gate Gate, opts Options) *Lifecycle {
	if opts.ContextLines <= 0 {
		opts.ContextLines = prompt.DefaultContextLines
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{
		store:  store,
		client: client,
		gate:   gate,
		opts:   opts,
		log:    log,
		subs:   make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Busy reports whether a request is in flight.
func (l *Lifecycle) Busy() bool {
	return l.State().Phase == PhaseLoading
}

// Subscribe registers fn for state changes. fn runs outside the lock.
func (l *Lifecycle) Subscribe(fn func(State)) (cancel func()) {
	l.mu.Lock()
	id := l.next
	l.next++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Pending is a request that has entered PhaseLoading but not yet run.
type Pending struct {
	l           *Lifecycle
	gen         uint64
	kind        prompt.Kind
	instruction string
	context     string
}

// Kind returns the operation being run.
func (p *Pending) Kind() prompt.Kind {
	return p.kind
}

// Begin validates the request, snapshots the document and moves to
// PhaseLoading. The returned Pending performs the remote call. Begin never
// blocks, so a UI can disable its controls before the call starts.
func (l *Lifecycle) Begin(kind prompt.Kind) (*Pending, error) {
	l.mu.Lock()
	if l.state.Phase == PhaseLoading {
		l.mu.Unlock()
		return nil, ErrBusy
	}

	content := l.store.Snapshot().Content
	if kind.NeedsContent() && strings.TrimSpace(content) == "" {
		err := &NoContentError{Kind: kind}
		l.gen++
		l.state = State{Phase: PhaseFailed, Kind: kind, Message: err.Error()}
		l.unlockAndNotify()
		return nil, err
	}

	instruction, ctxText := prompt.Build(kind, content, l.opts.ContextLines)
	l.gen++
	p := &Pending{l: l, gen: l.gen, kind: kind, instruction: instruction, context: ctxText}
	l.state = State{Phase: PhaseLoading, Kind: kind}
	l.unlockAndNotify()
	l.log.Debug("assistant request started", zap.String("kind", string(kind)))
	return p, nil
}

// Run performs the remote call and settles the state. A completion whose
// request was dismissed or superseded is dropped and Run returns nil.
func (p *Pending) Run(ctx context.Context) error {
	l := p.l
	if l.gate != nil {
		if err := l.gate.EnsureClient(ctx); err != nil {
			l.settle(p, State{Phase: PhaseFailed, Kind: p.kind, Message: failureMessage(p.kind, err)})
			return err
		}
	}

	resp, err := l.client.Complete(ctx, llm.Request{
		Prompt:    p.instruction,
		Context:   p.context,
		MaxTokens: l.opts.MaxTokens,
	})
	if err != nil {
		l.log.Warn("assistant request failed", zap.String("kind", string(p.kind)), zap.Error(err))
		if !l.settle(p, State{Phase: PhaseFailed, Kind: p.kind, Message: failureMessage(p.kind, err)}) {
			return nil
		}
		return err
	}

	l.settle(p, State{Phase: PhaseSucceeded, Kind: p.kind, Result: resp.Text, Usage: resp.Usage})
	return nil
}

// settle applies next if p is still the current request.
func (l *Lifecycle) settle(p *Pending, next State) bool {
	l.mu.Lock()
	if l.gen != p.gen || l.state.Phase != PhaseLoading {
		l.mu.Unlock()
		l.log.Debug("discarding stale assistant result", zap.String("kind", string(p.kind)))
		return false
	}
	l.state = next
	l.unlockAndNotify()
	return true
}

// Run begins and runs kind, blocking until it settles.
func (l *Lifecycle) Run(ctx context.Context, kind prompt.Kind) error {
	p, err := l.Begin(kind)
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

// Continue asks for a continuation of the document tail.
func (l *Lifecycle) Continue(ctx context.Context) error {
	return l.Run(ctx, prompt.Continue)
}

// Improve asks for a clarity and grammar rewrite of the document.
func (l *Lifecycle) Improve(ctx context.Context) error {
	return l.Run(ctx, prompt.Improve)
}

// Summarize asks for a summary of the document.
func (l *Lifecycle) Summarize(ctx context.Context) error {
	return l.Run(ctx, prompt.Summarize)
}

// Accept appends the staged result to the current content, separated by a
// blank line, and returns to idle.
func (l *Lifecycle) Accept() error {
	l.mu.Lock()
	if l.state.Phase != PhaseSucceeded {
		l.mu.Unlock()
		return ErrNothingStaged
	}
	text := l.state.Result
	l.gen++
	l.state = State{}
	l.unlockAndNotify()

	l.store.Edit(func(current string) string {
		return current + "\n\n" + text
	})
	return nil
}

// Dismiss returns to idle without touching the document. An in-flight
// request is abandoned and its completion discarded.
func (l *Lifecycle) Dismiss() {
	l.mu.Lock()
	if l.state.Phase == PhaseIdle {
		l.mu.Unlock()
		return
	}
	l.gen++
	l.state = State{}
	l.unlockAndNotify()
}

// Reset abandons any request and staged result because the document they
// belong to was replaced. Unlike Dismiss it always advances the generation.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	l.gen++
	if l.state.Phase == PhaseIdle {
		l.mu.Unlock()
		return
	}
	l.state = State{}
	l.unlockAndNotify()
}

// CopyResult copies the staged result to w.
func (l *Lifecycle) CopyResult(w clipboard.Writer) error {
	state := l.State()
	if !state.Staged() {
		return ErrNothingStaged
	}
	return w.CopyText(state.Result)
}

// unlockAndNotify releases l.mu and fans the new state out to subscribers.
func (l *Lifecycle) unlockAndNotify() {
	state := l.state
	subs := make([]func(State), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

// failureMessage projects err onto something fit for the status line.
func failureMessage(kind prompt.Kind, err error) string {
	var re *llm.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var nc *NotConfiguredError
	if errors.As(err, &nc) {
		return nc.Error()
	}
	if errors.Is(err, context.Canceled) {
		return "Request canceled"
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	switch kind {
	case prompt.Improve:
		return "Failed to improve text"
	case prompt.Summarize:
		return "Failed to summarize"
	default:
		return "Failed to generate continuation"
	}
}
