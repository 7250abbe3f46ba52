package credentials

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/samsaffron/term-md/internal/llm"
)

// ErrEmptyKey is returned by Set for blank input. The store is not touched.
var ErrEmptyKey = errors.New("API key cannot be empty")

// NotConfiguredError means the assistant was used without a credential.
type NotConfiguredError struct {
	Provider string
	Err      error
}

func (e *NotConfiguredError) Error() string {
	return llm.ProviderLabel(e.Provider) + " API key not found. Please add your API key in settings."
}

func (e *NotConfiguredError) Unwrap() error {
	return e.Err
}

// Options configures a Lifecycle.
type Options struct {
	Provider string
	Model    string
	// FallbackKey is used when the store holds no key. It comes from the
	// config file or the provider's environment variable.
	FallbackKey string
	Logger      *zap.Logger
}

// Lifecycle tracks whether a credential is present and keeps the completer
// initialized from it.
type Lifecycle struct {
	store  Store
	client llm.Completer
	opts   Options
	log    *zap.Logger

	mu           sync.Mutex
	present      bool
	fromFallback bool
}

// NewLifecycle wires a store to a completer.
func NewLifecycle(store Store, client llm.Completer, opts Options) *Lifecycle {
	if opts.Provider == "" {
		opts.Provider = llm.ProviderGemini
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{store: store, client: client, opts: opts, log: log}
}

// Start checks the store and eagerly initializes the client when a key is
// available. Store failures are logged and leave the credential absent.
func (l *Lifecycle) Start(ctx context.Context) {
	key, source, err := l.resolve(ctx)
	if err != nil {
		l.log.Warn("failed to check stored credential", zap.Error(err))
	}

	l.mu.Lock()
	l.present = key != ""
	l.fromFallback = source == sourceFallback
	l.mu.Unlock()

	if key == "" {
		return
	}
	if err := l.initialize(key); err != nil {
		l.log.Warn("failed to initialize assistant client", zap.Error(err))
	}
}

// Present reports whether a credential is available.
func (l *Lifecycle) Present() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.present
}

// FromFallback reports whether the current credential came from config or
// the environment rather than the secure store.
func (l *Lifecycle) FromFallback() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fromFallback
}

// Provider returns the configured provider name.
func (l *Lifecycle) Provider() string {
	return l.opts.Provider
}

// Set saves key, re-initializes the client and marks the credential present.
func (l *Lifecycle) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	if err := l.store.Save(ctx, key); err != nil {
		l.log.Error("failed to save credential", zap.Error(err))
		return asStoreError("save", err)
	}
	if err := l.initialize(key); err != nil {
		// The client may still hold the previous key; drop it so the next
		// request initializes from the stored one.
		l.client.Reset()
		l.log.Error("failed to initialize assistant client", zap.Error(err))
		return err
	}

	l.mu.Lock()
	l.present = true
	l.fromFallback = false
	l.mu.Unlock()
	l.log.Info("credential saved", zap.String("provider", l.opts.Provider))
	return nil
}

// Clear deletes the stored key. Confirmation is the caller's job. The client
// keeps its reference; EnsureClient fails fast once present is false.
func (l *Lifecycle) Clear(ctx context.Context) error {
	if err := l.store.Delete(ctx); err != nil {
		l.log.Error("failed to delete credential", zap.Error(err))
		return asStoreError("delete", err)
	}
	l.mu.Lock()
	l.present = false
	l.fromFallback = false
	l.mu.Unlock()
	l.log.Info("credential removed", zap.String("provider", l.opts.Provider))
	return nil
}

// EnsureClient makes sure the completer can be used, initializing it from
// the store on demand. It never touches the network.
func (l *Lifecycle) EnsureClient(ctx context.Context) error {
	if !l.Present() {
		return &NotConfiguredError{Provider: l.opts.Provider}
	}
	if l.client.IsInitialized() {
		return nil
	}

	key, _, err := l.resolve(ctx)
	if err != nil {
		return &NotConfiguredError{Provider: l.opts.Provider, Err: err}
	}
	if key == "" {
		return &NotConfiguredError{Provider: l.opts.Provider}
	}
	if err := l.initialize(key); err != nil {
		return &NotConfiguredError{Provider: l.opts.Provider, Err: err}
	}
	return nil
}

type keySource int

const (
	sourceNone keySource = iota
	sourceStore
	sourceFallback
)

// resolve prefers the secure store over the fallback key.
func (l *Lifecycle) resolve(ctx context.Context) (string, keySource, error) {
	var storeErr error
	exists, err := l.store.Exists(ctx)
	if err != nil {
		storeErr = asStoreError("check", err)
	} else if exists {
		key, ok, err := l.store.Load(ctx)
		if err != nil {
			storeErr = asStoreError("load", err)
		} else if ok {
			return key, sourceStore, nil
		}
	}

	if key := strings.TrimSpace(l.opts.FallbackKey); key != "" {
		return key, sourceFallback, nil
	}
	return "", sourceNone, storeErr
}

func (l *Lifecycle) initialize(key string) error {
	return l.client.Initialize(llm.Config{
		Provider: l.opts.Provider,
		APIKey:   key,
		Model:    l.opts.Model,
	})
}

func asStoreError(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	return &StoreError{Op: op, Err: err}
}
