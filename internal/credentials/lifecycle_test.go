package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/samsaffron/term-md/internal/testutil"
)

func TestStartInitializesWhenKeyStored(t *testing.T) {
	store := testutil.NewMemoryCredentialStore("stored")
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(store, client, Options{})

	l.Start(context.Background())

	if !l.Present() {
		t.Fatal("expected credential present")
	}
	if !client.IsInitialized() || client.Config.APIKey != "stored" {
		t.Fatalf("client not initialized from store: %+v", client.Config)
	}
}

func TestStartWithoutKey(t *testing.T) {
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(testutil.NewMemoryCredentialStore(""), client, Options{})

	l.Start(context.Background())

	if l.Present() {
		t.Fatal("expected credential absent")
	}
	if client.Inits != 0 {
		t.Fatalf("Initialize called %d times, want 0", client.Inits)
	}
}

func TestStartUsesFallbackKey(t *testing.T) {
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(testutil.NewMemoryCredentialStore(""), client, Options{FallbackKey: "from-env"})

	l.Start(context.Background())

	if !l.Present() || !l.FromFallback() {
		t.Fatal("expected fallback credential present")
	}
	if client.Config.APIKey != "from-env" {
		t.Fatalf("APIKey = %q", client.Config.APIKey)
	}
}

func TestSetRejectsBlank(t *testing.T) {
	store := testutil.NewMemoryCredentialStore("")
	l := NewLifecycle(store, testutil.NewFakeCompleter(), Options{})

	for _, key := range []string{"", "   ", "\t\n"} {
		if err := l.Set(context.Background(), key); !errors.Is(err, ErrEmptyKey) {
			t.Fatalf("Set(%q) = %v, want ErrEmptyKey", key, err)
		}
	}
	if store.Saves != 0 {
		t.Fatalf("store saved %d times, want 0", store.Saves)
	}
	if l.Present() {
		t.Fatal("expected credential absent")
	}
}

func TestSetSavesAndInitializes(t *testing.T) {
	store := testutil.NewMemoryCredentialStore("")
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(store, client, Options{Provider: "anthropic", Model: "m"})

	if err := l.Set(context.Background(), "  new-key "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !l.Present() {
		t.Fatal("expected present after Set")
	}
	if key, _, _ := store.Load(context.Background()); key != "new-key" {
		t.Fatalf("stored key = %q", key)
	}
	if client.Config.Provider != "anthropic" || client.Config.Model != "m" {
		t.Fatalf("client config = %+v", client.Config)
	}
}

func TestSetStoreFailure(t *testing.T) {
	store := testutil.NewMemoryCredentialStore("")
	store.SaveErr = errors.New("keyring locked")
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(store, client, Options{})

	err := l.Set(context.Background(), "k")
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if l.Present() || client.Inits != 0 {
		t.Fatal("failed save must not mark present or initialize")
	}
}

func TestSetInitFailureResetsClient(t *testing.T) {
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(testutil.NewMemoryCredentialStore("old"), client, Options{})
	l.Start(context.Background())
	if !client.IsInitialized() {
		t.Fatal("expected client initialized from stored key")
	}

	client.InitErr = errors.New("bad key")
	if err := l.Set(context.Background(), "new"); err == nil {
		t.Fatal("expected initialize error")
	}
	if client.IsInitialized() {
		t.Fatal("client must not keep the previous key after a failed Set")
	}
}

func TestClearKeepsClientButGates(t *testing.T) {
	store := testutil.NewMemoryCredentialStore("k")
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(store, client, Options{})
	l.Start(context.Background())

	if err := l.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if l.Present() {
		t.Fatal("expected absent after Clear")
	}
	if !client.IsInitialized() {
		t.Fatal("Clear must not reset the client")
	}

	var nc *NotConfiguredError
	if err := l.EnsureClient(context.Background()); !errors.As(err, &nc) {
		t.Fatalf("EnsureClient = %v, want NotConfiguredError", err)
	}
}

func TestEnsureClientInitializesLazily(t *testing.T) {
	store := testutil.NewMemoryCredentialStore("k")
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(store, client, Options{})
	l.Start(context.Background())
	client.Reset()

	if err := l.EnsureClient(context.Background()); err != nil {
		t.Fatalf("EnsureClient: %v", err)
	}
	if !client.IsInitialized() || client.Inits != 2 {
		t.Fatalf("expected re-initialization, inits=%d", client.Inits)
	}
}

func TestEnsureClientKeyVanished(t *testing.T) {
	store := testutil.NewMemoryCredentialStore("k")
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(store, client, Options{})
	l.Start(context.Background())
	client.Reset()
	_ = store.Delete(context.Background())

	var nc *NotConfiguredError
	if err := l.EnsureClient(context.Background()); !errors.As(err, &nc) {
		t.Fatalf("EnsureClient = %v, want NotConfiguredError", err)
	}
}

func TestStoreWinsOverFallback(t *testing.T) {
	client := testutil.NewFakeCompleter()
	l := NewLifecycle(testutil.NewMemoryCredentialStore("stored"), client, Options{FallbackKey: "env"})

	l.Start(context.Background())

	if l.FromFallback() || client.Config.APIKey != "stored" {
		t.Fatalf("expected stored key, got %q", client.Config.APIKey)
	}
}

func TestNotConfiguredMessage(t *testing.T) {
	err := &NotConfiguredError{Provider: "gemini"}
	want := "Gemini API key not found. Please add your API key in settings."
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
