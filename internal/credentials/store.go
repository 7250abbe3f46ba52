package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// Store is the secure credential capability.
type Store interface {
	Save(ctx context.Context, key string) error
	Load(ctx context.Context) (string, bool, error)
	Delete(ctx context.Context) error
	Exists(ctx context.Context) (bool, error)
}

// StoreError reports a failure of the secure store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s credential: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

const (
	identityFile = "identity.txt"
	keyFile      = "api_key.age"
)

// AgeStore keeps the API key encrypted to a local X25519 identity. Both files
// live in Dir with mode 0600.
type AgeStore struct {
	Dir string
}

// NewAgeStore returns a store rooted at dir.
func NewAgeStore(dir string) *AgeStore {
	return &AgeStore{Dir: dir}
}

func (s *AgeStore) identityPath() string { return filepath.Join(s.Dir, identityFile) }
func (s *AgeStore) keyPath() string      { return filepath.Join(s.Dir, keyFile) }

// Save encrypts key, creating the identity on first use.
func (s *AgeStore) Save(ctx context.Context, key string) error {
	identity, err := s.identity(true)
	if err != nil {
		return &StoreError{Op: "save", Err: err}
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return &StoreError{Op: "save", Err: fmt.Errorf("creating age encryptor: %w", err)}
	}
	if _, err := io.WriteString(w, key); err != nil {
		return &StoreError{Op: "save", Err: fmt.Errorf("writing plaintext: %w", err)}
	}
	if err := w.Close(); err != nil {
		return &StoreError{Op: "save", Err: fmt.Errorf("finalizing age encryption: %w", err)}
	}
	if err := os.WriteFile(s.keyPath(), buf.Bytes(), 0600); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	return nil
}

// Load decrypts the stored key. A missing key is ("", false, nil).
func (s *AgeStore) Load(ctx context.Context) (string, bool, error) {
	data, err := os.ReadFile(s.keyPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StoreError{Op: "load", Err: err}
	}

	identity, err := s.identity(false)
	if err != nil {
		return "", false, &StoreError{Op: "load", Err: err}
	}
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return "", false, &StoreError{Op: "load", Err: fmt.Errorf("decrypting: %w", err)}
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", false, &StoreError{Op: "load", Err: fmt.Errorf("reading decrypted key: %w", err)}
	}
	key := string(plain)
	return key, key != "", nil
}

// Delete removes the encrypted key. The identity is kept for reuse.
func (s *AgeStore) Delete(ctx context.Context) error {
	if err := os.Remove(s.keyPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StoreError{Op: "delete", Err: err}
	}
	return nil
}

// Exists reports whether an encrypted key is on disk.
func (s *AgeStore) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.keyPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Op: "check", Err: err}
	}
	return true, nil
}

func (s *AgeStore) identity(create bool) (*age.X25519Identity, error) {
	data, err := os.ReadFile(s.identityPath())
	if err == nil {
		identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("parsing identity: %w", err)
		}
		return identity, nil
	}
	if !errors.Is(err, os.ErrNotExist) || !create {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age identity: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(s.identityPath(), []byte(identity.String()+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("failed to write identity: %w", err)
	}
	return identity, nil
}
