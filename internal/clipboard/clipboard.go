package clipboard

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
)

// Writer copies text somewhere the user can paste it from.
type Writer interface {
	CopyText(text string) error
}

// ErrEmpty is returned when there is nothing to copy.
var ErrEmpty = errors.New("nothing to copy")

// System is the platform clipboard. When no native clipboard utility is
// available (headless Linux, SSH sessions) it falls back to an OSC 52
// escape sequence written to the terminal.
type System struct {
	// Fallback controls the OSC 52 fallback. Nil disables it.
	Fallback *termenv.Output
}

// NewSystem returns a clipboard with the OSC 52 fallback on stdout.
func NewSystem() *System {
	return &System{Fallback: termenv.NewOutput(os.Stdout)}
}

// CopyText copies text to the system clipboard.
func (s *System) CopyText(text string) error {
	if text == "" {
		return ErrEmpty
	}
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		} else if s.Fallback == nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}
	if s.Fallback == nil {
		return fmt.Errorf("no clipboard utility found (install wl-copy, xclip or xsel)")
	}
	s.Fallback.Copy(text)
	return nil
}

// ReadText reads text content from the system clipboard.
func ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("no clipboard utility found (install wl-paste, xclip or xsel)")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

// CopyText copies text using the system clipboard.
func CopyText(text string) error {
	return NewSystem().CopyText(text)
}
