// Package input reads markdown for the headless commands from a file, a
// line range of a file, stdin or the clipboard.
package input

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/samsaffron/term-md/internal/clipboard"
)

// Special source names.
const (
	Stdin     = "-"
	Clipboard = "clipboard"
)

// Source is text read from one place.
type Source struct {
	Name    string // path, "stdin" or "clipboard"
	Content string
}

// Reader resolves source names. The zero value reads the process stdin and
// the system clipboard.
type Reader struct {
	Stdin     io.Reader
	Clipboard func() (string, error)
}

// Read resolves name with a zero Reader.
func Read(ctx context.Context, name string) (Source, error) {
	return Reader{}.Read(ctx, name)
}

func (r Reader) Read(ctx context.Context, name string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}

	switch strings.ToLower(name) {
	case Stdin:
		text, err := r.readStdin()
		if err != nil {
			return Source{}, err
		}
		return Source{Name: "stdin", Content: text}, nil
	case Clipboard:
		read := r.Clipboard
		if read == nil {
			read = clipboard.ReadText
		}
		text, err := read()
		if err != nil {
			return Source{}, err
		}
		return Source{Name: Clipboard, Content: text}, nil
	}

	spec, err := ParseSpec(name)
	if err != nil {
		return Source{}, err
	}
	// A real file whose name looks like a range wins over the range.
	if _, statErr := os.Stat(expandHome(name)); statErr == nil {
		spec = Spec{Path: name}
	}

	path := expandHome(spec.Path)
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)
	if spec.Ranged {
		content = Lines(content, spec.Start, spec.End)
	}
	return Source{Name: spec.String(), Content: content}, nil
}

func (r Reader) readStdin() (string, error) {
	in := r.Stdin
	if in == nil {
		in = os.Stdin
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("no input on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// expandHome expands a leading ~/ to the home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
