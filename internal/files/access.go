package files

import (
	"context"
	"fmt"
	"os"
)

// Access is the host file capability the controller works against.
// A cancelled pick returns ok=false with a nil error.
type Access interface {
	PickOpenPath(ctx context.Context) (path string, ok bool, err error)
	PickSavePath(ctx context.Context, defaultName string) (path string, ok bool, err error)
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path, text string) error
}

// Picker chooses paths for open and save. It is the dialog half of Access.
type Picker interface {
	PickOpen(ctx context.Context) (string, bool, error)
	PickSave(ctx context.Context, defaultName string) (string, bool, error)
}

// OSAccess reads and writes the local filesystem and delegates path choice
// to a Picker.
type OSAccess struct {
	Picker Picker
}

// NewOSAccess returns filesystem access using picker for dialogs.
func NewOSAccess(picker Picker) *OSAccess {
	return &OSAccess{Picker: picker}
}

func (a *OSAccess) PickOpenPath(ctx context.Context) (string, bool, error) {
	if a.Picker == nil {
		return "", false, nil
	}
	return a.Picker.PickOpen(ctx)
}

func (a *OSAccess) PickSavePath(ctx context.Context, defaultName string) (string, bool, error) {
	if a.Picker == nil {
		return "", false, nil
	}
	return a.Picker.PickSave(ctx, defaultName)
}

func (a *OSAccess) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *OSAccess) WriteFile(ctx context.Context, path, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}

// StaticPicker answers picks from fixed values, for headless commands where
// the path comes from the command line. Empty fields mean "cancelled".
type StaticPicker struct {
	OpenPath string
	SavePath string
}

func (p StaticPicker) PickOpen(ctx context.Context) (string, bool, error) {
	return p.OpenPath, p.OpenPath != "", nil
}

func (p StaticPicker) PickSave(ctx context.Context, defaultName string) (string, bool, error) {
	return p.SavePath, p.SavePath != "", nil
}

// FileOperationError is the single error type surfaced by the controller.
type FileOperationError struct {
	Op   string // "open" or "save"
	Path string
	Err  error
}

func (e *FileOperationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s file: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s file %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileOperationError) Unwrap() error {
	return e.Err
}
