// Package files bridges the document store to the host filesystem.
package files

import (
	"context"

	"go.uber.org/zap"

	"github.com/samsaffron/term-md/internal/document"
	"github.com/samsaffron/term-md/internal/logging"
)

// Controller runs open and save against an Access capability and keeps the
// document's identity and dirty flag in step with the outcome.
type Controller struct {
	store  *document.Store
	access Access
	log    *zap.Logger
}

// NewController creates a controller for store.
func NewController(store *document.Store, access Access, log *zap.Logger) *Controller {
	return &Controller{store: store, access: access, log: logging.OrNop(log)}
}

// Open prompts for a file and loads it. It returns false when the user
// cancelled. On a read failure the open document is left untouched.
func (c *Controller) Open(ctx context.Context) (bool, error) {
	path, ok, err := c.access.PickOpenPath(ctx)
	if err != nil {
		c.log.Warn("open dialog failed", zap.Error(err))
		return false, nil
	}
	if !ok || path == "" {
		return false, nil
	}
	return true, c.OpenPath(ctx, path)
}

// OpenPath loads path without prompting.
func (c *Controller) OpenPath(ctx context.Context, path string) error {
	content, err := c.access.ReadFile(ctx, path)
	if err != nil {
		c.log.Error("failed to load file", zap.String("path", path), zap.Error(err))
		return &FileOperationError{Op: "open", Path: path, Err: err}
	}
	c.store.Load(path, content, document.DisplayName(path))
	c.log.Info("file opened", zap.String("path", path), zap.Int("bytes", len(content)))
	return nil
}

// Save writes the document to its path, or prompts for one when the
// document is untitled. It returns false when the user cancelled the prompt.
func (c *Controller) Save(ctx context.Context) (bool, error) {
	doc := c.store.Snapshot()
	if !doc.HasPath() {
		return c.saveWithPrompt(ctx, doc)
	}
	if err := c.write(ctx, doc.FilePath, doc.Content); err != nil {
		return false, err
	}
	c.store.RecordSaved(doc.Revision, "", "")
	return true, nil
}

// SaveAs always prompts for a path, even when the document already has one.
// An accepted path becomes the document's identity.
func (c *Controller) SaveAs(ctx context.Context) (bool, error) {
	return c.saveWithPrompt(ctx, c.store.Snapshot())
}

func (c *Controller) saveWithPrompt(ctx context.Context, doc document.Document) (bool, error) {
	path, ok, err := c.access.PickSavePath(ctx, doc.FileName)
	if err != nil {
		c.log.Warn("save dialog failed", zap.Error(err))
		return false, nil
	}
	if !ok || path == "" {
		return false, nil
	}
	if err := c.write(ctx, path, doc.Content); err != nil {
		return false, err
	}
	c.store.RecordSaved(doc.Revision, path, document.DisplayName(path))
	return true, nil
}

func (c *Controller) write(ctx context.Context, path, content string) error {
	if err := c.access.WriteFile(ctx, path, content); err != nil {
		c.log.Error("failed to save file", zap.String("path", path), zap.Error(err))
		return &FileOperationError{Op: "save", Path: path, Err: err}
	}
	c.log.Info("file saved", zap.String("path", path), zap.Int("bytes", len(content)))
	return nil
}
