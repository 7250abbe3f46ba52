package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samsaffron/term-md/internal/assistant"
	"github.com/samsaffron/term-md/internal/config"
	"github.com/samsaffron/term-md/internal/credentials"
	"github.com/samsaffron/term-md/internal/document"
	"github.com/samsaffron/term-md/internal/files"
	"github.com/samsaffron/term-md/internal/input"
	"github.com/samsaffron/term-md/internal/llm"
	"github.com/samsaffron/term-md/internal/logging"
	"github.com/samsaffron/term-md/internal/preview"
	"github.com/samsaffron/term-md/internal/ui"
)

// app holds the wired core shared by the editor and the headless commands.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *document.Store
	files    *files.Controller
	client   *llm.Client
	creds    *credentials.Lifecycle
	assist   *assistant.Lifecycle
	renderer *preview.Renderer
	styles   *ui.Styles
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyOverrides(providerFlag, modelFlag); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	file := cfg.Log.File
	if file == "" {
		file = config.DefaultLogFile()
	}
	level := cfg.Log.Level
	if debugFlag {
		level = "debug"
	}
	log, err := logging.New(logging.Options{File: file, Level: level})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return log, nil
}

// newCredentials builds the secure store and key lifecycle for cfg's
// provider.
func newCredentials(ctx context.Context, cfg *config.Config, client llm.Completer, log *zap.Logger) (*credentials.Lifecycle, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}
	creds := credentials.NewLifecycle(credentials.NewAgeStore(dir), client, credentials.Options{
		Provider:    cfg.Provider,
		Model:       cfg.Active().Model,
		FallbackKey: cfg.FallbackKey(),
		Logger:      log,
	})
	creds.Start(ctx)
	return creds, nil
}

func newApp(ctx context.Context, access files.Access) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	theme := cfg.Theme()
	ui.SetTheme(theme)

	client := llm.NewClient(cfg.Provider, cfg.Active().Model, log)
	creds, err := newCredentials(ctx, cfg, client, log)
	if err != nil {
		return nil, err
	}

	store := document.NewStore()
	return &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		files:  files.NewController(store, access, log),
		client: client,
		creds:  creds,
		assist: assistant.New(store, client, creds, assistant.Options{
			ContextLines: cfg.Assistant.ContextLines,
			MaxTokens:    cfg.Assistant.MaxTokens,
			Logger:       log,
		}),
		renderer: preview.NewRenderer(cfg.Editor.PreviewStyle, theme),
		styles:   ui.NewStyledWithTheme(os.Stdout, theme),
	}, nil
}

// Close flushes the logger.
func (a *app) Close() {
	_ = a.log.Sync()
}

// readSource reads a file, a line range like notes.md:10-20, stdin ("-")
// or the clipboard for the headless commands.
func readSource(cmd *cobra.Command, name string) (string, error) {
	src, err := input.Reader{Stdin: cmd.InOrStdin()}.Read(commandContext(cmd), name)
	if err != nil {
		if name == input.Stdin || name == input.Clipboard {
			return "", err
		}
		return "", &files.FileOperationError{Op: "open", Path: name, Err: err}
	}
	return src.Content, nil
}
