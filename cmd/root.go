package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samsaffron/term-md/internal/document"
	"github.com/samsaffron/term-md/internal/files"
	"github.com/samsaffron/term-md/internal/signal"
	"github.com/samsaffron/term-md/internal/tui/editor"
	"github.com/samsaffron/term-md/internal/ui"
)

// Version is set at build time.
var Version = "dev"

var (
	providerFlag string
	modelFlag    string
	debugFlag    bool
	rootDirFlag  string
)

func init() {
	AddProviderFlag(rootCmd, &providerFlag)
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Override the model for the active provider")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Log at debug level")
	rootCmd.Flags().StringVar(&rootDirFlag, "dir", "", "Directory the open dialog lists (default: the file's directory or .)")
}

var rootCmd = &cobra.Command{
	Use:   "term-md [file]",
	Short: "Edit markdown in the terminal with a live preview and an AI assistant",
	Long: `term-md is a split-pane markdown editor: source on the left, rendered
preview on the right, and an assistant that can continue, improve or
summarize the document.

Examples:
  term-md                               # new untitled document
  term-md notes.md                      # open a file
  term-md render notes.md               # print rendered markdown
  term-md assist summarize notes.md     # summarize without the editor
  term-md key set                       # store an API key`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runEditor,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
}

func runEditor(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	root := rootDirFlag
	if root == "" {
		root = pickerRoot(path)
	}

	picker := editor.NewPicker(root)
	app, err := newApp(ctx, files.NewOSAccess(picker))
	if err != nil {
		return err
	}
	defer app.Close()

	if path != "" {
		if err := openOrCreate(ctx, app, path); err != nil {
			return err
		}
	}

	model := editor.New(ctx, editor.Deps{
		Store:       app.store,
		Files:       app.files,
		Assistant:   app.assist,
		Credentials: app.creds,
		Renderer:    app.renderer,
		Styles:      app.styles,
		Logger:      app.log,
		SyncScroll:  app.cfg.Editor.SyncScroll,
		WordWrap:    app.cfg.Editor.WordWrap,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	picker.Attach(p.Send)

	app.log.Info("editor started", zap.String("file", path), zap.String("version", Version))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func pickerRoot(path string) string {
	if path == "" {
		return "."
	}
	return filepath.Dir(path)
}

// openOrCreate loads path, or binds an empty buffer to it when the file does
// not exist yet so the first save writes there.
func openOrCreate(ctx context.Context, app *app, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		app.store.Load(path, "", document.DisplayName(path))
		return nil
	}
	return app.files.OpenPath(ctx, path)
}
