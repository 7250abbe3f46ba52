package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/samsaffron/term-md/internal/assistant"
	"github.com/samsaffron/term-md/internal/clipboard"
	"github.com/samsaffron/term-md/internal/files"
	"github.com/samsaffron/term-md/internal/prompt"
	"github.com/samsaffron/term-md/internal/ui"
)

var (
	assistAccept bool
	assistDiff   bool
	assistCopy   bool
)

var assistCmd = &cobra.Command{
	Use:   "assist <continue|improve|summarize> [file]",
	Short: "Run an assistant operation on a markdown file",
	Long: `Run one assistant operation without opening the editor and print the
suggestion. Without a file the markdown files under the current directory
are offered for selection.

Examples:
  term-md assist summarize notes.md
  term-md assist continue draft.md --diff
  term-md assist continue draft.md --accept   # append and save
  term-md assist improve notes.md --copy`,
	Args:              cobra.RangeArgs(1, 2),
	RunE:              runAssist,
	ValidArgsFunction: AssistKindCompletion,
}

func init() {
	assistCmd.Flags().BoolVar(&assistAccept, "accept", false, "Append the suggestion to the file and save it")
	assistCmd.Flags().BoolVar(&assistDiff, "diff", false, "Show the change accepting would make as a unified diff")
	assistCmd.Flags().BoolVar(&assistCopy, "copy", false, "Copy the suggestion to the clipboard")
	rootCmd.AddCommand(assistCmd)
}

func runAssist(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	kind, err := prompt.ParseKind(args[0])
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 2 {
		path = args[1]
	} else {
		paths, err := files.Discover(".")
		if err != nil {
			return fmt.Errorf("failed to list files: %w", err)
		}
		if path, err = ui.SelectFile("Which file?", paths); err != nil {
			return err
		}
	}

	app, err := newApp(ctx, files.NewOSAccess(files.StaticPicker{OpenPath: path, SavePath: path}))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.files.OpenPath(ctx, path); err != nil {
		return err
	}
	before := app.store.Snapshot()

	err = ui.RunWithSpinner(ctx, kind.Label()+"…", func(ctx context.Context) error {
		return app.assist.Run(ctx, kind)
	})
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return err
		}
		if state := app.assist.State(); state.Phase == assistant.PhaseFailed {
			return errors.New(state.Message)
		}
		return err
	}

	state := app.assist.State()
	out := cmd.OutOrStdout()
	if assistDiff {
		after := before.Content + "\n\n" + state.Result
		color := term.IsTerminal(int(os.Stdout.Fd()))
		fmt.Fprint(out, ui.UnifiedDiff(before.FileName, before.Content, after, ui.DiffOptions{Color: color}))
	} else {
		fmt.Fprintln(out, state.Result)
	}
	if debugFlag && state.Usage != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), app.styles.Muted.Render(fmt.Sprintf("%d prompt + %d completion tokens",
			state.Usage.PromptTokens, state.Usage.CompletionTokens)))
	}

	if assistCopy {
		if err := app.assist.CopyResult(clipboard.NewSystem()); err != nil {
			return fmt.Errorf("failed to copy suggestion: %w", err)
		}
		ui.ShowResult(true, "Copied to clipboard")
	}

	if !assistAccept {
		return nil
	}
	if err := app.assist.Accept(); err != nil {
		return err
	}
	if _, err := app.files.Save(ctx); err != nil {
		return err
	}
	ui.ShowResult(true, "Appended to "+app.store.Snapshot().FileName)
	return nil
}
