package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/samsaffron/term-md/internal/preview"
	"github.com/samsaffron/term-md/internal/ui"
)

var (
	renderHTML  bool
	renderStyle string
	renderTheme string
	renderWidth int
)

var renderCmd = &cobra.Command{
	Use:   "render <source>",
	Short: "Print a markdown file rendered for the terminal",
	Long: `Render markdown the way the preview pane shows it. The source is a file,
a file with a line range, "-" for stdin or "clipboard".

Examples:
  term-md render README.md
  term-md render notes.md --style light --width 72
  term-md render notes.md --html > notes.html
  term-md render notes.md:10-40          # only lines 10-40
  cat notes.md | term-md render -        # read stdin
  term-md render clipboard               # render the clipboard`,
	Args:              cobra.ExactArgs(1),
	RunE:              runRender,
	ValidArgsFunction: MarkdownFileCompletion,
}

func init() {
	renderCmd.Flags().BoolVar(&renderHTML, "html", false, "Print HTML instead of terminal output")
	renderCmd.Flags().StringVar(&renderStyle, "style", "", "Preview style: auto, dark, light or theme (default from config)")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "Theme used by --style theme (default from config)")
	renderCmd.Flags().IntVarP(&renderWidth, "width", "w", 0, "Wrap width (default: terminal width)")
	if err := renderCmd.RegisterFlagCompletionFunc("theme", ThemeFlagCompletion); err != nil {
		panic("failed to register theme completion: " + err.Error())
	}
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	content, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	if renderHTML {
		html, err := preview.HTML(content)
		if err != nil {
			return fmt.Errorf("failed to render html: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), html)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	style := cfg.Editor.PreviewStyle
	if renderStyle != "" {
		style = renderStyle
	}
	themeName := cfg.Editor.Theme
	if renderTheme != "" {
		themeName = renderTheme
	}

	width := renderWidth
	if width <= 0 {
		width = terminalWidth()
	}
	if cfg.Editor.WordWrap > 0 && renderWidth <= 0 {
		width = min(width, cfg.Editor.WordWrap)
	}

	r := preview.NewRenderer(style, ui.ResolveTheme(themeName, cfg.Editor.Colors))
	out, err := r.Render(content, width)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
