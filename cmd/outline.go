package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samsaffron/term-md/internal/preview"
)

var outlineStats bool

var outlineCmd = &cobra.Command{
	Use:   "outline <source>",
	Short: "List the headings of a markdown file",
	Long: `Print the heading outline of markdown with line numbers. The source is
a file, a file with a line range, "-" for stdin or "clipboard".

Examples:
  term-md outline README.md
  term-md outline notes.md --stats
  pbpaste | term-md outline -`,
	Args:              cobra.ExactArgs(1),
	RunE:              runOutline,
	ValidArgsFunction: MarkdownFileCompletion,
}

func init() {
	outlineCmd.Flags().BoolVar(&outlineStats, "stats", false, "Also print word, line and heading counts")
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	content, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, formatOutline(preview.Outline(content)))
	if outlineStats {
		s := preview.Analyze(content)
		fmt.Fprintf(out, "\n%d words · %d lines · %d headings\n", s.Words, s.Lines, s.Headings)
	}
	return nil
}

func formatOutline(headings []preview.Heading) string {
	var b strings.Builder
	for _, h := range headings {
		fmt.Fprintf(&b, "%5d  %s%s\n", h.Line+1, strings.Repeat("  ", h.Level-1), h.Text)
	}
	return b.String()
}
