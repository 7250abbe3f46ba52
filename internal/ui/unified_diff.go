package ui

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	diff "github.com/shogoki/gotextdiff"
)

var (
	diffAddBg    = "#1e3c1e"
	diffRemoveBg = "#3c1e1e"
)

var hunkRe = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// DiffOptions controls WriteUnifiedDiff output.
type DiffOptions struct {
	// Color enables syntax highlighting and colored gutters.
	Color bool
}

// WriteUnifiedDiff writes a line-numbered unified diff of oldContent against
// newContent to w. Deleted lines are numbered at their virtual position in
// the new file. Nothing is written when the contents are equal.
func WriteUnifiedDiff(w io.Writer, name, oldContent, newContent string, opts DiffOptions) {
	if oldContent == newContent {
		return
	}

	diffBytes := diff.Diff(name, []byte(oldContent), name, []byte(newContent))
	if len(diffBytes) == 0 {
		return
	}

	var highlighter *Highlighter
	if opts.Color {
		highlighter = NewHighlighter(name)
	}

	maxLine := max(strings.Count(oldContent, "\n"), strings.Count(newContent, "\n")) + 1
	width := max(len(strconv.Itoa(maxLine)), 3)

	gutter := func(rgb string, n int, mark string) string {
		if !opts.Color {
			return fmt.Sprintf("%*d%s ", width, n, mark)
		}
		return fmt.Sprintf("\x1b[38;2;%sm%*d%s \x1b[0m", rgb, width, n, mark)
	}

	var newLine, deletionOffset, hunks int
	for _, line := range strings.Split(string(diffBytes), "\n") {
		if line == "" ||
			strings.HasPrefix(line, "diff ") ||
			strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "+++ ") {
			continue
		}

		content := line[1:]
		switch line[0] {
		case '@':
			if m := hunkRe.FindStringSubmatch(line); m != nil {
				newLine, _ = strconv.Atoi(m[2])
			}
			if hunks > 0 {
				fmt.Fprintln(w, strings.Repeat(" ", width)+"  ...")
			}
			hunks++
		case '-':
			fmt.Fprintf(w, "%s%s\n", gutter("160;80;80", newLine+deletionOffset, "-"), highlighter.HighlightLine(content, diffRemoveBg))
			deletionOffset++
		case '+':
			deletionOffset = 0
			fmt.Fprintf(w, "%s%s\n", gutter("80;160;80", newLine, "+"), highlighter.HighlightLine(content, diffAddBg))
			newLine++
		case ' ':
			deletionOffset = 0
			fmt.Fprintf(w, "%s%s\n", gutter("100;100;100", newLine, " "), highlighter.HighlightLine(content, ""))
			newLine++
		default:
			fmt.Fprintln(w, line)
		}
	}
}

// UnifiedDiff returns the WriteUnifiedDiff output as a string.
func UnifiedDiff(name, oldContent, newContent string, opts DiffOptions) string {
	var b strings.Builder
	WriteUnifiedDiff(&b, name, oldContent, newContent, opts)
	return b.String()
}
