package preview

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdown is the shared goldmark instance with GitHub-flavored extensions.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Heading is one outline entry.
type Heading struct {
	Level int
	Text  string
	Line  int // 0-based source line
}

// Stats summarizes a document.
type Stats struct {
	Words    int
	Lines    int
	Headings int
}

func parse(content string) (ast.Node, []byte) {
	source := []byte(content)
	return markdown.Parser().Parse(text.NewReader(source)), source
}

// Outline lists the headings of content in document order.
func Outline(content string) []Heading {
	doc, source := parse(content)

	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		line := 0
		if lines := h.Lines(); lines.Len() > 0 {
			line = bytes.Count(source[:lines.At(0).Start], []byte("\n"))
		}
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  strings.TrimSpace(plainText(h, source)),
			Line:  line,
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// plainText concatenates the text leaves below n.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// Analyze returns document statistics. Code does not count as words.
func Analyze(content string) Stats {
	if content == "" {
		return Stats{}
	}
	doc, source := parse(content)

	stats := Stats{Lines: strings.Count(content, "\n") + 1}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Heading:
			stats.Headings++
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.CodeSpan:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			stats.Words += len(strings.Fields(string(t.Segment.Value(source))))
		}
		return ast.WalkContinue, nil
	})
	return stats
}

// HTML converts content to an HTML fragment.
func HTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
