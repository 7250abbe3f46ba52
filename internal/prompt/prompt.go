package prompt

import (
	"fmt"
	"strings"
)

// DefaultContextLines is how much of the document tail "continue" sends.
const DefaultContextLines = 20

// Kind names an assistant operation.
type Kind string

const (
	Continue  Kind = "continue"
	Improve   Kind = "improve"
	Summarize Kind = "summarize"
)

// Kinds lists the operations in menu order.
func Kinds() []Kind {
	return []Kind{Continue, Improve, Summarize}
}

// ParseKind accepts the operation names used on the command line.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Continue, Improve, Summarize:
		return k, nil
	default:
		return "", fmt.Errorf("unknown assistant operation: %q", s)
	}
}

// Verb is the lowercase action used in status messages.
func (k Kind) Verb() string {
	return string(k)
}

// Label is the user-facing button text.
func (k Kind) Label() string {
	switch k {
	case Continue:
		return "Continue Writing"
	case Improve:
		return "Improve"
	case Summarize:
		return "Summarize"
	default:
		return string(k)
	}
}

// NeedsContent reports whether the operation refuses an empty document.
func (k Kind) NeedsContent() bool {
	return k == Improve || k == Summarize
}

// ContinueInstruction is sent with the document tail as context.
func ContinueInstruction() string {
	return "Continue writing this document naturally:"
}

// ImproveInstruction asks for a clarity and grammar rewrite of text.
func ImproveInstruction(text string) string {
	return "Improve the following text for clarity and grammar:\n\n" + text
}

// SummarizeInstruction asks for a concise summary of text.
func SummarizeInstruction(text string) string {
	return "Provide a concise summary of the following text:\n\n" + text
}

// ContextTail returns the last n lines of content. n <= 0 uses the default.
func ContextTail(content string, n int) string {
	if n <= 0 {
		n = DefaultContextLines
	}
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Build returns the instruction and optional context for kind against
// content. contextLines only applies to Continue.
func Build(kind Kind, content string, contextLines int) (instruction, context string) {
	switch kind {
	case Improve:
		return ImproveInstruction(content), ""
	case Summarize:
		return SummarizeInstruction(content), ""
	default:
		return ContinueInstruction(), ContextTail(content, contextLines)
	}
}
