package prompt

import (
	"strings"
	"testing"
)

func TestContextTail(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 30; i++ {
		if i > 1 {
			b.WriteString("\n")
		}
		b.WriteString("line")
		b.WriteString(strings.Repeat("x", i%3))
	}
	content := b.String()

	tests := []struct {
		name    string
		content string
		n       int
		want    int
	}{
		{"default keeps 20", content, 0, 20},
		{"explicit 5", content, 5, 5},
		{"short document", "a\nb", 20, 2},
		{"empty", "", 20, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ContextTail(tc.content, tc.n)
			if lines := len(strings.Split(got, "\n")); lines != tc.want {
				t.Fatalf("ContextTail lines = %d, want %d", lines, tc.want)
			}
			if !strings.HasSuffix(tc.content, got) {
				t.Fatalf("ContextTail(%q) = %q is not a suffix", tc.content, got)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		kind        Kind
		content     string
		instruction string
		context     string
	}{
		{Continue, "# Title\nbody", "Continue writing this document naturally:", "# Title\nbody"},
		{Improve, "teh text", "Improve the following text for clarity and grammar:\n\nteh text", ""},
		{Summarize, "long text", "Provide a concise summary of the following text:\n\nlong text", ""},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			instruction, context := Build(tc.kind, tc.content, 20)
			if instruction != tc.instruction {
				t.Errorf("instruction = %q, want %q", instruction, tc.instruction)
			}
			if context != tc.context {
				t.Errorf("context = %q, want %q", context, tc.context)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"continue", " Improve ", "SUMMARIZE"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q): %v", s, err)
		}
	}
	if _, err := ParseKind("translate"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNeedsContent(t *testing.T) {
	if Continue.NeedsContent() {
		t.Error("continue should not require content")
	}
	if !Improve.NeedsContent() || !Summarize.NeedsContent() {
		t.Error("improve and summarize require content")
	}
}
