package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samsaffron/term-md/internal/preview"
)

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("term-md %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOutlineFromStdinAndRange(t *testing.T) {
	rootCmd.SetIn(strings.NewReader("# Piped\n\n## Sub\n"))
	out := runRoot(t, "outline", "-")
	if !strings.Contains(out, "1  Piped") || !strings.Contains(out, "3    Sub") {
		t.Fatalf("stdin outline = %q", out)
	}

	path := writeMarkdown(t, "# Title\n\n## Skipped\n\n## Kept\n")
	out = runRoot(t, "outline", path+":5-")
	if strings.Contains(out, "Skipped") || !strings.Contains(out, "1    Kept") {
		t.Fatalf("range outline = %q", out)
	}
}

func TestFormatOutline(t *testing.T) {
	got := formatOutline([]preview.Heading{
		{Level: 1, Text: "Title", Line: 0},
		{Level: 2, Text: "Section", Line: 4},
	})
	want := "    1  Title\n    5    Section\n"
	if got != want {
		t.Fatalf("formatOutline() = %q, want %q", got, want)
	}
}

func TestOutlineCommand(t *testing.T) {
	path := writeMarkdown(t, "# Title\n\nsome words here\n\n## Next\n")
	t.Cleanup(func() { outlineStats = false })

	out := runRoot(t, "outline", "--stats", path)
	if !strings.Contains(out, "1  Title") || !strings.Contains(out, "5    Next") {
		t.Fatalf("outline output = %q", out)
	}
	if !strings.Contains(out, "2 headings") {
		t.Fatalf("missing stats in %q", out)
	}
}

func TestRenderHTMLCommand(t *testing.T) {
	path := writeMarkdown(t, "# Hi\n\n~~gone~~\n")
	t.Cleanup(func() { renderHTML = false })

	out := runRoot(t, "render", "--html", path)
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<del>gone</del>") {
		t.Fatalf("html output = %q", out)
	}
}

func TestConfigPathCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/term-md-xdg")
	out := runRoot(t, "config", "path")
	if strings.TrimSpace(out) != "/tmp/term-md-xdg/term-md/config.yaml" {
		t.Fatalf("config path = %q", out)
	}
}

func TestConfigInitWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Cleanup(func() { configInitProvider = "" })

	runRoot(t, "config", "init", "--with-provider", "anthropic")

	data, err := os.ReadFile(filepath.Join(dir, "term-md", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "provider: anthropic") {
		t.Fatalf("config = %s", data)
	}
}

func TestOpenOrCreateBindsMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)

	path := filepath.Join(dir, "new.md")
	a, err := newApp(t.Context(), nil)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if err := openOrCreate(t.Context(), a, path); err != nil {
		t.Fatal(err)
	}
	doc := a.store.Snapshot()
	if doc.FilePath != path || doc.FileName != "new.md" || doc.HasUnsavedChanges {
		t.Fatalf("doc = %+v", doc)
	}
}
