package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Fatalf("provider=%q, want gemini", cfg.Provider)
	}
	if cfg.Gemini.Model != "gemini-3-flash-preview" {
		t.Fatalf("gemini model=%q", cfg.Gemini.Model)
	}
	if cfg.Assistant.ContextLines != 20 {
		t.Fatalf("context_lines=%d, want 20", cfg.Assistant.ContextLines)
	}
	if !cfg.Editor.SyncScroll || cfg.Editor.PreviewStyle != "auto" {
		t.Fatalf("editor defaults = %+v", cfg.Editor)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TERM_MD_TEST_KEY", "secret")
	content := `provider: anthropic
anthropic:
  model: claude-opus
  api_key: $TERM_MD_TEST_KEY
editor:
  preview_style: light
  sync_scroll: false
assistant:
  context_lines: 5
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Provider != "anthropic" || cfg.Active().Model != "claude-opus" {
		t.Fatalf("active = %s %+v", cfg.Provider, cfg.Active())
	}
	if cfg.FallbackKey() != "secret" {
		t.Fatalf("FallbackKey()=%q, want expanded env value", cfg.FallbackKey())
	}
	if cfg.Editor.SyncScroll {
		t.Fatal("sync_scroll should be false")
	}
	if cfg.Assistant.ContextLines != 5 {
		t.Fatalf("context_lines=%d", cfg.Assistant.ContextLines)
	}
}

func TestLoadFromRejectsUnknownProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("provider: bogus\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(dir); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Defaults()

	if err := cfg.ApplyOverrides("openai", "gpt-4o"); err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "openai" {
		t.Fatalf("provider=%q, want %q", cfg.Provider, "openai")
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("openai model=%q, want %q", cfg.OpenAI.Model, "gpt-4o")
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-5" {
		t.Fatalf("anthropic model changed unexpectedly: %q", cfg.Anthropic.Model)
	}

	if err := cfg.ApplyOverrides("", "gpt-5"); err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "openai" || cfg.OpenAI.Model != "gpt-5" {
		t.Fatalf("model-only override: %s %q", cfg.Provider, cfg.OpenAI.Model)
	}

	if err := cfg.ApplyOverrides("nope", ""); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Defaults()
	cfg.Provider = "openai"
	cfg.OpenAI.APIKey = "must-not-be-written"
	cfg.Editor.Theme = "nord"

	if err := SaveTo(filepath.Join(dir, "config.yaml"), cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if strings.Contains(string(raw), "must-not-be-written") {
		t.Fatal("resolved api key written to disk")
	}
	if !strings.HasPrefix(string(raw), "# term-md configuration") {
		t.Fatal("missing header comment")
	}

	loaded, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Provider != "openai" || loaded.Editor.Theme != "nord" {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TERM_MD_X", "value")
	tests := map[string]string{
		"$TERM_MD_X":   "value",
		"${TERM_MD_X}": "value",
		"plain":        "plain",
		"":             "",
	}
	for in, want := range tests {
		if got := expandEnv(in); got != want {
			t.Errorf("expandEnv(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestGetConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/xdg/term-md" {
		t.Fatalf("dir=%q", dir)
	}
}
