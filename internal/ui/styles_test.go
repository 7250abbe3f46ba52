package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatResult(t *testing.T) {
	s := NewStyledWithTheme(&bytes.Buffer{}, DefaultTheme())

	if got := StripANSI(s.FormatResult(true, "saved")); got != SuccessIcon+" saved" {
		t.Errorf("success = %q", got)
	}
	if got := StripANSI(s.FormatResult(false, "failed")); got != FailIcon+" failed" {
		t.Errorf("failure = %q", got)
	}
}

func TestPresetThemeNamesSorted(t *testing.T) {
	names := PresetThemeNames()
	if strings.Join(names, ",") != "dracula,gruvbox,nord,paper" {
		t.Fatalf("names = %v", names)
	}
}

func TestANSILen(t *testing.T) {
	if got := ANSILen("\x1b[1mhé\x1b[0m"); got != 2 {
		t.Fatalf("ANSILen = %d, want 2", got)
	}
}
