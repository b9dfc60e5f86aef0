package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScrapeLogErrorsCapsAtTen(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 12; i++ {
		b.WriteString(fmt.Sprintf("! Undefined control sequence no.%d\n", i))
		b.WriteString("This is fine.\n")
	}
	logPath := filepath.Join(t.TempDir(), "main.log")
	if err := os.WriteFile(logPath, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}

	lines := ScrapeLogErrors(logPath)
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	for i, line := range lines {
		want := fmt.Sprintf("! Undefined control sequence no.%d", i+1)
		if line != want {
			t.Errorf("line %d = %q, want %q", i, line, want)
		}
	}
}

func TestScrapeLogErrorsMatchesCaseInsensitive(t *testing.T) {
	content := strings.Join([]string{
		"This is LuaTeX, Version 1.17",
		"! LaTeX Error: File `missing.sty' not found.",
		"Package hyperref Warning: something",
		"An ERROR occurred in a package",
		"normal line",
	}, "\n")
	logPath := filepath.Join(t.TempDir(), "main.log")
	if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lines := ScrapeLogErrors(logPath)
	if len(lines) != 2 {
		t.Fatalf("got %d lines (%v), want 2", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "!") {
		t.Errorf("first line should be the marker line, got %q", lines[0])
	}
	if lines[1] != "An ERROR occurred in a package" {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestScrapeLogErrorsMissingFile(t *testing.T) {
	if lines := ScrapeLogErrors(filepath.Join(t.TempDir(), "absent.log")); lines != nil {
		t.Errorf("missing log should yield no lines, got %v", lines)
	}
}
