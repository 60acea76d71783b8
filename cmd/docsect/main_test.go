package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const guide = `# Guide

Intro text.

## Setup

Install the "tool" first.

## Usage

Run it.
`

func run(t *testing.T, args ...string) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("docsect %v: %v", args, err)
	}
	return out.String(), errOut.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTocCommand(t *testing.T) {
	path := writeFile(t, "guide.md", guide)
	out, _ := run(t, "toc", path)

	for _, want := range []string{"Guide", "  Setup", "  Usage"} {
		if !strings.Contains(out, want) {
			t.Errorf("outline missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Setup") > strings.Index(out, "Usage") {
		t.Errorf("expected reading order, got:\n%s", out)
	}
}

func TestSectionsCommand(t *testing.T) {
	path := writeFile(t, "guide.md", guide)
	out, errOut := run(t, "sections", path)

	if !strings.Contains(out, ">Setup</h2>") || !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("expected the reassembled document, got:\n%s", out)
	}
	if !strings.Contains(out, "“tool”") {
		t.Errorf("expected typographic quotes, got:\n%s", out)
	}
	if !strings.Contains(errOut, "Sections:") {
		t.Errorf("expected summary on stderr, got:\n%s", errOut)
	}
}

func TestSectionsCommandRejectsUnknownRule(t *testing.T) {
	path := writeFile(t, "guide.md", guide)
	rootCmd.SetArgs([]string{"sections", "--rules", "kerning", path})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		sectionsRules = "quotes,dash,ellipsis,nbsp"
	})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for unknown typography rule")
	}
}

func TestPagenumsCommand(t *testing.T) {
	var paths []string
	for i, text := range []string{"Alpha text", "Beta text", "Gamma text"} {
		page := "<html><body><p>" + text + "</p><p>" + string(rune('7'+i)) + "</p></body></html>"
		paths = append(paths, writeFile(t, "page"+string(rune('a'+i))+".html", page))
	}
	out, errOut := run(t, append([]string{"pagenums"}, paths...)...)

	if strings.TrimSpace(out) != "7 8 9" {
		t.Errorf("expected sequence 7 8 9, got %q", out)
	}
	if !strings.Contains(errOut, "Stripped:") {
		t.Errorf("expected summary on stderr, got:\n%s", errOut)
	}
}
