package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake pandoc
// ---------------------------------------------------------------------------

// fakePandoc stands in for the pandoc subprocess. Conversions write output
// to the path following "-o"; "--version" prints version.
type fakePandoc struct {
	mu       sync.Mutex
	calls    [][]string
	output   []byte // nil = a minimal document for the requested writer
	version  string
	err      error
	stderr   string
	failWhen string // fail only when the input file contains this text
}

func (f *fakePandoc) Run(_ context.Context, _ string, args ...string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, slices.Clone(args))

	if slices.Contains(args, "--version") {
		if f.err != nil {
			return "", "", f.err
		}
		return f.version + "\nCompiled with pandoc-types\n", "", nil
	}

	if f.failWhen != "" && len(args) > 0 {
		data, _ := os.ReadFile(args[0])
		if strings.Contains(string(data), f.failWhen) {
			return "", f.stderr, errors.New("exit status 43")
		}
	} else if f.err != nil {
		return "", f.stderr, f.err
	}

	i := slices.Index(args, "-o")
	if i < 0 || i+1 >= len(args) {
		return "", "", errors.New("fake pandoc: no -o")
	}
	out := f.output
	if out == nil {
		out = []byte("%PDF-1.5 fake")
		if slices.Contains(args, "docx") {
			out = minimalDOCX()
		}
	}
	return "", "", os.WriteFile(args[i+1], out, 0o600)
}

func (f *fakePandoc) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePandoc) lastArgs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

// minimalDOCX builds an archive shaped like pandoc's DOCX output.
func minimalDOCX() []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := []struct{ name, data string }{
		{"[Content_Types].xml", `<Types/>`},
		{"word/document.xml", `<w:document><w:t>Body</w:t></w:document>`},
		{"word/styles.xml", `<w:styles><w:rFonts w:ascii="Cambria"/><w:color w:val="4F81BD"/></w:styles>`},
	}
	for _, e := range entries {
		w, _ := zw.Create(e.name)
		_, _ = io.WriteString(w, e.data)
	}
	_ = zw.Close()
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment
// ---------------------------------------------------------------------------

type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	pandoc *fakePandoc
}

// newTestEnv returns an environment with captured output, a fake pandoc
// and every executable found under /usr/bin.
func newTestEnv() *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	fp := &fakePandoc{version: "pandoc 3.1.11"}
	return &testEnv{
		Environment: &Environment{
			Stdout:   stdout,
			Stderr:   stderr,
			LookPath: func(file string) (string, error) { return "/usr/bin/" + file, nil },
			Runner:   fp,
		},
		stdout: stdout,
		stderr: stderr,
		pandoc: fp,
	}
}

// writeFile creates dir/name with content, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected %s not to exist", path)
	}
}
